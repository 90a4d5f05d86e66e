package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client talks to the federation REST backend. Every call attaches the bearer token found in
// the request context, decodes JSON through the canonical decoding layer and turns non-2xx
// responses into *APIError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type callOptions struct {
	silent bool
	idKey  string
}

type CallOption func(*callOptions)

// Silent suppresses error logging for lookups that are expected to miss.
func Silent() CallOption {
	return func(o *callOptions) { o.silent = true }
}

// IDKey names the field the generic "id" key should be copied into when a response omits it.
func IDKey(key string) CallOption {
	return func(o *callOptions) { o.idKey = key }
}

// UploadForm is a multipart upload: plain fields plus one file part.
type UploadForm struct {
	Fields    map[string]string
	FileField string
	FileName  string
	File      io.Reader
}

func (c *Client) Get(ctx context.Context, path string, dst any, opts ...CallOption) error {
	return c.do(ctx, http.MethodGet, path, nil, "", dst, opts)
}

func (c *Client) Post(ctx context.Context, path string, body, dst any, opts ...CallOption) error {
	reader, err := encodeBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, reader, "application/json", dst, opts)
}

func (c *Client) Put(ctx context.Context, path string, body, dst any, opts ...CallOption) error {
	reader, err := encodeBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, reader, "application/json", dst, opts)
}

func (c *Client) Delete(ctx context.Context, path string, opts ...CallOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil, opts)
}

func (c *Client) Upload(ctx context.Context, path string, form UploadForm, dst any, opts ...CallOption) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range form.Fields {
		if err := mw.WriteField(name, value); err != nil {
			return fmt.Errorf("write multipart field %s: %w", name, err)
		}
	}
	if form.File != nil {
		field := form.FileField
		if field == "" {
			field = "File"
		}
		part, err := mw.CreateFormFile(field, form.FileName)
		if err != nil {
			return fmt.Errorf("create multipart file part: %w", err)
		}
		if _, err := io.Copy(part, form.File); err != nil {
			return fmt.Errorf("copy upload content: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), dst, opts)
}

func encodeBody(body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return bytes.NewReader(b), nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, dst any, opts []CallOption) error {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &APIError{Method: method, Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token, ok := TokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := &APIError{Method: method, Path: path, Err: err}
		c.logFailure(ctx, o, apiErr)
		return apiErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response body: %w", err)}
		c.logFailure(ctx, o, apiErr)
		return apiErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(data)}
		c.logFailure(ctx, o, apiErr)
		return apiErr
	}

	if resp.StatusCode == http.StatusNoContent || dst == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := Decode(data, dst, o.idKey); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) logFailure(ctx context.Context, o callOptions, apiErr *APIError) {
	attrs := []any{
		slog.String("method", apiErr.Method),
		slog.String("path", apiErr.Path),
		slog.Int("status", apiErr.StatusCode),
		slog.String("error", apiErr.Error()),
	}
	if o.silent {
		c.logger.DebugContext(ctx, "api call missed", attrs...)
		return
	}
	c.logger.ErrorContext(ctx, "api call failed", attrs...)
}
