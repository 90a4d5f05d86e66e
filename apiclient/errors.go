package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// duplicateMarkers are the fragments the backend puts in a 400 body when the resource exists.
var duplicateMarkers = []string{"existe", "duplicate", "already exists"}

// APIError is returned for transport failures (StatusCode == 0) and non-2xx responses.
// Its message is the raw response body, falling back to the status text.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if body := strings.TrimSpace(e.Body); body != "" {
		return body
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Transport reports whether the request never produced an HTTP response.
func (e *APIError) Transport() bool {
	return e.StatusCode == 0
}

func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsDuplicate reports a 400 response whose body says the resource already exists.
func IsDuplicate(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		return false
	}
	body := strings.ToLower(apiErr.Body)
	for _, marker := range duplicateMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}
