package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/EzequielDigiacomo/sigdef-admin/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type jsonResponse map[string]any

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names, which is what the SPA sends.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

// decodeAndValidate reads the body into dst and runs the struct validation tags. It writes the
// error response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := readJSON(w, r, dst); err != nil {
		badRequestResponse(w, r, err)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = validationMessage(fe)
			}
			failedValidationResponse(w, r, fields)
			return false
		}
		badRequestResponse(w, r, err)
		return false
	}
	return true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "nefield":
		return "must differ from " + fe.Param()
	case "email":
		return "must be a valid email address"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		}
		return "failed " + fe.Tag()
	}
}

func writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	writeEnvelope(w, r, status, jsonResponse{"error": message})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env jsonResponse) {
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write JSON response", "error", err, "path", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error", "error", err, "method", r.Method, "path", r.URL.Path)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		message = "the requested resource could not be found"
	}
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

func badGatewayResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.WarnContext(r.Context(), "federation backend request failed", "error", err, "path", r.URL.Path)
	errorResponse(w, r, http.StatusBadGateway, err.Error())
}

// mapServiceErrorToHTTP turns service errors into responses. A workflow that stopped after a
// mutation is reported first, whatever its cause, because the client must know the backend
// may now be half-updated.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var wfErr *services.WorkflowError
	if errors.As(err, &wfErr) && errors.Is(err, services.ErrInconsistentState) {
		slog.ErrorContext(r.Context(), "workflow left inconsistent state",
			"workflow", wfErr.Workflow, "run_id", wfErr.RunID, "step", wfErr.Step, "error", wfErr.Err)
		writeEnvelope(w, r, http.StatusBadGateway, jsonResponse{
			"error":           services.ErrInconsistentState.Error(),
			"run_id":          wfErr.RunID,
			"failed_step":     wfErr.Step,
			"completed_steps": wfErr.Completed,
			"detail":          wfErr.Err.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrPersonNotFound),
		errors.Is(err, services.ErrAthleteNotFound),
		errors.Is(err, services.ErrTutorNotFound),
		errors.Is(err, services.ErrClubNotFound),
		errors.Is(err, services.ErrRunNotFound),
		errors.Is(err, services.ErrJobNotFound):
		notFoundResponse(w, r, rootMessage(err))

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrDocumentRequired),
		errors.Is(err, services.ErrSameAthleteAndTutor):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrPassphraseMismatch):
		forbiddenResponse(w, r, err.Error())

	case errors.Is(err, services.ErrConfirmationRequired),
		errors.Is(err, services.ErrTeardownInProgress),
		errors.Is(err, services.ErrDeleteBlocked):
		conflictResponse(w, r, err.Error())

	case isBackendAuthError(err):
		errorResponse(w, r, apiclient.StatusCode(err), "the federation backend rejected the credentials")

	case errors.Is(err, services.ErrUpstream):
		badGatewayResponse(w, r, err)

	default:
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) {
			badGatewayResponse(w, r, err)
			return
		}
		serverErrorResponse(w, r, err)
	}
}

func isBackendAuthError(err error) bool {
	code := apiclient.StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// rootMessage returns the message of the innermost sentinel so a 404 body does not leak
// workflow wrapping.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		services.ErrPersonNotFound, services.ErrAthleteNotFound, services.ErrTutorNotFound,
		services.ErrClubNotFound, services.ErrRunNotFound, services.ErrJobNotFound,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ""
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing URL parameter: %s", paramName)
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", paramName)
	}
	return id, nil
}
