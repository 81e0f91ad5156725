package apikit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tyemirov/teamnest/internal/session"
)

// ErrorKind classifies a normalized API failure.
type ErrorKind string

// Error kinds surfaced to calling code. Raw transport errors and backend
// status codes are normalized into this taxonomy once, at the client
// boundary; callers never re-interpret HTTP statuses.
const (
	ErrorKindNetwork     ErrorKind = "network"
	ErrorKindAuth        ErrorKind = "auth"
	ErrorKindForbidden   ErrorKind = "forbidden"
	ErrorKindValidation  ErrorKind = "validation"
	ErrorKindNotFound    ErrorKind = "not_found"
	ErrorKindConflict    ErrorKind = "conflict"
	ErrorKindRateLimited ErrorKind = "rate_limited"
	ErrorKindServer      ErrorKind = "server"
	ErrorKindUnknown     ErrorKind = "unknown"
)

// APIError is the single error shape produced by the client for every failed
// call: { kind, httpStatus, message, fieldErrors? }.
type APIError struct {
	Kind        ErrorKind
	HTTPStatus  int
	Message     string
	FieldErrors map[string][]string
	cause       error
}

// Error renders the kind, message, and status.
func (apiError *APIError) Error() string {
	if apiError.HTTPStatus == 0 {
		return fmt.Sprintf("api.%s: %s", apiError.Kind, apiError.Message)
	}
	return fmt.Sprintf("api.%s: %s (http %d)", apiError.Kind, apiError.Message, apiError.HTTPStatus)
}

// Unwrap exposes the underlying cause for errors.Is chains.
func (apiError *APIError) Unwrap() error {
	return apiError.cause
}

// KindOf extracts the ErrorKind from an error, or ErrorKindUnknown when the
// error did not come from this client.
func KindOf(err error) ErrorKind {
	var apiError *APIError
	if errors.As(err, &apiError) {
		return apiError.Kind
	}
	return ErrorKindUnknown
}

// IsAuthError reports whether the error is the terminal unauthenticated kind.
func IsAuthError(err error) bool {
	if errors.Is(err, session.ErrUnauthenticated) {
		return true
	}
	return KindOf(err) == ErrorKindAuth
}

// errorEnvelope is the backend's standard error body: { detail | message, errors? }.
type errorEnvelope struct {
	Detail  string              `json:"detail"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func kindForStatus(statusCode int) ErrorKind {
	switch {
	case statusCode == http.StatusUnauthorized:
		return ErrorKindAuth
	case statusCode == http.StatusForbidden:
		return ErrorKindForbidden
	case statusCode == http.StatusBadRequest || statusCode == http.StatusUnprocessableEntity:
		return ErrorKindValidation
	case statusCode == http.StatusNotFound:
		return ErrorKindNotFound
	case statusCode == http.StatusConflict:
		return ErrorKindConflict
	case statusCode == http.StatusTooManyRequests:
		return ErrorKindRateLimited
	case statusCode >= 500:
		return ErrorKindServer
	default:
		return ErrorKindUnknown
	}
}

// normalizeErrorResponse maps a failed HTTP response onto the taxonomy.
func normalizeErrorResponse(statusCode int, body []byte) *APIError {
	envelope := errorEnvelope{}
	_ = json.Unmarshal(body, &envelope)
	message := envelope.Detail
	if message == "" {
		message = envelope.Message
	}
	if strings.TrimSpace(message) == "" {
		message = http.StatusText(statusCode)
	}
	return &APIError{
		Kind:        kindForStatus(statusCode),
		HTTPStatus:  statusCode,
		Message:     message,
		FieldErrors: envelope.Errors,
	}
}

func newNetworkError(cause error) *APIError {
	return &APIError{
		Kind:    ErrorKindNetwork,
		Message: cause.Error(),
		cause:   cause,
	}
}

func newUnauthenticatedError(cause error) *APIError {
	return &APIError{
		Kind:       ErrorKindAuth,
		HTTPStatus: http.StatusUnauthorized,
		Message:    "session expired; log in again",
		cause:      cause,
	}
}
