// Package apperror defines the error taxonomy shared by the client SDK and
// the development backend.
//
// Every error carries a sentinel (ErrNotFound, ErrTransport, ...) so callers
// can branch with errors.Is, and a human-readable Message suitable for
// showing to the user.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// Remote call failures. These are the only three kinds the client
	// distinguishes when talking to the backend.
	ErrTransport = errors.New("transport failure")
	ErrStatus    = errors.New("unexpected status")
	ErrDecode    = errors.New("decode failure")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Status  int    // Optional: HTTP status for ErrStatus
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the underlying cause, so errors.Is
// matches either.
func (e *AppError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}
	return []error{e.Err}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for missing or rejected credentials.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Transport wraps a network-level failure talking to endpoint.
func Transport(endpoint string, cause error) *AppError {
	return &AppError{
		Err:     ErrTransport,
		Message: fmt.Sprintf("calling %s", endpoint),
		cause:   cause,
	}
}

// Status reports a non-success HTTP status from endpoint.
func Status(endpoint string, status int) *AppError {
	return &AppError{
		Err:     ErrStatus,
		Message: fmt.Sprintf("%s responded with status %d", endpoint, status),
		Status:  status,
	}
}

// Decode wraps a payload that could not be decoded.
func Decode(endpoint string, cause error) *AppError {
	return &AppError{
		Err:     ErrDecode,
		Message: fmt.Sprintf("decoding %s response", endpoint),
		cause:   cause,
	}
}

// StatusCode returns the HTTP status carried by an ErrStatus error, or 0.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && errors.Is(appErr.Err, ErrStatus) {
		return appErr.Status
	}
	return 0
}

// FieldOf returns the field name attached to the first AppError in err's
// chain, or "".
func FieldOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// Fields collects field -> message for every validation or conflict
// AppError in err, including errors combined with errors.Join.
func Fields(err error) map[string]string {
	out := make(map[string]string)
	collectFields(err, out)
	return out
}

func collectFields(err error, out map[string]string) {
	if err == nil {
		return
	}
	if appErr, ok := err.(*AppError); ok {
		if appErr.Field != "" {
			if _, seen := out[appErr.Field]; !seen {
				out[appErr.Field] = appErr.Message
			}
		}
		return
	}
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			collectFields(e, out)
		}
	case interface{ Unwrap() error }:
		collectFields(x.Unwrap(), out)
	}
}
