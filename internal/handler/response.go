package handler

// RESPONSE HELPERS:
// Every endpoint is a JSON POST. These helpers decode the request body and
// standardise how results and errors go back to the client.
//
// CONSISTENT ERROR FORMAT:
// Every error response has the same shape:
//   {"error": "not_found", "message": "Clothing article not found"}
//
// The client SDK only looks at the status code; the body is for humans and
// for the request log.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/fashionpolice/fashion-police/internal/apperror"
)

// maxRequestBytes caps request bodies. Post uploads carry a base64 image.
const maxRequestBytes = 16 << 20

// ErrorResponse is the standard error format returned by all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
	Field   string `json:"field,omitempty"`
}

// decodeJSON reads the request body into dst. An empty body decodes as the
// zero value.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status MUST be set before the body: once Encode writes, any
// later header change is silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent, we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeBadJSON answers a request body that is not the expected JSON.
func writeBadJSON(w http.ResponseWriter, logger *slog.Logger, endpoint string, err error) {
	logger.Warn("invalid request JSON",
		slog.String("endpoint", endpoint),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: "Invalid JSON body",
	})
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// ERROR MAPPING:
// The service layer returns apperror sentinels and never sees HTTP. This is
// the one place they become status codes:
//
//	ErrValidation   → 400
//	ErrUnauthorized → 401
//	ErrForbidden    → 403
//	ErrNotFound     → 404
//	ErrConflict     → 409
//	anything else   → 500, with the details kept out of the body
//
// errors.Is walks joined errors too, so a sign-up that fails several field
// checks at once still maps to 400.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError

	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		if status != http.StatusInternalServerError {
			writeJSON(w, status, ErrorResponse{
				Error:   errorType,
				Message: appErr.Message,
				Field:   appErr.Field,
			})
			return
		}
	}

	// NEVER expose internal error details to the client: the raw message
	// might contain SQL or file paths.
	logger.Error("request failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
