package handler

// RESPONSE HELPERS:
// Every error response from the API has the same shape:
//
//	{"error": "not_found", "message": "No programmer found with nickname \"Bob\""}
//
// Validation failures add a per-field map:
//
//	{"error": "validation_error", "message": "...", "errors": {"nickname": "Please enter a clever nickname"}}
//
// Clients can always parse the same fields, whatever the status code.

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/programmer-battle/internal/apperror"
	"github.com/sakif/programmer-battle/internal/form"
	"github.com/sakif/programmer-battle/internal/serializer"
)

// maxBodyBytes bounds how much of a request body is read.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string            `json:"error"`            // Machine-readable error type (e.g., "not_found")
	Message string            `json:"message"`          // Human-readable description
	Errors  map[string]string `json:"errors,omitempty"` // Per-field messages on validation failures
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	serializer.WriteJSON(w, status, data)
}

// errorStatus maps a domain error to an HTTP status and error type.
//
// errors.Is walks the whole chain, so a service that wraps an AppError with
// fmt.Errorf("...: %w", err) still maps correctly.
//
// A nickname collision is a 400, like any other rejected field value.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusBadRequest, "conflict"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// Unknown errors become a generic 500. Their text is logged, never sent:
// it may contain SQL or file paths.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, errorType := errorStatus(err)

	var appErr *apperror.AppError
	if status == http.StatusInternalServerError || !errors.As(err, &appErr) {
		logger.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	resp := ErrorResponse{Error: errorType, Message: appErr.Message}
	if errors.Is(err, apperror.ErrValidation) {
		resp.Errors = appErr.Fields
	} else if appErr.Field != "" {
		resp.Errors = map[string]string{appErr.Field: appErr.Message}
	}
	writeJSON(w, status, resp)
}

// readPayload reads and decodes the request body. An unreadable or
// malformed body yields an empty payload: the binder then reports missing
// fields, or changes nothing for a partial update.
func readPayload(r *http.Request, logger *slog.Logger) form.Payload {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		logger.Warn("failed to read request body", slog.String("error", err.Error()))
		return form.Payload{}
	}

	data, ok := form.Decode(body)
	if !ok && len(body) > 0 {
		logger.Warn("request body is not a JSON object",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}
	return data
}
