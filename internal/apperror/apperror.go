// Package apperror defines the domain errors shared by the service, store and
// HTTP layers. Handlers map the sentinels below to status codes; nothing
// below the handler layer knows about HTTP.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error             // sentinel the error unwraps to
	Message string            // Human-readable error message
	Field   string            // Optional: single field causing the error
	Fields  map[string]string // Optional: per-field messages for payload validation
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource looked up by key, e.g.
// No programmer found with nickname "Bob".
func NotFound(resource, key, value string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("No %s found with %s %q", resource, key, value),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Fields:  map[string]string{field: message},
	}
}

// Invalid collects several field errors into one validation error. With a
// single field the message is that field's message; otherwise it lists the
// fields in name order.
func Invalid(fields map[string]string) *AppError {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 1 {
		return &AppError{
			Err:     ErrValidation,
			Message: fields[names[0]],
			Field:   names[0],
			Fields:  fields,
		}
	}

	return &AppError{
		Err:     ErrValidation,
		Message: "invalid fields: " + strings.Join(names, ", "),
		Fields:  fields,
	}
}

func Conflict(resource, key, value string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("A %s already exists with %s %q", resource, key, value),
		Field:   key,
	}
}

// Unauthorized is returned when credentials are missing or wrong.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
