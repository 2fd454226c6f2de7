package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("programmer", "nickname", "UnitTester"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("nickname", "nickname is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Invalid wraps ErrValidation",
			err:       Invalid(map[string]string{"avatarNumber": "bad"}),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("programmer", "nickname", "UnitTester"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("bad credentials"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "wrapped NotFound still matches",
			err:       fmt.Errorf("updating programmer: %w", NotFound("programmer", "nickname", "x")),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("programmer", "nickname", "x"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Conflict does NOT match ErrValidation",
			err:       Conflict("programmer", "nickname", "x"),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound quotes the key value",
			err:         NotFound("programmer", "nickname", "UnitTester"),
			wantMessage: `No programmer found with nickname "UnitTester"`,
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("nickname", "nickname is required"),
			wantMessage: "nickname is required",
		},
		{
			name:        "Invalid with one field uses that message",
			err:         Invalid(map[string]string{"avatarNumber": "avatarNumber is required"}),
			wantMessage: "avatarNumber is required",
		},
		{
			name: "Invalid with several fields lists them sorted",
			err: Invalid(map[string]string{
				"tagLine":      "must be a string",
				"avatarNumber": "is required",
			}),
			wantMessage: "invalid fields: avatarNumber, tagLine",
		},
		{
			name:        "Conflict names the key",
			err:         Conflict("programmer", "nickname", "UnitTester"),
			wantMessage: `A programmer already exists with nickname "UnitTester"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("programmer", "nickname", "x")

	if unwrapped := err.Unwrap(); unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("avatarNumber", "invalid choice")

	if err.Field != "avatarNumber" {
		t.Errorf("Field = %q, want %q", err.Field, "avatarNumber")
	}
	if err.Fields["avatarNumber"] != "invalid choice" {
		t.Errorf("Fields = %v, want avatarNumber entry", err.Fields)
	}
}

func TestInvalidSeveralFieldsHasNoSingleField(t *testing.T) {
	err := Invalid(map[string]string{"a": "x", "b": "y"})

	if err.Field != "" {
		t.Errorf("Field = %q, want empty", err.Field)
	}
	if len(err.Fields) != 2 {
		t.Errorf("len(Fields) = %d, want 2", len(err.Fields))
	}
}
