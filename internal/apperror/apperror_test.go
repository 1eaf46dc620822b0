// These tests pin down the contract the HTTP layer relies on: every
// constructor wraps exactly one sentinel, and that sentinel is still found
// after the service wraps the error with more context.
package apperror

import (
	"errors"
	"fmt"
	"testing"
)

// TABLE-DRIVEN TESTS:
// One slice of named cases and one loop. Adding a case is adding a struct;
// each name shows up in `go test -v` output.

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string // shown in test output
		err       error  // the error under test
		target    error  // sentinel it should (or should not) match
		wantMatch bool   // expected errors.Is() result
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("user", "42"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("first_name", "first_name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Conflict survives fmt.Errorf wrapping",
			err:       fmt.Errorf("registering user: %w", Conflict("user")),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrConflict",
			err:       NotFound("user", "42"),
			target:    ErrConflict,
			wantMatch: false,
		},
		{
			name:      "ValidationFailed does NOT match ErrNotFound",
			err:       ValidationFailed("telegram_id", "field required"),
			target:    ErrNotFound,
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

// Messages are shown to API callers verbatim ("User already exists" is the
// 409 body), so they are part of the contract too.
func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("user", "42"),
			wantMessage: "user not found with id 42",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("first_name", "first_name is required"),
			wantMessage: "first_name is required",
		},
		{
			name:        "Conflict message is capitalised",
			err:         Conflict("user"),
			wantMessage: "User already exists",
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
	err := Conflict("user")
	if unwrapped := err.Unwrap(); unwrapped != ErrConflict {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrConflict)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("telegram_id", "field required")

	if err.Field != "telegram_id" {
		t.Errorf("Field = %q, want %q", err.Field, "telegram_id")
	}
}
