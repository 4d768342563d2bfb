// Package errors tests for error code definitions and error handling.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestErrorCodeValues verifies all error codes have non-empty, unique values.
func TestErrorCodeValues(t *testing.T) {
	tests := []struct {
		name string
		code ErrorCode
	}{
		{"internal", ErrInternal},
		{"invalid", ErrInvalid},
		{"not found", ErrNotFound},
		{"validation", ErrValidation},
		{"database", ErrDatabase},
		{"migration", ErrMigration},
		{"constraint", ErrConstraint},
		{"submit failed", ErrSubmitFailed},
		{"submit rejected", ErrSubmitRejected},
		{"malformed response", ErrMalformedResponse},
		{"cycle failed", ErrCycleFailed},
		{"cycle in progress", ErrCycleInProgress},
		{"media store", ErrMediaStore},
	}

	seen := make(map[ErrorCode]string)
	for _, tt := range tests {
		if tt.code == "" {
			t.Errorf("Error code for %s is empty", tt.name)
		}
		if prev, ok := seen[tt.code]; ok {
			t.Errorf("Error code %s reused by %s and %s", tt.code, prev, tt.name)
		}
		seen[tt.code] = tt.name
	}
}

// TestAppError_Error verifies error message formatting.
func TestAppError_Error(t *testing.T) {
	err := New(ErrNotFound, "pending product 7 not found")
	msg := err.Error()
	if !strings.Contains(msg, string(ErrNotFound)) {
		t.Errorf("Expected message to contain code, got: %s", msg)
	}
	if !strings.Contains(msg, "pending product 7 not found") {
		t.Errorf("Expected message to contain text, got: %s", msg)
	}

	wrapped := Wrap(ErrDatabase, "insert failed", fmt.Errorf("disk full"))
	if !strings.Contains(wrapped.Error(), "disk full") {
		t.Errorf("Expected wrapped message to contain cause, got: %s", wrapped.Error())
	}
}

// TestAppError_Unwrap verifies the error chain is preserved.
func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Wrap(ErrSubmitFailed, "upload failed", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the wrapped cause")
	}
	if err.Unwrap() != cause {
		t.Error("Expected Unwrap to return the cause")
	}
}

// TestIs verifies code matching through wrapping.
func TestIs(t *testing.T) {
	err := Wrap(ErrSubmitRejected, "server said no", fmt.Errorf("status 422"))

	if !Is(err, ErrSubmitRejected) {
		t.Error("Expected Is to match the code")
	}
	if Is(err, ErrSubmitFailed) {
		t.Error("Expected Is not to match a different code")
	}

	// Code is found even when the AppError itself is wrapped again.
	outer := fmt.Errorf("cycle item: %w", err)
	if !Is(outer, ErrSubmitRejected) {
		t.Error("Expected Is to match through an outer wrap")
	}

	if Is(fmt.Errorf("plain"), ErrSubmitRejected) {
		t.Error("Expected Is to reject a plain error")
	}
}

// TestNotFound verifies the NOT_FOUND convenience constructor.
func TestNotFound(t *testing.T) {
	err := NotFound(42)
	if !Is(err, ErrNotFound) {
		t.Error("Expected NOT_FOUND code")
	}
	if !strings.Contains(err.Error(), "42") {
		t.Errorf("Expected id in message, got: %s", err.Error())
	}
}

// TestCodeOf verifies code extraction with fallback.
func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(ErrCycleFailed, "boom")); got != ErrCycleFailed {
		t.Errorf("Expected CYCLE_FAILED, got %s", got)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != ErrInternal {
		t.Errorf("Expected INTERNAL_ERROR fallback, got %s", got)
	}
}
