// Package errors provides error code definitions for the catalog core.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error code for a failure class.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrInvalid    ErrorCode = "INVALID_INPUT"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrValidation ErrorCode = "VALIDATION_ERROR"

	// Store errors
	ErrDatabase   ErrorCode = "DATABASE_ERROR"
	ErrMigration  ErrorCode = "MIGRATION_FAILED"
	ErrConstraint ErrorCode = "CONSTRAINT_VIOLATION"

	// Submit errors (remote product service)
	ErrSubmitFailed      ErrorCode = "SUBMIT_FAILED"      // network failure
	ErrSubmitRejected    ErrorCode = "SUBMIT_REJECTED"    // non-success response
	ErrMalformedResponse ErrorCode = "MALFORMED_RESPONSE" // unparseable response body

	// Cycle errors
	ErrCycleFailed     ErrorCode = "CYCLE_FAILED"
	ErrCycleInProgress ErrorCode = "CYCLE_IN_PROGRESS"

	// Media errors
	ErrMediaStore ErrorCode = "MEDIA_STORE_FAILED"
)

// AppError represents an application error with code and message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NotFound creates a NOT_FOUND error for a submission id.
func NotFound(id int64) *AppError {
	return New(ErrNotFound, fmt.Sprintf("pending product %d not found", id))
}

// Is checks if an error carries a specific code, unwrapping as needed.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the error code carried by err, or ErrInternal if none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}
