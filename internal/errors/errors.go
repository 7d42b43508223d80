package errors

import (
	stderrors "errors"
	"fmt"

	"gorarity/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context. Domain errors keep a code derived
// from their taxonomy so the CLI can report them precisely.
func Wrap(err error, message string) error {
	return wrap(err, message, CodeInternalError)
}

// WrapInvalidInput is Wrap for errors caused by user input: anything outside the
// domain taxonomy is reported as INVALID_INPUT instead of INTERNAL_ERROR.
func WrapInvalidInput(err error, message string) error {
	return wrap(err, message, CodeInvalidInput)
}

func wrap(err error, message, fallback string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    codeFor(err, fallback),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid         = "CONFIG_INVALID"
	CodeValidationError       = "VALIDATION_ERROR"
	CodeUnsupportedCollection = "UNSUPPORTED_COLLECTION"
	CodeInvariantViolation    = "INVARIANT_VIOLATION"
	CodeNotFound              = "NOT_FOUND"
	CodeInternalError         = "INTERNAL_ERROR"
	CodeInvalidInput          = "INVALID_INPUT"
)

func codeFor(err error, fallback string) string {
	switch {
	case core.IsValidationError(err):
		return CodeValidationError
	case core.IsUnsupportedCollection(err):
		return CodeUnsupportedCollection
	case core.IsInvariantViolation(err):
		return CodeInvariantViolation
	case core.IsNotFoundError(err):
		return CodeNotFound
	}
	return fallback
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
