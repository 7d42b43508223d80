package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound      = errors.New("resource not found")
	ErrTokenNotFound = fmt.Errorf("%w: token", ErrNotFound)

	// Recoverable by the caller: fix the input or pick another formula
	ErrValidation            = errors.New("attribute validation failed")
	ErrUnsupportedCollection = errors.New("unsupported collection")

	// Internal bugs. Never retried, never swallowed.
	ErrInvariantViolation = errors.New("invariant violation")
)

// ValidationError reports a raw attribute that could not be classified.
type ValidationError struct {
	TokenID TokenID
	Name    string
	Value   interface{}
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: token %s attribute %q value %v: %s", ErrValidation, e.TokenID, e.Name, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// UnsupportedCollectionError reports attributes a scoring formula cannot handle.
type UnsupportedCollectionError struct {
	Formula    string
	Attributes []string
}

func (e *UnsupportedCollectionError) Error() string {
	return fmt.Sprintf("%v: formula %s supports string attributes only, found %s",
		ErrUnsupportedCollection, e.Formula, strings.Join(e.Attributes, ", "))
}

func (e *UnsupportedCollectionError) Unwrap() error {
	return ErrUnsupportedCollection
}

// Error constructors with context
func NewValidationError(tokenID TokenID, name string, value interface{}, reason string) error {
	return &ValidationError{TokenID: tokenID, Name: name, Value: value, Reason: reason}
}

func NewUnsupportedCollectionError(formula string, attributes []string) error {
	return &UnsupportedCollectionError{Formula: formula, Attributes: attributes}
}

func NewInvariantViolation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}

func NewTokenNotFoundError(id TokenID) error {
	return fmt.Errorf("%w with id %s", ErrTokenNotFound, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsUnsupportedCollection(err error) bool {
	return errors.Is(err, ErrUnsupportedCollection)
}

func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}
