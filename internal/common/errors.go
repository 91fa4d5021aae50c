// Package common defines shared constants and sentinel errors used across
// the career vault service. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors. ErrorInternal's text is all a client sees of an
	// unclassified failure.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// ErrDependency marks a failed provider or store call.
	ErrDependency = errors.New("dependency failure")

	// ErrConsistency marks denormalized counters that diverge from live rows.
	ErrConsistency = errors.New("consistency violation")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrorValidation
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Dependency wraps err as a dependency failure of the named collaborator.
func Dependency(name string, err error) error {
	return fmt.Errorf("%s: %w: %w", name, ErrDependency, err)
}
