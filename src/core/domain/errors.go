package domain

import (
	"errors"
	"fmt"
)

// Domain error types for consistent error handling across the application.

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when authentication is required but not provided
	// or the identity provider rejected the presented credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict is returned when there's a conflict with the current state.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable is returned when an upstream dependency (identity provider,
	// cache) cannot be reached or answered with a server error.
	ErrUnavailable = errors.New("service unavailable")
)

// DomainError wraps a base error with additional context.
type DomainError struct {
	// Base is the underlying error type (e.g., ErrInvalidInput)
	Base error

	// Message provides human-readable context
	Message string

	// Field indicates which field caused the error (for validation errors)
	Field string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Base.Error(), e.Message, e.Field)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Base.Error(), e.Message)
	}
	return e.Base.Error()
}

// Unwrap returns the base error for errors.Is/As support.
func (e *DomainError) Unwrap() error {
	return e.Base
}

// NewValidationError creates a validation error for a specific field.
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Base:    ErrInvalidInput,
		Message: message,
		Field:   field,
	}
}

// NewConflictError creates a conflict error with context.
func NewConflictError(message string) *DomainError {
	return &DomainError{
		Base:    ErrConflict,
		Message: message,
	}
}

// NewUnauthorizedError creates an unauthorized error with context.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{
		Base:    ErrUnauthorized,
		Message: message,
	}
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(message string) *DomainError {
	return &DomainError{
		Base:    ErrUnavailable,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsUnauthorized checks if an error is unauthorized.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsUnavailable checks if an error reports an unreachable dependency.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
