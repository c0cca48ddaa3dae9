package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions. Only network
// errors are surfaced to users; every other category is absorbed with a
// best-effort fallback and logged.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input
	ErrCatNetwork    ErrorCategory = "network"    // Backend transport failure
	ErrCatState      ErrorCategory = "state"      // Persistence failure/corruption
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{Category: ErrCatValidation, Code: code, Message: message}
}

// ErrNetwork creates a backend transport error. These are the only errors
// surfaced to callers as user-visible failures.
func ErrNetwork(code, message string) *DomainError {
	return &DomainError{Category: ErrCatNetwork, Code: code, Message: message, Retryable: true}
}

// ErrState creates a persistence error.
func ErrState(code, message string) *DomainError {
	return &DomainError{Category: ErrCatState, Code: code, Message: message}
}

// ErrNotFound creates a not-found error.
func ErrNotFound(code, message string) *DomainError {
	return &DomainError{Category: ErrCatNotFound, Code: code, Message: message}
}

// ErrInternal creates an internal error.
func ErrInternal(code, message string) *DomainError {
	return &DomainError{Category: ErrCatInternal, Code: code, Message: message}
}

// IsTransport reports whether err is a backend transport failure.
func IsTransport(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Category == ErrCatNetwork
	}
	return false
}

// CategoryOf extracts the error category, defaulting to internal.
func CategoryOf(err error) ErrorCategory {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Category
	}
	return ErrCatInternal
}
