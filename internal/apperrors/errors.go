package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for terminal not-found conditions.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrCartNotFound = errors.New("shopcart not found")
	ErrEmptyCart    = errors.New("shopcart has no items")
	ErrForbidden    = errors.New("forbidden")
)

// ValidationError signals bad input shape. Never retried by callers.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// DependencyError wraps a failure of a downstream service. Callers should
// retry with backoff or apply their documented fallback.
type DependencyError struct {
	Service string
	Err     error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

func NewDependencyError(service string, err error) *DependencyError {
	return &DependencyError{Service: service, Err: err}
}

// PersistenceError signals a failed multi-step write after its compensating
// action has already run.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
