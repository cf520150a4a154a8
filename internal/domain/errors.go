package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrNotConnected     = errors.New("integration not connected")
	ErrNotFound         = errors.New("not found")
	ErrTimedOut         = errors.New("timed out")
	ErrConcurrentUpdate = errors.New("concurrent update")
)

// ValidationError reports a missing or malformed field. It matches
// ErrInvalidRequest under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// NewValidationError is shorthand for a field-level ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ExternalServiceError wraps a non-success answer from an upstream API.
type ExternalServiceError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *ExternalServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}
