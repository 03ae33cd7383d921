package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("unlock prerequisite not met")
	ErrConflict      = errors.New("already exists")
	ErrNoFields      = errors.New("no fields to update")
	ErrCycleDetected = errors.New("hotspot parent chain forms a cycle")
	ErrNotNavigable  = errors.New("hotspot has no target image")
)

// ValidationError describes malformed input. It matches ErrValidation.
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

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// CycleDetectedError is returned when walking the parents of StartID did not
// terminate within Steps iterations. It matches ErrCycleDetected.
type CycleDetectedError struct {
	StartID string
	Steps   int
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("cycle detected in parent chain of hotspot %q after %d steps", e.StartID, e.Steps)
}

func (e *CycleDetectedError) Unwrap() error { return ErrCycleDetected }
