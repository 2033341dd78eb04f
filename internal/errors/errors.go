package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected failure modes
var (
	ErrEmptyInput    = errors.New("empty input buffer")
	ErrUnknownPreset = errors.New("unknown instrument preset")
	ErrInvalidFrame  = errors.New("invalid analysis frame")
)

// ValidationError represents a pipeline configuration field outside its
// documented domain. Validation failures are hard errors raised before any
// analysis runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err wraps a configuration validation failure
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
