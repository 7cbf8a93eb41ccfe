package entity

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEmail  = errors.New("invalid email")
	ErrInvalidName   = errors.New("invalid name")
	ErrInvalidStatus = errors.New("invalid status")
)

// FieldViolation describes a single rejected input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when input breaks an entity invariant.
// Nothing is constructed when it is returned.
type ValidationError struct {
	Message    string
	Violations []FieldViolation
	cause      error
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("%s: %s %s", e.Message, e.Violations[0].Field, e.Violations[0].Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.cause }

func newValidationError(cause error, field, message string) *ValidationError {
	return &ValidationError{
		Message:    "Validation failed",
		Violations: []FieldViolation{{Field: field, Message: message}},
		cause:      cause,
	}
}

// InvalidStateTransitionError reports a status change the aggregate does not allow.
type InvalidStateTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot transition user from %s to %s", e.From, e.To)
}
