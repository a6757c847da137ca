package parking

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when an engine receives input that would make
// its arithmetic meaningless (zero capacity, non-finite durations, negative sizes).
var ErrInvalidInput = errors.New("invalid input")

// InputError describes which field failed validation.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidInput).
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// Invalid builds an InputError for the given field.
func Invalid(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
