package model

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel kind behind every InvalidInputError.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports which caller-supplied field was rejected.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: reason}
}
