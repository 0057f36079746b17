package helper

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned when the configured provider has no API key.
	ErrMissingCredential = errors.New("missing API credential")
	// ErrEmptyFile is returned when an input file exists but has no usable content.
	ErrEmptyFile = errors.New("file is empty")
)

// Error wraps an error with the operation that failed
type Error struct {
	Operation string
	Err       error
}

// NewError creates a new error for the given operation.
// It returns nil if err is nil.
func NewError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Operation: operation,
		Err:       err,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
