package tasks

import (
	"errors"
	"fmt"
)

// Sentinel errors for task operations.
var (
	ErrEmptyField  = errors.New("field must not be empty")
	ErrPastDueDate = errors.New("due date is in the past")
	ErrInvalidDate = errors.New("due date is not a valid date")
	ErrNotFound    = errors.New("task not found")
	ErrDuplicateID = errors.New("duplicate task id")
)

// ValidationError reports rejected user input. Err is one of ErrEmptyField,
// ErrPastDueDate or ErrInvalidDate.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
