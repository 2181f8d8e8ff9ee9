package control

import (
	"errors"
	"fmt"
)

// AdmitError records a conclusion that memory refused. The cycle logs it
// and continues with the next admission.
type AdmitError struct {
	// Task is the printed form of the refused task.
	Task string

	// Label is the origin label it was submitted with.
	Label string

	// Err is the error returned by memory.
	Err error
}

// Error implements the error interface.
func (e *AdmitError) Error() string {
	return fmt.Sprintf("admit %s (%s): %v", e.Task, e.Label, e.Err)
}

// Unwrap returns the memory error.
func (e *AdmitError) Unwrap() error {
	return e.Err
}

// IsAdmitError returns true if err is or wraps an *AdmitError.
func IsAdmitError(err error) bool {
	var ae *AdmitError
	return errors.As(err, &ae)
}
