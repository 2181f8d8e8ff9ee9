package reasoner

import (
	"errors"
	"fmt"
)

// RuntimeError is an error detected while the engine runs.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// SessionID identifies the affected session.
	SessionID string

	// Cycle is the logical time at which the error happened.
	Cycle int64

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeInvalidInput indicates an input task memory or the core refused.
	ErrCodeInvalidInput RuntimeErrorCode = "INVALID_INPUT"

	// ErrCodeJournal indicates the journal could not be written.
	ErrCodeJournal RuntimeErrorCode = "JOURNAL_FAILED"

	// ErrCodeUnknownEvent indicates an event the Run loop cannot route.
	ErrCodeUnknownEvent RuntimeErrorCode = "UNKNOWN_EVENT"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.SessionID != "" {
		msg = fmt.Sprintf("%s (session=%s, cycle=%d)", msg, e.SessionID, e.Cycle)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsInvalidInputError returns true if err is or wraps an input rejection.
func IsInvalidInputError(err error) bool {
	return hasCode(err, ErrCodeInvalidInput)
}

// IsJournalError returns true if err is or wraps a journal failure.
func IsJournalError(err error) bool {
	return hasCode(err, ErrCodeJournal)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}
