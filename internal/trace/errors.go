package trace

import (
	"errors"
	"fmt"
)

// ContractError reports a broken precondition or internal invariant of the
// trace. AddEvent panics with a *ContractError when handed an eternal
// event; CheckInvariants returns one when the indexes disagree.
type ContractError struct {
	// Code identifies the error category.
	Code ContractErrorCode

	// Message is a human-readable description.
	Message string

	// Time is the occurrence time involved, if any.
	Time int64
}

// ContractErrorCode categorizes contract violations.
type ContractErrorCode string

const (
	// ErrCodeEternalEvent indicates an event without occurrence time.
	ErrCodeEternalEvent ContractErrorCode = "ETERNAL_EVENT"

	// ErrCodeDuplicateTime indicates two items with the same occurrence time.
	ErrCodeDuplicateTime ContractErrorCode = "DUPLICATE_TIME"

	// ErrCodeUnordered indicates items out of ascending time order.
	ErrCodeUnordered ContractErrorCode = "UNORDERED"

	// ErrCodeIndex indicates a time or term index entry that does not match
	// the items.
	ErrCodeIndex ContractErrorCode = "INDEX_MISMATCH"
)

// Error implements the error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %s (time=%d)", e.Code, e.Message, e.Time)
}

// IsContractError returns true if err is a *ContractError with the given code.
// Uses errors.As to handle wrapped errors.
func IsContractError(err error, code ContractErrorCode) bool {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
