package shared

import (
	"errors"
	"fmt"
)

// DomainError represents an expected business outcome reported to the caller
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so that errors.Is works against the
// sentinel values below even when the message was customised.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes used by the settlement core
const (
	CodeNotFound               = "NOT_FOUND"
	CodeAlreadyExists          = "ALREADY_EXISTS"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeAlreadyFinalized       = "ALREADY_FINALIZED"
	CodeDuplicateDistribution  = "DUPLICATE_DISTRIBUTION"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeValidation             = "VALIDATION_ERROR"
	CodeOverDeduction          = "OVER_DEDUCTION_REMAINDER"
	CodePersistenceFailure     = "PERSISTENCE_FAILURE"
)

// Common domain errors
var (
	ErrNotFound               = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists          = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidStateTransition = NewDomainError(CodeInvalidStateTransition, "Operation not allowed in current state")
	ErrAlreadyFinalized       = NewDomainError(CodeAlreadyFinalized, "Batch is already finalized")
	ErrDuplicateDistribution  = NewDomainError(CodeDuplicateDistribution, "Batch already has an active distribution")
	ErrConcurrentModification = NewDomainError(CodeConcurrentModification, "Resource was modified by another process")
	ErrValidation             = NewDomainError(CodeValidation, "Invalid input provided")
	ErrOverDeduction          = NewDomainError(CodeOverDeduction, "Deduction exceeds outstanding advances")
)

// IsCode reports whether err carries a DomainError with the given code
func IsCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// PersistenceError wraps a storage fault that aborted a multi-record write.
// The wrapped error stays reachable through errors.Is/As.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: persistence failure: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PersistenceFailure wraps err unless it is already a domain outcome
func PersistenceFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
