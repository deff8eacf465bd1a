package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error for callers that need to react to it
type ErrorKind string

const (
	KindConflict    ErrorKind = "CONFLICT"
	KindValidation  ErrorKind = "VALIDATION"
	KindNotFound    ErrorKind = "NOT_FOUND"
	KindPersistence ErrorKind = "PERSISTENCE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the collaborator error wrapped by a persistence error
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches errors of the same kind and code, so sentinel comparisons work
// against freshly constructed errors.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// NewDomainError creates a new domain error of the given kind
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewConflictError reports an operation that is illegal in the current state
func NewConflictError(code, message string) *DomainError {
	return NewDomainError(KindConflict, code, message)
}

// NewValidationError reports bad input (dates, quantities, amounts)
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

// NewNotFoundError reports an unknown room, service, charge or payment
func NewNotFoundError(code, message string) *DomainError {
	return NewDomainError(KindNotFound, code, message)
}

// NewPersistenceError wraps a store failure. The original error stays reachable
// through errors.Is / errors.As.
func NewPersistenceError(op string, err error) *DomainError {
	return &DomainError{
		Kind:    KindPersistence,
		Code:    "PERSISTENCE_FAILURE",
		Message: op,
		cause:   err,
	}
}

// TransitionError is the conflict raised by an illegal room status transition.
// It names the attempted transition and the status the room was in.
type TransitionError struct {
	Transition string
	Current    string
}

// Error implements the error interface
func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s: room is %s", e.Transition, e.Current)
}

// Unwrap lets TransitionError satisfy IsConflict
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// NewTransitionError creates a new TransitionError
func NewTransitionError(transition, current string) *TransitionError {
	return &TransitionError{Transition: transition, Current: current}
}

// Common domain errors
var (
	ErrNotFound            = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrInvalidInput        = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewConflictError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidTransition   = NewConflictError("INVALID_TRANSITION", "Operation not allowed in current state")
)

func isKind(err error, kind ErrorKind) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

// IsConflict reports whether err is an illegal transition or concurrent modification
func IsConflict(err error) bool { return isKind(err, KindConflict) }

// IsValidation reports whether err is an input validation failure
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsNotFound reports whether err refers to an unknown entity
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsPersistence reports whether err came from a store collaborator
func IsPersistence(err error) bool { return isKind(err, KindPersistence) }
