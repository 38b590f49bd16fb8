// Package apperr defines the typed error kinds shared by the service's layers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error for propagation and HTTP mapping.
type Kind string

const (
	KindValidation           Kind = "validation_error"
	KindNotFound             Kind = "not_found"
	KindConflict             Kind = "conflict"
	KindInvalidState         Kind = "invalid_state"
	KindForbidden            Kind = "forbidden"
	KindUnauthenticated      Kind = "unauthenticated"
	KindAvailabilityConflict Kind = "availability_conflict"
	KindNetwork              Kind = "network_error"
	KindInternal             Kind = "internal_error"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// NewValidationError reports a missing or malformed input detected locally.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

// NewConflictError reports a write that collided with existing state.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewInvalidStateError reports a refused state transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewInvalidStateMessage reports a refused operation with a custom reason.
func NewInvalidStateMessage(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

// NewForbiddenError reports an operation on a resource the caller does not own.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewUnauthenticatedError reports an operation that needs a signed-in identity.
func NewUnauthenticatedError(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// NewAvailabilityConflict reports a vehicle that cannot be booked right now.
func NewAvailabilityConflict(message string) *Error {
	return &Error{Kind: KindAvailabilityConflict, Message: message}
}

// NewNetworkError wraps a failed or timed-out outbound call.
func NewNetworkError(message string, err error) *Error {
	return &Error{Kind: KindNetwork, Message: message, Err: err}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindInternal
}

// PublicMessage returns the part of err that may be shown to clients.
// Wrapped causes are left out and unclassified errors are masked.
func PublicMessage(err error) string {
	var target *Error
	if !errors.As(err, &target) || target.Kind == KindInternal {
		return "internal server error"
	}
	if target.Message == "" {
		return string(target.Kind)
	}
	return target.Message
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var target *Error
	return errors.As(err, &target) && target.Kind == kind
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return Is(err, KindValidation) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return Is(err, KindNotFound) }

// IsNetwork reports whether err is a network error.
func IsNetwork(err error) bool { return Is(err, KindNetwork) }

// IsUnauthenticated reports whether err requires sign-in.
func IsUnauthenticated(err error) bool { return Is(err, KindUnauthenticated) }

// Retryable reports whether the caller may repeat the same operation unchanged.
func Retryable(err error) bool {
	return IsNetwork(err) || IsUnauthenticated(err)
}
