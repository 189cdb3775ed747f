package order

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the referenced order does not exist.
var ErrNotFound = errors.New("order not found")

// ErrTrackingExhausted is returned when tracking number generation keeps
// colliding past the retry budget.
var ErrTrackingExhausted = errors.New("could not generate a unique tracking number")

// ValidationError rejects a malformed request before any side effects.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// AuthorizationError rejects a caller acting on an order that is not theirs
// to act on, including self-purchase.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return e.Reason }

// InvalidTransitionError rejects a status change outside the legal graph.
type InvalidTransitionError struct {
	Field string
	From  string
	To    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition %s from %q to %q", e.Field, e.From, e.To)
}
