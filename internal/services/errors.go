// Package services defines the business logic for customers, contact logs,
// and tasks. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import (
	"errors"
	"strings"
)

var (
	// ErrCustomerNotFound indicates that the requested customer does not
	// exist (or was soft-deleted).
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrContactNotFound indicates that the requested contact log does not
	// exist.
	ErrContactNotFound = errors.New("contact not found")

	// ErrTaskNotFound indicates that the requested task does not exist.
	ErrTaskNotFound = errors.New("task not found")
)

// ValidationError aggregates every failed input check so the caller can
// report them all at once instead of one per round trip. Check for it with
// errors.As.
type ValidationError struct {
	Messages []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation: " + strings.Join(e.Messages, "; ")
}

// newValidationError returns nil when no messages were collected.
func newValidationError(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	return &ValidationError{Messages: msgs}
}
