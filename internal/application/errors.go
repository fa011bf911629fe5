package application

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the acting principal is neither the
	// reservation owner nor an administrator.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a unique attribute is already taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrTooLateToCancel is returned when a cancellation misses the one-hour
	// advance window.
	ErrTooLateToCancel = errors.New("application: too late to cancel")
	// ErrRoomInUse is returned when a room deletion is blocked by active
	// reservations.
	ErrRoomInUse = errors.New("application: room has active reservations")
	// ErrStoreConflict is returned when the transactional commit lost a race
	// with a concurrent booking; the caller should retry from scratch.
	ErrStoreConflict = errors.New("application: store conflict")
)

// ValidationError accumulates business-rule violations keyed by field. Every
// applicable rule is evaluated before the error is returned, so callers can
// report all problems in one pass.
type ValidationError struct {
	FieldErrors map[string][]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Messages returns the violations recorded for a field, in insertion order.
func (v *ValidationError) Messages(field string) []string {
	if v == nil {
		return nil
	}
	return v.FieldErrors[field]
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string][]string)
	}
	v.FieldErrors[field] = append(v.FieldErrors[field], message)
}

// addf records a formatted field level validation error.
func (v *ValidationError) addf(field, format string, args ...any) {
	v.add(field, fmt.Sprintf(format, args...))
}

// InvalidInputError marks a malformed request: a caller bug such as a missing
// required field or an unresolvable room reference, as opposed to a business
// rejection.
type InvalidInputError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
}

func invalidInput(field, message string) *InvalidInputError {
	return &InvalidInputError{Field: field, Message: message}
}
