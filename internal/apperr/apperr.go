// Package apperr defines the business error taxonomy shared by services and
// repositories. Handlers map these to HTTP statuses with errors.As; the types
// themselves know nothing about transport.
package apperr

import "fmt"

// ValidationError reports a rejected input value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validationf builds a ValidationError with a formatted reason.
func Validationf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConflictError reports a state collision, such as a second open register for
// the same store or a second closure on the same day.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func Conflict(msg string) *ConflictError { return &ConflictError{Msg: msg} }

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NotFound(msg string) *NotFoundError { return &NotFoundError{Msg: msg} }

// InvalidStateError reports an operation attempted against a resource in the
// wrong lifecycle state, such as posting to a closed register.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }

func InvalidState(msg string) *InvalidStateError { return &InvalidStateError{Msg: msg} }
