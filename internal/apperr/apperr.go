// Package apperr defines the error kinds surfaced to API callers and their
// HTTP status mapping.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure for transport mapping.
type Kind string

const (
	AuthenticationMissing Kind = "authentication_missing"
	AuthenticationInvalid Kind = "authentication_invalid"
	ValidationFailed      Kind = "validation_failed"
	NotFound              Kind = "not_found"
	Forbidden             Kind = "forbidden"
	Conflict              Kind = "conflict"
	Internal              Kind = "internal"
)

// Error carries a Kind together with a message that is safe to return to the
// caller. Err, when set, is the underlying cause and is never exposed.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and public message to cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf returns the kind of err, or Internal when err carries none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Message returns the caller-facing message of err. Errors without a kind
// map to a generic message so internal details are not leaked.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "internal server error"
}

// Status maps a kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case AuthenticationMissing, AuthenticationInvalid:
		return http.StatusUnauthorized
	case ValidationFailed:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
