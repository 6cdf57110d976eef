// Package apperror classifies the failures component operations can return.
// Operations never panic across a component boundary; they return an *Error
// carrying a kind plus a human-readable message for the UI layer to display.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the category of a failure.
type Kind string

const (
	// Validation means the input was malformed or missing.
	Validation Kind = "validation"
	// Authorization means the actor lacks rights over the target entity.
	Authorization Kind = "authorization"
	// NotFound means a referenced id is absent.
	NotFound Kind = "not_found"
	// Conflict means the duplicate-slot invariant (or a comparable uniqueness
	// rule) was violated.
	Conflict Kind = "conflict"
	// InvalidTransition means a booking state-machine rule was violated.
	InvalidTransition Kind = "invalid_transition"
	// Remote is the catch-all for backing-store and network faults.
	Remote Kind = "remote"
)

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error that preserves an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err. Errors that are not *Error are treated as
// Remote faults; a nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Remote
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a kind to the status code the HTTP layer responds with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Validation, InvalidTransition:
		return http.StatusBadRequest
	case Authorization:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
