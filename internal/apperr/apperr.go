// Package apperr defines the error taxonomy shared by every layer of the
// backend. Handlers raise or translate into these kinds; the HTTP boundary
// maps them to status codes exactly once.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport-level mapping.
type Kind int

const (
	// KindUpstream is a remote service call that failed for any reason not
	// covered by a more specific kind.
	KindUpstream Kind = iota
	// KindInvalidArgument is a malformed or incomplete request body.
	KindInvalidArgument
	// KindUnauthorized is a missing, invalid, expired or wrong-audience
	// token, or a failed credential exchange.
	KindUnauthorized
	// KindNotFound is a referenced agent or conversation that does not exist.
	KindNotFound
	// KindUnavailable is a network-level failure reaching a remote service,
	// distinct from the service rejecting the call.
	KindUnavailable
)

// Error carries a kind, a human-readable message and an optional cause.
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

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind with an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func InvalidArgument(format string, args ...any) *Error {
	return New(KindInvalidArgument, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(KindUnauthorized, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func Upstream(err error, format string, args ...any) *Error {
	return Wrap(KindUpstream, err, format, args...)
}

func Unavailable(err error, format string, args ...any) *Error {
	return Wrap(KindUnavailable, err, format, args...)
}

// KindOf returns the kind of err, or KindUpstream for untyped errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUpstream
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// Status maps an error to the HTTP status code written at the boundary.
func Status(err error) int {
	switch KindOf(err) {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
