// Package apperr is the error taxonomy shared by all services. Every error a
// service hands back is either one of these (mapped straight to an HTTP
// status) or an unexpected error that the handler layer logs and hides behind
// a generic 500.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	HTTPStatus int
	Message    string
}

func (e *Error) Error() string { return e.Message }

func New(status int, msg string) *Error {
	return &Error{HTTPStatus: status, Message: msg}
}

var (
	ErrUnauthorized    = New(http.StatusUnauthorized, "unauthorized")
	ErrForbidden       = New(http.StatusForbidden, "forbidden")
	ErrProfileNotFound = New(http.StatusNotFound, "Profile not found")
	ErrJobNotFound     = New(http.StatusNotFound, "Job not found")
	ErrKeyNotFound     = New(http.StatusNotFound, "Key not found")

	// key custody
	ErrNotAvailable     = New(http.StatusBadRequest, "Key not available")
	ErrNoActiveCheckout = New(http.StatusBadRequest, "No active checkout")

	// job lifecycle: stop called on a job with no open start entry
	ErrNeverStarted = New(http.StatusBadRequest, "Job was never started")
)

// InvalidTransition names the offending current status in the message.
func InvalidTransition(format string, args ...any) *Error {
	return New(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, msg)
}

func BadRequest(msg string) *Error {
	return New(http.StatusBadRequest, msg)
}

// StatusOf maps an error to its HTTP status; unknown errors are 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.HTTPStatus
	}
	return http.StatusInternalServerError
}

// MessageOf returns the caller-safe message for an error. Unexpected errors
// never leak their internals.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}
