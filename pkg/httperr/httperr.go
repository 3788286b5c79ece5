// Package httperr defines the error taxonomy the API exposes.
//
// Services return *Error values for every expected failure; the response
// layer maps them to their HTTP status. Anything that is not an *Error is
// treated as an internal fault and surfaced as a generic 500 with no
// detail leaked to the client.
package httperr

import (
	"errors"
	"net/http"
)

// Error is an expected, client-visible failure.
type Error struct {
	Status int
	Msg    string
}

func (e *Error) Error() string { return e.Msg }

// BadRequest covers malformed input, validation failures and duplicate
// email registrations (the API reports those as 400).
func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Msg: msg}
}

// Unauthenticated covers missing/invalid tokens and bad login credentials.
func Unauthenticated(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Msg: msg}
}

// Unauthorized covers authenticated callers with insufficient role or
// ownership. The API contract reports these as 401, not 403.
func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Msg: msg}
}

// NotFound covers lookups of absent resources.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Msg: msg}
}

// From extracts an *Error from err, or nil when err is unexpected.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// StatusOf returns the HTTP status an error maps to.
func StatusOf(err error) int {
	if e := From(err); e != nil {
		return e.Status
	}
	return http.StatusInternalServerError
}
