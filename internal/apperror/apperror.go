// Package apperror defines the closed set of error kinds the API can report.
//
// Every failure that reaches a client is an *Error with a Kind (which fixes the
// HTTP status) and a stable Code (which clients match on). The human-readable
// message is looked up from the catalog in messages.go and never contains the
// wrapped cause.
package apperror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	NotFound
	Forbidden
	BadRequest
	Unauthorized
	Conflict
	TooManyRequests
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case BadRequest:
		return "bad_request"
	case Unauthorized:
		return "unauthorized"
	case Conflict:
		return "conflict"
	case TooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Conflict:
		return http.StatusConflict
	case TooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is an API-facing error. Err is the underlying cause and is only logged.
type Error struct {
	Kind Kind
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, code Code, cause error) *Error {
	return &Error{Kind: kind, Code: code, Err: cause}
}

func NewNotFound(code Code) *Error {
	return &Error{Kind: NotFound, Code: code}
}

func NewForbidden(code Code) *Error {
	return &Error{Kind: Forbidden, Code: code}
}

func NewBadRequest(code Code, cause error) *Error {
	return &Error{Kind: BadRequest, Code: code, Err: cause}
}

func NewUnauthorized(code Code) *Error {
	return &Error{Kind: Unauthorized, Code: code}
}

func NewConflict(code Code) *Error {
	return &Error{Kind: Conflict, Code: code}
}

// Wrap turns an unexpected error into an Internal error with the given code.
func Wrap(err error, code Code) *Error {
	return &Error{Kind: Internal, Code: code, Err: err}
}

// As extracts an *Error from err. Errors that are not *Error become Internal.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeInternal)
}
