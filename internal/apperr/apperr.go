// Package apperr defines the domain error taxonomy shared by services and the
// HTTP boundary. Every error carries a stable machine-readable code.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies a class of domain error.
type Code string

const (
	CodeInvalidCredential      Code = "invalid_credential"
	CodeNotFound               Code = "not_found"
	CodeOwnership              Code = "ownership"
	CodeSelfSwap               Code = "self_swap"
	CodeAlreadyResolved        Code = "already_resolved"
	CodeUnauthorizedTransition Code = "unauthorized_transition"
	CodeAlreadyExists          Code = "already_exists"
	CodeInvalidInput           Code = "invalid_input"
	CodeRateLimited            Code = "rate_limited"
)

// Error is a domain error. Compare with errors.Is against the sentinels below,
// or extract with errors.As to read the code and message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error with the same code, so wrapped errors with custom
// messages still satisfy errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates a domain error with the given code and message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidCredential      = &Error{Code: CodeInvalidCredential, Message: "invalid credential"}
	ErrNotFound               = &Error{Code: CodeNotFound, Message: "not found"}
	ErrOwnership              = &Error{Code: CodeOwnership, Message: "caller does not own this resource"}
	ErrSelfSwap               = &Error{Code: CodeSelfSwap, Message: "You cannot swap your own items!"}
	ErrAlreadyResolved        = &Error{Code: CodeAlreadyResolved, Message: "Swap status already been changed from PENDING!"}
	ErrUnauthorizedTransition = &Error{Code: CodeUnauthorizedTransition, Message: "caller cannot perform this status change"}
	ErrAlreadyExists          = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrInvalidInput           = &Error{Code: CodeInvalidInput, Message: "invalid input"}
)

// NotFound returns a not_found error naming the missing entity.
func NotFound(entity, id string) *Error {
	return New(CodeNotFound, "%s with id %s not found", entity, id)
}

// InvalidInput returns an invalid_input error with a custom message.
func InvalidInput(format string, args ...any) *Error {
	return New(CodeInvalidInput, format, args...)
}

// CodeOf returns the code of the first domain error in err's chain, or "" when
// err is not a domain error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
