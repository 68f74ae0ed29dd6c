// Package errs implements a tagged error type so that callers can tell
// configuration mistakes and bad arguments, which are fatal, from
// failures of upstream services and storage, which may be retried.
package errs

import (
	"errors"
	"fmt"
)

// Code tags an Error with the class of failure that produced it
type Code string

const (
	Unknown              Code = "UNKNOWN"
	InvalidConfiguration Code = "INVALID_CONFIGURATION"
	InvalidArgument      Code = "INVALID_ARGUMENT"
	Upstream             Code = "UPSTREAM"
	Storage              Code = "STORAGE"
)

// Retryable returns whether errors with this Code are transient
func (c Code) Retryable() bool {
	switch c {
	case Upstream, Storage:
		return true
	default:
		return false
	}
}

// Error is an error tagged with a Code and an optional cause
type Error struct {
	code    Code
	message string
	cause   error
}

// New returns a new Error with the given code and formatted message
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap returns a new Error with the given code which wraps cause
func Wrap(code Code, cause error, format string, args ...interface{}) *Error {
	e := New(code, format, args...)
	e.cause = cause
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

// Unwrap returns the cause of the Error, if any
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is reports whether target is an *Error with the same Code, so that
// errors.Is(err, errs.New(errs.InvalidArgument, "")) matches any
// invalid argument error.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.code == t.code
}

// Code returns the Code of the Error
func (e *Error) Code() Code {
	if e == nil {
		return Unknown
	}
	return e.code
}

// Message returns the message of the Error without its cause
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Retryable returns whether the operation that produced the Error may
// succeed if tried again
func (e *Error) Retryable() bool {
	return e.Code().Retryable()
}

// From extracts the first *Error in err's chain
func From(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CodeOf returns the Code of err, or Unknown if err is not tagged
func CodeOf(err error) Code {
	if e, ok := From(err); ok {
		return e.Code()
	}
	return Unknown
}

// Retryable returns whether err is tagged with a retryable Code
func Retryable(err error) bool {
	if e, ok := From(err); ok {
		return e.Retryable()
	}
	return false
}

// Is reports whether err carries the given Code
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
