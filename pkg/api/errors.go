package api

import (
	"errors"
	"fmt"
)

// Error classes. Every failure surfaced in an Outcome wraps one of them.
var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrToolUnavailable     = errors.New("tool unavailable")
	ErrPathDerivation      = errors.New("path derivation failed")
	ErrProcessStart        = errors.New("process start failed")
	ErrProcessTimeout      = errors.New("process timed out")
	ErrToolReported        = errors.New("tool reported failure")
	ErrMissingPrerequisite = errors.New("missing prerequisite")
	ErrFilesystem          = errors.New("filesystem error")
	ErrCanceled            = errors.New("canceled")
	ErrUnhandled           = errors.New("unhandled fault")
)

// Error is a classified failure. Error() returns only the display message so
// tool output reaches the user verbatim.
type Error struct {
	Class error
	Msg   string
	Err   error
}

// NewError returns a classified error with a fixed message.
func NewError(class error, msg string) *Error {
	return &Error{Class: class, Msg: msg}
}

// Errorf returns a classified error with a formatted message.
func Errorf(class error, format string, args ...any) *Error {
	return &Error{Class: class, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err, prefixing its message with msg.
func Wrap(class error, err error, msg string) *Error {
	return &Error{Class: class, Msg: fmt.Sprintf("%s: %v", msg, err), Err: err}
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Class != nil {
		errs = append(errs, e.Class)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
