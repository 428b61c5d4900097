package application

import (
	"errors"
)

// Kind classifies an application error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindConflict
	KindUnprocessable
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindUnprocessable:
		return "unprocessable_input"
	case KindNotFound:
		return "not_found"
	default:
		return "internal_failure"
	}
}

// Error is returned by every service method. Message is safe to show to clients;
// Err keeps the underlying cause for logs and errors.Is/As.
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

func Conflict(msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: cause}
}

func Unprocessable(msg string, cause error) *Error {
	return &Error{Kind: KindUnprocessable, Message: msg, Err: cause}
}

func NotFound(msg string, cause error) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Err: cause}
}

func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// KindOf reports the kind of err. Errors that did not come from this package are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
