package services

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable failure classification surfaced to callers. The HTTP
// layer maps kinds to status codes; messages are human-readable and never
// carry storage or stack detail.
type ErrorKind string

const (
	KindValidation             ErrorKind = "validation_error"
	KindPermissionDenied       ErrorKind = "permission_denied"
	KindInvalidState           ErrorKind = "invalid_state"
	KindInvalidTransition      ErrorKind = "invalid_transition"
	KindNotFound               ErrorKind = "not_found"
	KindConcurrentModification ErrorKind = "concurrent_modification"
)

// Error pairs a kind with a reason string.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ErrValidation(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

func ErrPermissionDenied(format string, args ...interface{}) *Error {
	return newError(KindPermissionDenied, format, args...)
}

func ErrInvalidState(format string, args ...interface{}) *Error {
	return newError(KindInvalidState, format, args...)
}

func ErrInvalidTransition(format string, args ...interface{}) *Error {
	return newError(KindInvalidTransition, format, args...)
}

func ErrNotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func ErrConcurrentModification(format string, args ...interface{}) *Error {
	return newError(KindConcurrentModification, format, args...)
}

// KindOf extracts the kind from any error produced by this package. Unknown
// errors report an empty kind and should be treated as internal failures.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ""
}
