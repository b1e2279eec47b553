// Package gameerr defines the error taxonomy shared by the game core and its collaborators.
//
// Every failure returned across the core's public boundary is (or wraps) an *Error carrying a
// Kind. Callers branch on the kind with errors.Is against the sentinel values, or with KindOf.
package gameerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

// Error kinds.
const (
	KindValidation      Kind = "VALIDATION"
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "STATE_CONFLICT"
	KindCapacity        Kind = "CAPACITY"
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindInternal        Kind = "INTERNAL"
)

// String returns the kind label.
func (k Kind) String() string { return string(k) }

// HTTPStatus returns the status code the HTTP surface reports for k.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindCapacity:
		return http.StatusUnprocessableEntity
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is checks. Any *Error matches the sentinel of its kind.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrCapacity        = &Error{Kind: KindCapacity}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrInternal        = &Error{Kind: KindInternal}
)

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies cause under kind. A nil cause yields nil.
func Wrap(cause error, kind Kind, message string) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Validationf creates a validation error.
func Validationf(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

// NotFoundf creates a not-found error.
func NotFoundf(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

// Conflictf creates a state-conflict error.
func Conflictf(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

// Capacityf creates a capacity error.
func Capacityf(format string, args ...any) *Error {
	return New(KindCapacity, fmt.Sprintf(format, args...))
}

// Unauthenticatedf creates an unauthenticated error.
func Unauthenticatedf(format string, args ...any) *Error {
	return New(KindUnauthenticated, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first *Error in err's chain, KindInternal for
// unclassified errors, and "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err.
// Unclassified errors are reported generically so internals do not leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindInternal && e.Message == "" {
			return "internal error"
		}
		return e.Message
	}
	return "internal error"
}
