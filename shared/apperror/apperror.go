// Package apperror defines the operational error taxonomy shared by services.
//
// An *Error is an expected failure whose message is safe to show to a client.
// Anything else that reaches a transport boundary is an internal fault and must
// be reported generically.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an operational error.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindUnavailable
)

// Error represents an operational error carrying its kind and a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same kind and message,
// so sentinel errors still match after being re-wrapped with a cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Wrap returns a copy of e carrying err as its cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Details: e.Details, Err: err}
}

// StatusCode returns the HTTP status associated with the error kind.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable code associated with the error kind.
func (e *Error) Code() string {
	switch e.Kind {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindConflict:
		return "CONFLICT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// ValidationWithDetails returns a validation error listing per-field messages.
func ValidationWithDetails(message string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NotFound returns a not-found error for the named resource.
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = "unauthorized"
	}
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	if message == "" {
		message = "forbidden"
	}
	return &Error{Kind: KindForbidden, Message: message}
}

// Unavailable reports a dependency the operation needs, such as email delivery, failing.
func Unavailable(message string) *Error {
	return &Error{Kind: KindUnavailable, Message: message}
}

// As extracts the operational error from err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err's chain contains an operational error of kind k.
func IsKind(err error, k Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == k
}
