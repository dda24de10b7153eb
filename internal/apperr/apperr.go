// Package apperr defines the domain error taxonomy shared by services
// and handlers. Errors are produced by the service layer and mapped to
// HTTP status codes at the handler boundary; push delivery misses are
// deliberately not part of this taxonomy and never reach callers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain error
type Kind int

const (
	KindAuthentication Kind = iota
	KindPermission
	KindValidation
	KindNotFound
	KindExpiredEditWindow
)

// Error is a kinded domain error
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

func Authentication(format string, args ...any) *Error {
	return &Error{Kind: KindAuthentication, Message: fmt.Sprintf(format, args...)}
}

func Permission(format string, args ...any) *Error {
	return &Error{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func ExpiredEditWindow(format string, args ...any) *Error {
	return &Error{Kind: KindExpiredEditWindow, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an underlying cause to a domain error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps an error to its response status. Unknown errors are
// treated as internal.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindPermission:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindExpiredEditWindow:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
