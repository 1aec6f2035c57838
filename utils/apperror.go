package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for presentation.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthenticated
	KindForbidden
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Status is the HTTP status code a kind maps to.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the single error type handlers hand to the error middleware.
// Redirect, when set, is where soft errors send the browser.
type AppError struct {
	Kind     Kind
	Message  string
	Redirect string
	Err      error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithRedirect returns a copy of e that redirects to path.
func (e *AppError) WithRedirect(path string) *AppError {
	cp := *e
	cp.Redirect = path
	return &cp
}

func NewError(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NotFound(message, redirect string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message, Redirect: redirect}
}

func Unauthenticated(message string) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: message, Redirect: "/login"}
}

func Forbidden(message, redirect string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message, Redirect: redirect}
}

func Conflict(message, redirect string) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Redirect: redirect}
}

func RateLimited(message, redirect string) *AppError {
	return &AppError{Kind: KindRateLimited, Message: message, Redirect: redirect}
}

func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "Something went wrong", Err: err}
}

// AsAppError unwraps err into an AppError, wrapping unknown errors as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
