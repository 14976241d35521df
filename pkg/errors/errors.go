// Package errors provides the structured application error used at the
// service boundary. Each Error carries a stable code and the HTTP status it
// renders as; the underlying cause is kept for logging only.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error represents a structured application error.
type Error struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	HTTPStatus int         `json:"-"`
	Details    interface{} `json:"details,omitempty"`
	Err        error       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code, so that
// errors.Is(err, ErrConflict) matches any conflict regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details interface{}) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithError returns a copy of e wrapping err.
func (e *Error) WithError(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

// WithMessage returns a copy of e with a different human-readable message.
func (e *Error) WithMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

// New creates a new Error.
func New(code, message string, httpStatus int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an existing error with code, message and status.
func Wrap(err error, code, message string, httpStatus int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeUpstreamError    = "UPSTREAM_ERROR"
	ErrCodeDatabaseError    = "DATABASE_ERROR"
)

// Templates. Use WithError/WithMessage to derive request-specific values;
// both return copies so the templates are never mutated.
var (
	ErrInternal        = New(ErrCodeInternal, "Internal server error", http.StatusInternalServerError)
	ErrBadRequest      = New(ErrCodeBadRequest, "Bad request", http.StatusBadRequest)
	ErrTooManyRequests = New(ErrCodeTooManyRequests, "Too many requests", http.StatusTooManyRequests)

	// ErrValidation: malformed or missing input.
	ErrValidation = New(ErrCodeValidationFailed, "Validation failed", http.StatusUnprocessableEntity)
	// ErrConflict: uniqueness violation, detected locally or by the store.
	ErrConflict = New(ErrCodeConflict, "Resource already exists", http.StatusConflict)
	// ErrNotFound: absent local record, or the provider has no such item.
	ErrNotFound = New(ErrCodeNotFound, "Resource not found", http.StatusNotFound)
	// ErrUpstream: provider transport or availability failure.
	ErrUpstream = New(ErrCodeUpstreamError, "Upstream service error", http.StatusInternalServerError)
	// ErrStorage: local persistence failure.
	ErrStorage = New(ErrCodeDatabaseError, "Database error", http.StatusInternalServerError)
)

// As extracts the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns the HTTP status for err; 500 for non-application errors.
func GetHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if appErr, ok := As(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// GetCode returns the error code for err; INTERNAL_ERROR for non-application errors.
func GetCode(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}
