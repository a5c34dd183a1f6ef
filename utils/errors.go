package utils

import (
	"errors"
	"net/http"
)

// ErrorKind classifies failures so handlers can map them onto one response.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindUnauthorized
	KindNotFound
	KindValidation
	KindConflict
	KindUnavailable
	KindUpstream
)

// AppError is the error type services hand back to controllers.
type AppError struct {
	Kind    ErrorKind
	Status  int
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(kind ErrorKind, status int, message string, err error) *AppError {
	return &AppError{Kind: kind, Status: status, Code: status * 100, Message: message, Err: err}
}

// Unauthorized reports a missing, invalid or expired credential.
func Unauthorized(message string) *AppError {
	return newAppError(KindUnauthorized, http.StatusUnauthorized, message, nil)
}

// NotFound reports an owner-scoped lookup miss.
func NotFound(message string) *AppError {
	return newAppError(KindNotFound, http.StatusNotFound, message, nil)
}

// Validation reports a missing or out-of-range input.
func Validation(message string) *AppError {
	return newAppError(KindValidation, http.StatusBadRequest, message, nil)
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *AppError {
	return newAppError(KindConflict, http.StatusConflict, message, nil)
}

// Unavailable reports an unconfigured collaborator.
func Unavailable(message string) *AppError {
	return newAppError(KindUnavailable, http.StatusServiceUnavailable, message, nil)
}

// Upstream reports a failed call to an external provider. status is 429, 400 or 500 depending on cause.
func Upstream(status int, message string, err error) *AppError {
	return newAppError(KindUpstream, status, message, err)
}

// Internal wraps an unexpected persistence or runtime failure.
func Internal(message string, err error) *AppError {
	return newAppError(KindInternal, http.StatusInternalServerError, message, err)
}

// AsAppError converts any error into an *AppError, treating unknown errors as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal server error", err)
}

// IsKind reports whether err is an *AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
