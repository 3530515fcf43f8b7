package common

import (
	"errors"
	"net/http"
)

// Machine-readable error codes returned to API clients.
const (
	CodeValidation   = "validation_error"
	CodeConflict     = "conflict"
	CodeNotFound     = "not_found"
	CodeUnauthorized = "unauthorized"
	CodeTokenExpired = "token_expired"
	CodeUpstream     = "upstream_error"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal_error"
)

// APIError is the error type returned by services. It carries an HTTP status,
// a stable code and a message safe to show to the caller. Err holds the
// underlying cause for logging and is never serialized.
type APIError struct {
	Kind    error
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *APIError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func Validation(msg string) *APIError {
	return &APIError{Kind: ErrorValidation, Status: http.StatusBadRequest, Code: CodeValidation, Message: msg}
}

func Conflict(msg string) *APIError {
	return &APIError{Kind: ErrorConflict, Status: http.StatusConflict, Code: CodeConflict, Message: msg}
}

func NotFound(msg string) *APIError {
	return &APIError{Kind: ErrorNotFound, Status: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

func Unauthorized(msg string) *APIError {
	return &APIError{Kind: ErrorUnauthorized, Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: msg}
}

// UnauthorizedCause is Unauthorized with the underlying failure attached.
func UnauthorizedCause(msg string, cause error) *APIError {
	e := Unauthorized(msg)
	e.Err = cause
	return e
}

// TokenExpired is the Unauthorized variant clients use to decide whether a
// refresh is worth trying.
func TokenExpired(msg string) *APIError {
	e := UnauthorizedCause(msg, ErrTokenExpired)
	e.Code = CodeTokenExpired
	return e
}

func TooManyRequests(msg string) *APIError {
	return &APIError{Kind: ErrorRateLimited, Status: http.StatusTooManyRequests, Code: CodeRateLimited, Message: msg}
}

func Upstream(msg string, cause error) *APIError {
	return &APIError{Kind: ErrorUpstream, Status: http.StatusBadGateway, Code: CodeUpstream, Message: msg, Err: cause}
}

// AsAPIError converts any error into an APIError. Errors that are not
// already classified become a generic internal error.
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{
		Kind:    ErrorInternal,
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}
