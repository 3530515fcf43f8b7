// Package common defines shared constants and sentinel errors used across
// the server and client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Error kinds surfaced to API callers. Every APIError wraps exactly one of these.
	ErrorValidation   = errors.New("validation error")
	ErrorConflict     = errors.New("conflict")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorUpstream     = errors.New("upstream error")
	ErrorRateLimited  = errors.New("rate limited")
	ErrorInternal     = errors.New("internal error")

	// Token errors (malformed, badly signed, or expired).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
