// Package common defines shared constants and sentinel errors used across
// the Inkwell client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Identity errors.
	ErrUnauthenticated = errors.New("not signed in")

	// Remote resource errors.
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("already exists")

	// Request errors (rejected locally or by the remote).
	ErrInvalidOperation = errors.New("invalid operation")
	ErrValidation       = errors.New("validation error")

	// Infrastructure errors (network failures, timeouts, 5xx). Callers may
	// retry by repeating the operation; no layer retries on its own.
	ErrTransient = errors.New("temporarily unavailable")
)
