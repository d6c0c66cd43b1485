package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrBadRequest    = errors.New("bad request")
	ErrUnprocessable = errors.New("unprocessable")

	// ErrNotConfigured marks a missing credential or price identifier so
	// operators can tell a configuration gap from a generic failure.
	ErrNotConfigured = errors.New("not configured")

	// ErrUpstream covers any non-success response from a third-party
	// provider. Detail stays in the logs; callers see a generic failure.
	ErrUpstream = errors.New("upstream provider error")
)
