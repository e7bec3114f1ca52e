package core

import "errors"

// Error kinds surfaced by the auth core. Handlers and middleware are the
// only layers that translate these into HTTP status codes.
var (
	// ErrExchangeFailed covers every failure mode of the authorization code
	// exchange: network errors, non-2xx provider responses, missing or
	// unverifiable identity assertions. Callers get no partial detail.
	ErrExchangeFailed = errors.New("authorization code exchange failed")

	// ErrMissingAuth means the Authorization header was absent or not of
	// the exact form "Bearer <token>".
	ErrMissingAuth = errors.New("missing or invalid authorization header")

	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")

	// ErrDirectoryUnavailable means the user directory could not be
	// reached. Kept distinct from auth failures so callers don't mistake
	// an infrastructure outage for bad credentials.
	ErrDirectoryUnavailable = errors.New("user directory unavailable")
)

// Repository sentinel errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)
