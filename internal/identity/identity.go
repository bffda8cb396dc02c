// Package identity implements the identity service boundary: credential
// verification, persisted-token resumption and session revocation. The
// navigation core treats it as an opaque asynchronous dependency; retry
// policy and token formats live here, not in the core.
package identity

import "errors"

// Sentinel errors
var (
	// ErrInvalidCredentials is returned by Verify for a bad email or
	// password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenInvalid is returned by Resume for a malformed or
	// wrongly-signed token.
	ErrTokenInvalid = errors.New("invalid session token")

	// ErrTokenExpired is returned by Resume for a well-formed token whose
	// validity window has passed.
	ErrTokenExpired = errors.New("session token expired")

	// ErrUnknownPrincipal is returned when a token references a
	// principal that no longer exists.
	ErrUnknownPrincipal = errors.New("unknown principal")
)
