// Package auth implements the session lifecycle (register, login, refresh
// token rotation, logout) and per-salon role-based authorization on top of
// the repository layer.
package auth

import "errors"

// Sentinel errors for handlers to map to HTTP status. Every credential or
// token failure collapses into one of two values on purpose: callers must
// not be able to tell "no such account" from "wrong password", or "revoked
// token" from "token that never existed".
var (
	// ErrEmailTaken maps to 409 Conflict on registration.
	ErrEmailTaken = errors.New("email already in use")

	// ErrInvalidCredentials maps to 401 Unauthorized on login. Covers
	// unknown email, disabled account and password mismatch uniformly.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRefresh maps to 401 Unauthorized on refresh or logout-all.
	// Covers unknown, expired, revoked and rotated-out tokens uniformly.
	ErrInvalidRefresh = errors.New("invalid refresh token")
)
