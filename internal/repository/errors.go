// Package repository defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// auth service to distinguish between failure scenarios without parsing
// driver-specific error strings. For example, ErrEmailExists converts a
// unique-constraint violation on users.email into a stable value the
// service maps to a Conflict response.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when inserting a user whose email is already
// registered. The database's unique constraint is the arbiter, so two
// concurrent registrations race safely: the loser gets this error.
var ErrEmailExists = errors.New("email already exists")

// ErrSlugExists is returned when creating a salon whose slug is taken.
var ErrSlugExists = errors.New("slug already exists")

// ErrGrantExists is returned when assigning a (user, salon, role) triple
// that already exists.
var ErrGrantExists = errors.New("role grant already exists")

// ErrTokenNotFound is returned when a refresh token lookup or conditional
// update matches no active row. Callers treat it uniformly: the token is
// absent, revoked, or lost a rotation race; none of these are
// distinguishable to the client.
var ErrTokenNotFound = errors.New("refresh token not found")

// isDuplicate reports whether err is a unique-constraint violation. MySQL
// reports error 1062; SQLite (used by the test databases) reports a
// "UNIQUE constraint failed" message.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique constraint")
}
