// Package queue defines message payloads exchanged over the message broker.
package queue

// UserRegisteredEvent is published when an account is created. Downstream
// consumers (audit trail, onboarding messaging) get enough context to act
// without querying the primary database.
type UserRegisteredEvent struct {
    UserID       uint64 `json:"user_id"`
    Name         string `json:"name"`
    Email        string `json:"email"`
    RegisteredAt string `json:"registered_at"`
}

// SessionsRevokedEvent is published when all of a user's refresh tokens
// are revoked at once, e.g. a "sign out everywhere" request. Reason
// distinguishes user-initiated from administrative revocations.
type SessionsRevokedEvent struct {
    UserID    uint64 `json:"user_id"`
    Reason    string `json:"reason"`
    RevokedAt string `json:"revoked_at"`
}
