package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user and carries metadata for expiry
// and revocation. The plain token is never stored; only its
// SHA-256 hash. A token has exactly one lifecycle transition:
// active -> revoked. Expired tokens are flipped to revoked the
// moment they are presented.
type RefreshToken struct {
	ID        uint64    // refresh_tokens.id
	UserID    uint64    // refresh_tokens.user_id
	TokenHash string    // refresh_tokens.token_hash (SHA-256 hex of the raw token)
	ExpiresAt time.Time // refresh_tokens.expires_at (UTC)
	IsRevoked bool      // refresh_tokens.is_revoked
	RevokedAt time.Time // refresh_tokens.revoked_at (zero when active)
	CreatedAt time.Time // refresh_tokens.created_at
}
