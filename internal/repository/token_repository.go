package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/salonhub/salon-booking/internal/model"
)

// TokenRepo persists and validates refresh tokens. Only the SHA-256 hash
// of a token is ever stored. Rows are append-only except for the revoked
// flag; physical deletion happens only through the retention sweep.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token hash row for a user.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at, is_revoked) VALUES (?,?,?,0)",
		userID, tokenHash, exp.UTC())
	return err
}

// Find returns the token row for a hash, revoked or not. The service
// decides what an expired or revoked row means; the repository only
// reports state. Returns ErrTokenNotFound when no row matches.
func (r *TokenRepo) Find(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	var (
		t         model.RefreshToken
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, is_revoked, revoked_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.IsRevoked, &revokedAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return model.RefreshToken{}, ErrTokenNotFound
	}
	if err != nil {
		return model.RefreshToken{}, err
	}
	if revokedAt.Valid {
		t.RevokedAt = revokedAt.Time
	}
	return t, nil
}

// RevokeIfActive marks a token revoked only if it is still active and
// returns the number of rows changed. A zero count means the token was
// absent or already revoked; concurrent callers presenting the same token
// race on this statement and exactly one observes 1.
func (r *TokenRepo) RevokeIfActive(ctx context.Context, tokenHash string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET is_revoked=1, revoked_at=? WHERE token_hash=? AND is_revoked=0",
		time.Now().UTC(), tokenHash)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Rotate atomically revokes the presented token and inserts its
// replacement in a single transaction. If the conditional revoke matches
// no row (token unknown, already revoked, or lost a concurrent race) the
// transaction is rolled back and ErrTokenNotFound is returned, so the
// losing caller never mints a new pair and no partial state is left.
func (r *TokenRepo) Rotate(ctx context.Context, oldHash string, userID uint64, newHash string, newExp time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET is_revoked=1, revoked_at=? WHERE token_hash=? AND is_revoked=0",
		time.Now().UTC(), oldHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenNotFound
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at, is_revoked) VALUES (?,?,?,0)",
		userID, newHash, newExp.UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

// RevokeAllForUser revokes every active token owned by the user and
// returns how many were affected. Used for "sign out everywhere".
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET is_revoked=1, revoked_at=? WHERE user_id=? AND is_revoked=0",
		time.Now().UTC(), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountActiveForUser counts live (not revoked, not expired) tokens.
func (r *TokenRepo) CountActiveForUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM refresh_tokens WHERE user_id=? AND is_revoked=0 AND expires_at > ?",
		userID, time.Now().UTC()).Scan(&n)
	return n, err
}

// RevokeOldestForUser revokes the single oldest live token of a user.
// Called when the per-user session cap is exceeded at issuance time.
func (r *TokenRepo) RevokeOldestForUser(ctx context.Context, userID uint64) error {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM refresh_tokens WHERE user_id=? AND is_revoked=0 AND expires_at > ? ORDER BY created_at ASC, id ASC LIMIT 1",
		userID, time.Now().UTC()).Scan(&id)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET is_revoked=1, revoked_at=? WHERE id=? AND is_revoked=0",
		time.Now().UTC(), id)
	return err
}

// DeleteExpiredBefore physically removes rows whose expiry predates the
// cutoff. This is the retention sweep; revocation history for live-window
// tokens is kept so rotated-out token reuse stays detectable.
func (r *TokenRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < ?", cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
