package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/salonhub/salon-booking/internal/model"
	"github.com/salonhub/salon-booking/internal/repository"
	"github.com/salonhub/salon-booking/internal/utils"
)

// UserStore is the slice of the user repository the session manager needs.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash, phone string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore is the refresh token ledger. Rotate must be atomic: either
// the presented token is revoked and its replacement persisted, or
// neither happens.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	Find(ctx context.Context, tokenHash string) (model.RefreshToken, error)
	RevokeIfActive(ctx context.Context, tokenHash string) (int64, error)
	Rotate(ctx context.Context, oldHash string, userID uint64, newHash string, newExp time.Time) error
	RevokeAllForUser(ctx context.Context, userID uint64) (int64, error)
	CountActiveForUser(ctx context.Context, userID uint64) (int, error)
	RevokeOldestForUser(ctx context.Context, userID uint64) error
}

// TokenPair is what every successful register/login/refresh returns: a
// short-lived stateless access token and a long-lived revocable refresh
// token, plus a summary of the account they belong to.
type TokenPair struct {
	User    UserSummary
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// UserSummary is the public slice of a user record returned to clients.
type UserSummary struct {
	ID    uint64
	Name  string
	Email string
}

// Options tunes the session manager. MaxSessionsPerUser bounds live
// refresh tokens per account; zero keeps the historical unlimited
// behavior.
type Options struct {
	JWTSecret          string
	AccessTTLMin       int
	RefreshTTLDays     int
	BcryptCost         int
	MaxSessionsPerUser int
}

// Service is the session manager. It composes the credential store, the
// password hasher, the token issuer and the refresh token ledger.
type Service struct {
	users  UserStore
	tokens TokenStore
	opts   Options
}

func NewService(users UserStore, tokens TokenStore, opts Options) *Service {
	return &Service{users: users, tokens: tokens, opts: opts}
}

// Register creates an account and signs it in. A duplicate email fails
// with ErrEmailTaken; the unique index decides races between concurrent
// registrations of the same address.
func (s *Service) Register(ctx context.Context, name, email, password string) (TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, s.opts.BcryptCost)
	if err != nil {
		return TokenPair{}, err
	}
	uid, err := s.users.Create(ctx, name, email, hash, "")
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return TokenPair{}, ErrEmailTaken
		}
		return TokenPair{}, err
	}
	return s.issuePair(ctx, UserSummary{ID: uid, Name: name, Email: email})
}

// Login verifies credentials and issues a fresh token pair. Unknown
// email, disabled account and wrong password all return
// ErrInvalidCredentials so the response does not leak which accounts
// exist.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if !u.IsActive {
		return TokenPair{}, ErrInvalidCredentials
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.issuePair(ctx, UserSummary{ID: u.ID, Name: u.Name, Email: u.Email})
}

// Refresh exchanges a live refresh token for a new pair. The presented
// token is single-use: it is revoked in the same transaction that
// persists its replacement, and a second presentation (including a
// concurrent one that loses the race on the conditional update) fails
// with ErrInvalidRefresh. Presenting an expired token revokes it.
func (s *Service) Refresh(ctx context.Context, rawToken string) (TokenPair, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return TokenPair{}, ErrInvalidRefresh
	}
	hash := utils.HashRefreshRaw(rawToken)

	t, err := s.tokens.Find(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return TokenPair{}, ErrInvalidRefresh
		}
		return TokenPair{}, err
	}
	if t.IsRevoked {
		return TokenPair{}, ErrInvalidRefresh
	}
	if time.Now().UTC().After(t.ExpiresAt) {
		// Expired tokens move to revoked the moment they are presented.
		if _, err := s.tokens.RevokeIfActive(ctx, hash); err != nil {
			return TokenPair{}, err
		}
		return TokenPair{}, ErrInvalidRefresh
	}

	u, err := s.users.GetByID(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TokenPair{}, ErrInvalidRefresh
		}
		return TokenPair{}, err
	}
	if !u.IsActive {
		return TokenPair{}, ErrInvalidRefresh
	}

	newRefresh, err := utils.NewRefreshToken(s.opts.RefreshTTLDays)
	if err != nil {
		return TokenPair{}, err
	}
	err = s.tokens.Rotate(ctx, hash, u.ID, utils.HashRefreshRaw(newRefresh.Raw), newRefresh.Exp)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			// Lost a concurrent rotation race on the same token.
			return TokenPair{}, ErrInvalidRefresh
		}
		return TokenPair{}, err
	}

	access, err := utils.NewAccessToken(s.opts.JWTSecret, u.ID, u.Email, s.opts.AccessTTLMin)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		User:    UserSummary{ID: u.ID, Name: u.Name, Email: u.Email},
		Access:  access,
		Refresh: newRefresh,
	}, nil
}

// Logout revokes a single refresh token. It is idempotent: revoking an
// already-revoked or unknown token is a no-op, not an error.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil
	}
	_, err := s.tokens.RevokeIfActive(ctx, utils.HashRefreshRaw(rawToken))
	return err
}

// LogoutAll revokes every live refresh token owned by the user.
func (s *Service) LogoutAll(ctx context.Context, userID uint64) error {
	_, err := s.tokens.RevokeAllForUser(ctx, userID)
	return err
}

// issuePair mints a token pair for the user and records the refresh half
// in the ledger. When a session cap is configured, the oldest live token
// is revoked first so the new session always fits.
func (s *Service) issuePair(ctx context.Context, u UserSummary) (TokenPair, error) {
	if s.opts.MaxSessionsPerUser > 0 {
		n, err := s.tokens.CountActiveForUser(ctx, u.ID)
		if err != nil {
			return TokenPair{}, err
		}
		if n >= s.opts.MaxSessionsPerUser {
			if err := s.tokens.RevokeOldestForUser(ctx, u.ID); err != nil {
				return TokenPair{}, err
			}
		}
	}
	access, err := utils.NewAccessToken(s.opts.JWTSecret, u.ID, u.Email, s.opts.AccessTTLMin)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.NewRefreshToken(s.opts.RefreshTTLDays)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.tokens.Store(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{User: u, Access: access, Refresh: refresh}, nil
}
