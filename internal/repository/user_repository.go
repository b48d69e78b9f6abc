package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/salonhub/salon-booking/internal/model"
)

// UserRepo provides data access to the users table. Password hashing is
// the caller's concern; this layer only persists and retrieves the hash.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID. Emails are normalized to
// lower case so the unique index catches case-variant duplicates.
func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash, phone string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, phone, global_role, is_active) VALUES (?,?,?,?,?,1)",
		name, email, passwordHash, phone, model.GlobalRoleUser)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email. Returns sql.ErrNoRows
// when absent; the service treats that identically to a bad password.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,phone,global_role,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.GlobalRole, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,phone,global_role,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.GlobalRole, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// SetActive flips the account flag. Users are soft-disabled, never deleted,
// while refresh tokens or role grants still reference them.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=? WHERE id=?", active, id)
	return err
}
