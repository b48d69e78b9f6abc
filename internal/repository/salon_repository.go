package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/salonhub/salon-booking/internal/model"
)

// SalonRepo provides data access to the salons table. A salon is the
// tenant boundary: role grants and permission checks are always scoped to
// one salon id.
type SalonRepo struct{ DB *sql.DB }

func NewSalonRepo(db *sql.DB) *SalonRepo { return &SalonRepo{DB: db} }

// Create inserts a salon and returns its ID. The slug is normalized to
// lower case; the unique index turns duplicates into ErrSlugExists.
func (r *SalonRepo) Create(ctx context.Context, s model.Salon) (uint64, error) {
	slug := strings.ToLower(strings.TrimSpace(s.Slug))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO salons (name, slug, description, address, phone, email, is_active) VALUES (?,?,?,?,?,?,1)",
		s.Name, slug, s.Description, s.Address, s.Phone, s.Email)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrSlugExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a salon by id.
func (r *SalonRepo) GetByID(ctx context.Context, id uint64) (model.Salon, error) {
	var s model.Salon
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, slug, description, address, phone, email, is_active, created_at, updated_at FROM salons WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.Name, &s.Slug, &s.Description, &s.Address, &s.Phone, &s.Email, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetBySlug fetches a salon by its unique slug.
func (r *SalonRepo) GetBySlug(ctx context.Context, slug string) (model.Salon, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	var s model.Salon
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, slug, description, address, phone, email, is_active, created_at, updated_at FROM salons WHERE slug=? LIMIT 1",
		slug).Scan(&s.ID, &s.Name, &s.Slug, &s.Description, &s.Address, &s.Phone, &s.Email, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
