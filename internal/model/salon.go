package model

import "time"

// Salon represents a tenant in the `salons` table. Each salon is an
// independent business; users, role grants and resources are scoped to it.
type Salon struct {
	ID          uint64    // salons.id
	Name        string    // salons.name
	Slug        string    // salons.slug (unique)
	Description string    // salons.description
	Address     string    // salons.address
	Phone       string    // salons.phone
	Email       string    // salons.email
	IsActive    bool      // salons.is_active
	CreatedAt   time.Time // salons.created_at
	UpdatedAt   time.Time // salons.updated_at
}
