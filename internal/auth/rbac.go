package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/salonhub/salon-booking/internal/model"
)

// PermissionStore resolves the active permission names for a (user, salon)
// pair. Only grants with is_active = 1 may be considered.
type PermissionStore interface {
	ActivePermissions(ctx context.Context, userID, salonID uint64) (map[string]bool, error)
}

// Resolver answers salon-scoped authorization questions. It is queried on
// every request rather than baking permissions into the access token, so
// deactivating a grant denies the very next call without reissuing
// tokens.
type Resolver struct {
	users UserStore
	perms PermissionStore
}

func NewResolver(users UserStore, perms PermissionStore) *Resolver {
	return &Resolver{users: users, perms: perms}
}

// Authorize reports whether the user may exercise the named permission
// within the salon. Missing users, disabled accounts and absent grants
// all resolve to deny, never to an error, so existence is not leaked
// through the authorization path. Store failures do propagate; they are
// internal faults, not authorization answers.
func (r *Resolver) Authorize(ctx context.Context, userID, salonID uint64, permission string) (bool, error) {
	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if !u.IsActive {
		return false, nil
	}
	// Global override: platform operators bypass salon-scoped checks.
	// Checked before the per-salon path so the common case stays simple.
	if u.GlobalRole == model.GlobalRoleSuperAdmin {
		return true, nil
	}
	perms, err := r.perms.ActivePermissions(ctx, userID, salonID)
	if err != nil {
		return false, err
	}
	return perms[permission], nil
}

// EffectivePermissions returns the permission names the user currently
// holds in the salon. Super admins get no synthetic entries here; the
// bypass lives in Authorize only.
func (r *Resolver) EffectivePermissions(ctx context.Context, userID, salonID uint64) ([]string, error) {
	set, err := r.perms.ActivePermissions(ctx, userID, salonID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	return names, nil
}
