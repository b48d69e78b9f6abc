package repository

import (
	"context"
	"database/sql"

	"github.com/salonhub/salon-booking/internal/model"
)

// RBACRepo provides data access to the role catalog, the role-permission
// mapping, and the per-salon role grants. Authorization reads go through
// ActivePermissions on every request so deactivating a grant takes effect
// immediately; nothing here is cached.
type RBACRepo struct{ DB *sql.DB }

func NewRBACRepo(db *sql.DB) *RBACRepo { return &RBACRepo{DB: db} }

// GetRoleByName looks up a catalog role. Returns sql.ErrNoRows when the
// role does not exist.
func (r *RBACRepo) GetRoleByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, description, created_at FROM roles WHERE name=? LIMIT 1",
		name).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
	return role, err
}

// ActivePermissions resolves the effective permission set for a user in a
// salon: the union of permissions of every active role grant. Inactive
// grants are invisible. The result is a set keyed by permission name.
func (r *RBACRepo) ActivePermissions(ctx context.Context, userID, salonID uint64) (map[string]bool, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT DISTINCT p.name
		FROM user_salon_roles usr
		JOIN role_permissions rp ON rp.role_id = usr.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE usr.user_id = ? AND usr.salon_id = ? AND usr.is_active = 1`,
		userID, salonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perms := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		perms[name] = true
	}
	return perms, rows.Err()
}

// GrantRole assigns a role to a user within a salon. The unique index on
// (user_id, salon_id, role_id) converts duplicate grants into
// ErrGrantExists. Foreign keys guarantee the user, salon and role exist.
func (r *RBACRepo) GrantRole(ctx context.Context, userID, salonID, roleID uint64) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_salon_roles (user_id, salon_id, role_id, is_active) VALUES (?,?,?,1)",
		userID, salonID, roleID)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrGrantExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// DeactivateGrant marks a grant inactive and reports whether a row
// changed. The very next ActivePermissions call no longer sees it.
func (r *RBACRepo) DeactivateGrant(ctx context.Context, userID, salonID, roleID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE user_salon_roles SET is_active=0 WHERE user_id=? AND salon_id=? AND role_id=? AND is_active=1",
		userID, salonID, roleID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ReactivateGrant is the inverse of DeactivateGrant.
func (r *RBACRepo) ReactivateGrant(ctx context.Context, userID, salonID, roleID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE user_salon_roles SET is_active=1 WHERE user_id=? AND salon_id=? AND role_id=? AND is_active=0",
		userID, salonID, roleID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// seedRole inserts a catalog role if absent. The WHERE NOT EXISTS form is
// portable across MySQL and SQLite so startup seeding and tests share it.
func (r *RBACRepo) seedRole(ctx context.Context, name, description string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO roles (name, description)
		SELECT ?, ? WHERE NOT EXISTS (SELECT 1 FROM roles WHERE name = ?)`,
		name, description, name)
	return err
}

func (r *RBACRepo) seedPermission(ctx context.Context, name, description, scope string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO permissions (name, description, scope)
		SELECT ?, ?, ? WHERE NOT EXISTS (SELECT 1 FROM permissions WHERE name = ?)`,
		name, description, scope, name)
	return err
}

func (r *RBACRepo) seedRolePermission(ctx context.Context, roleName, permName string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		SELECT r.id, p.id FROM roles r, permissions p
		WHERE r.name = ? AND p.name = ?
		AND NOT EXISTS (
			SELECT 1 FROM role_permissions rp
			WHERE rp.role_id = r.id AND rp.permission_id = p.id)`,
		roleName, permName)
	return err
}

// SeedCatalog idempotently installs the role catalog, the baseline
// permissions and their mapping. Safe to run on every startup.
func (r *RBACRepo) SeedCatalog(ctx context.Context) error {
	roles := []struct{ name, desc string }{
		{model.RoleOwner, "Salon owner with full access"},
		{model.RoleAdmin, "Administrator with management access"},
		{model.RoleWorker, "Worker/Professional who provides services"},
		{model.RoleClient, "Customer who books appointments"},
	}
	for _, role := range roles {
		if err := r.seedRole(ctx, role.name, role.desc); err != nil {
			return err
		}
	}

	perms := []struct{ name, desc, scope string }{
		{model.PermSalonsManage, "Manage salon settings", model.PermissionScopeSalon},
		{model.PermMembersManage, "Manage salon members and their roles", model.PermissionScopeSalon},
		{model.PermServicesManage, "Manage the salon service catalog", model.PermissionScopeSalon},
		{model.PermAppointmentsCreate, "Book appointments", model.PermissionScopeSalon},
		{model.PermAppointmentsView, "View appointments", model.PermissionScopeSalon},
	}
	for _, p := range perms {
		if err := r.seedPermission(ctx, p.name, p.desc, p.scope); err != nil {
			return err
		}
	}

	grants := map[string][]string{
		model.RoleOwner:  {model.PermSalonsManage, model.PermMembersManage, model.PermServicesManage, model.PermAppointmentsCreate, model.PermAppointmentsView},
		model.RoleAdmin:  {model.PermMembersManage, model.PermServicesManage, model.PermAppointmentsCreate, model.PermAppointmentsView},
		model.RoleWorker: {model.PermAppointmentsView},
		model.RoleClient: {model.PermAppointmentsCreate, model.PermAppointmentsView},
	}
	for roleName, permNames := range grants {
		for _, permName := range permNames {
			if err := r.seedRolePermission(ctx, roleName, permName); err != nil {
				return err
			}
		}
	}
	return nil
}
