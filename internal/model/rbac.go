package model

import "time"

// Salon-scoped role names. Roles are defined once as a global catalog but
// their meaning is always relative to a single salon: a user may be owner
// of one salon and worker in another at the same time.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleWorker = "worker"
	RoleClient = "client"
)

// Permission scopes. Salon-scoped permissions only apply within a salon a
// user holds an active role in; global permissions apply platform-wide.
const (
	PermissionScopeGlobal = "global"
	PermissionScopeSalon  = "salon"
)

// Well-known permission names referenced by handlers. The catalog in the
// database may contain more; these are the ones the service itself guards
// routes with.
const (
	PermSalonsManage       = "salons.manage"
	PermMembersManage      = "members.manage"
	PermAppointmentsCreate = "appointments.create"
	PermAppointmentsView   = "appointments.view"
	PermServicesManage     = "services.manage"
)

// Role is a row in the `roles` table: a named role from the global catalog.
type Role struct {
	ID          uint64    // roles.id
	Name        string    // roles.name (unique)
	Description string    // roles.description
	CreatedAt   time.Time // roles.created_at
}

// Permission is a row in the `permissions` table: a named capability such
// as "appointments.create", scoped global or salon-level.
type Permission struct {
	ID          uint64    // permissions.id
	Name        string    // permissions.name (unique)
	Description string    // permissions.description
	Scope       string    // permissions.scope (global|salon)
	CreatedAt   time.Time // permissions.created_at
}

// RolePermission joins roles to permissions; unique on (role_id, permission_id).
type RolePermission struct {
	ID           uint64    // role_permissions.id
	RoleID       uint64    // role_permissions.role_id
	PermissionID uint64    // role_permissions.permission_id
	CreatedAt    time.Time // role_permissions.created_at
}

// UserSalonRole is the actual RBAC grant: "user X holds role Y within
// salon Z". Unique on (user_id, salon_id, role_id). Deactivating a grant
// (is_active = 0) removes it from authorization decisions immediately,
// without waiting for token expiry.
type UserSalonRole struct {
	ID        uint64    // user_salon_roles.id
	UserID    uint64    // user_salon_roles.user_id
	SalonID   uint64    // user_salon_roles.salon_id
	RoleID    uint64    // user_salon_roles.role_id
	IsActive  bool      // user_salon_roles.is_active
	CreatedAt time.Time // user_salon_roles.created_at
}
