package auth

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"github.com/salonhub/salon-booking/internal/model"
	"github.com/salonhub/salon-booking/internal/repository"
)

// rbacFixture wires a Resolver over real repositories with the catalog
// seeded, plus one registered user and one salon.
type rbacFixture struct {
	db       *sql.DB
	rbac     *repository.RBACRepo
	resolver *Resolver
	userID   uint64
	salonID  uint64
}

func newRBACFixture(t *testing.T) *rbacFixture {
	t.Helper()
	db := testDB(t)
	ctx := context.Background()

	rbac := repository.NewRBACRepo(db)
	if err := rbac.SeedCatalog(ctx); err != nil {
		t.Fatalf("SeedCatalog() error = %v", err)
	}

	svc := newTestService(t, db, 0)
	pair := mustRegister(t, svc, "Ana", "ana@x.com", "secret1")

	res, err := db.Exec("INSERT INTO salons (name, slug) VALUES (?,?)", "Glow Studio", "glow-studio")
	if err != nil {
		t.Fatalf("inserting salon: %v", err)
	}
	sid, _ := res.LastInsertId()

	return &rbacFixture{
		db:       db,
		rbac:     rbac,
		resolver: NewResolver(repository.NewUserRepo(db), rbac),
		userID:   pair.User.ID,
		salonID:  uint64(sid),
	}
}

func (f *rbacFixture) grant(t *testing.T, roleName string) uint64 {
	t.Helper()
	role, err := f.rbac.GetRoleByName(context.Background(), roleName)
	if err != nil {
		t.Fatalf("GetRoleByName(%q) error = %v", roleName, err)
	}
	if _, err := f.rbac.GrantRole(context.Background(), f.userID, f.salonID, role.ID); err != nil {
		t.Fatalf("GrantRole(%q) error = %v", roleName, err)
	}
	return role.ID
}

func TestResolver_DenyWithoutGrant(t *testing.T) {
	f := newRBACFixture(t)

	ok, err := f.resolver.Authorize(context.Background(), f.userID, f.salonID, model.PermAppointmentsView)
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if ok {
		t.Error("user with no grant should be denied")
	}
}

func TestResolver_AllowWithGrant(t *testing.T) {
	f := newRBACFixture(t)
	f.grant(t, model.RoleWorker)

	ok, err := f.resolver.Authorize(context.Background(), f.userID, f.salonID, model.PermAppointmentsView)
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if !ok {
		t.Error("worker should view appointments")
	}

	// The worker role carries no management permission.
	ok, err = f.resolver.Authorize(context.Background(), f.userID, f.salonID, model.PermMembersManage)
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if ok {
		t.Error("worker must not manage members")
	}
}

func TestResolver_DeactivatedGrantDeniesNextCall(t *testing.T) {
	f := newRBACFixture(t)
	roleID := f.grant(t, model.RoleAdmin)
	ctx := context.Background()

	ok, err := f.resolver.Authorize(ctx, f.userID, f.salonID, model.PermMembersManage)
	if err != nil || !ok {
		t.Fatalf("Authorize() before deactivation = %v, %v; want allow", ok, err)
	}

	changed, err := f.rbac.DeactivateGrant(ctx, f.userID, f.salonID, roleID)
	if err != nil || !changed {
		t.Fatalf("DeactivateGrant() = %v, %v; want change", changed, err)
	}

	// No token reissue, no cache: the very next check denies.
	ok, err = f.resolver.Authorize(ctx, f.userID, f.salonID, model.PermMembersManage)
	if err != nil {
		t.Fatalf("Authorize() after deactivation error = %v", err)
	}
	if ok {
		t.Error("deactivated grant must deny immediately")
	}
}

func TestResolver_SuperAdminBypass(t *testing.T) {
	f := newRBACFixture(t)
	ctx := context.Background()

	if _, err := f.db.Exec("UPDATE users SET global_role = ? WHERE id = ?", model.GlobalRoleSuperAdmin, f.userID); err != nil {
		t.Fatalf("promoting user: %v", err)
	}

	// No salon grant at all, yet every check passes.
	for _, perm := range []string{model.PermSalonsManage, model.PermMembersManage, model.PermAppointmentsCreate} {
		ok, err := f.resolver.Authorize(ctx, f.userID, f.salonID, perm)
		if err != nil {
			t.Fatalf("Authorize(%q) error = %v", perm, err)
		}
		if !ok {
			t.Errorf("super admin denied %q", perm)
		}
	}

	// The bypass does not fabricate listed permissions.
	perms, err := f.resolver.EffectivePermissions(ctx, f.userID, f.salonID)
	if err != nil {
		t.Fatalf("EffectivePermissions() error = %v", err)
	}
	if len(perms) != 0 {
		t.Errorf("EffectivePermissions() = %v, want empty for ungranted super admin", perms)
	}
}

func TestResolver_InactiveUserDenied(t *testing.T) {
	f := newRBACFixture(t)
	f.grant(t, model.RoleOwner)
	ctx := context.Background()

	if _, err := f.db.Exec("UPDATE users SET is_active = 0 WHERE id = ?", f.userID); err != nil {
		t.Fatalf("deactivating user: %v", err)
	}

	ok, err := f.resolver.Authorize(ctx, f.userID, f.salonID, model.PermSalonsManage)
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if ok {
		t.Error("disabled account must be denied despite active grants")
	}
}

func TestResolver_UnknownUserDeniedWithoutError(t *testing.T) {
	f := newRBACFixture(t)

	ok, err := f.resolver.Authorize(context.Background(), 99999, f.salonID, model.PermAppointmentsView)
	if err != nil {
		t.Fatalf("Authorize() error = %v, want deny without error", err)
	}
	if ok {
		t.Error("unknown user should be denied")
	}
}

func TestResolver_EffectivePermissions(t *testing.T) {
	f := newRBACFixture(t)
	f.grant(t, model.RoleClient)

	perms, err := f.resolver.EffectivePermissions(context.Background(), f.userID, f.salonID)
	if err != nil {
		t.Fatalf("EffectivePermissions() error = %v", err)
	}
	sort.Strings(perms)
	want := []string{model.PermAppointmentsCreate, model.PermAppointmentsView}
	if len(perms) != len(want) {
		t.Fatalf("EffectivePermissions() = %v, want %v", perms, want)
	}
	for i := range want {
		if perms[i] != want[i] {
			t.Fatalf("EffectivePermissions() = %v, want %v", perms, want)
		}
	}
}
