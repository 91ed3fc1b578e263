package authcore

import (
	"context"
	"errors"
	"testing"
)

func TestCreateSuperAdminDuplicateEmail(t *testing.T) {
	env := newTestEngine(t, nil)
	env.seedSuperAdmin(t, "root@platform.io", "correct horse battery")

	_, err := env.engine.CreateSuperAdmin(context.Background(), NewSuperAdmin{
		Email:    "ROOT@platform.io",
		Password: "another password",
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestCreateTenantDuplicateDomain(t *testing.T) {
	env := newTestEngine(t, nil)
	env.seedTenant(t, "northway.example", "ada@northway.example", "tenant admin pass")

	_, err := env.engine.CreateTenant(context.Background(), NewTenant{
		Name:          "Copycat",
		Domain:        "Northway.Example",
		AdminEmail:    "other@copycat.example",
		AdminPassword: "copycat pass 1",
	})
	if !errors.Is(err, ErrDuplicateDomain) {
		t.Fatalf("expected ErrDuplicateDomain, got %v", err)
	}
}

func TestCreateTenantDuplicateAdminEmail(t *testing.T) {
	env := newTestEngine(t, nil)
	env.seedTenant(t, "northway.example", "ada@northway.example", "tenant admin pass")

	_, err := env.engine.CreateTenant(context.Background(), NewTenant{
		Name:          "Second Firm",
		Domain:        "second.example",
		AdminEmail:    "ada@northway.example",
		AdminPassword: "second pass 1",
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// The rejected create must not strand the domain claim.
	if _, err := env.engine.CreateTenant(context.Background(), NewTenant{
		Name:          "Second Firm",
		Domain:        "second.example",
		AdminEmail:    "boss@second.example",
		AdminPassword: "second pass 1",
	}); err != nil {
		t.Fatalf("retry with free admin email failed: %v", err)
	}
}

func TestCreateTeamMemberValidatesRole(t *testing.T) {
	env := newTestEngine(t, nil)
	tenant := env.seedTenant(t, "northway.example", "ada@northway.example", "tenant admin pass")

	_, err := env.engine.CreateTeamMember(context.Background(), NewTeamMember{
		TenantID: tenant.ID,
		Email:    "tess@northway.example",
		Password: "staff pass 123",
		Role:     "owner",
	})
	if err == nil {
		t.Fatal("invalid role accepted")
	}
}

func TestCreateTeamMemberUnknownTenant(t *testing.T) {
	env := newTestEngine(t, nil)

	_, err := env.engine.CreateTeamMember(context.Background(), NewTeamMember{
		TenantID: "no-such-tenant",
		Email:    "tess@northway.example",
		Password: "staff pass 123",
		Role:     RoleStaff,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateClientEmailScopedPerKind(t *testing.T) {
	env := newTestEngine(t, nil)
	tenant := env.seedTenant(t, "northway.example", "ada@northway.example", "tenant admin pass")
	env.seedTeamMember(t, tenant.ID, "shared@northway.example", "staff pass 123")

	// The same identity may exist in a different collection.
	if _, err := env.engine.CreateClient(context.Background(), NewClient{
		TenantID: tenant.ID,
		Email:    "shared@northway.example",
		Password: "client pass 123",
	}); err != nil {
		t.Fatalf("cross-kind identity rejected: %v", err)
	}
}
