package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return NewRedis(client, "t"), mr
}

func samplePrincipal() *Principal {
	return &Principal{
		ID:              "p-1",
		Kind:            KindTeamMember,
		Email:           "tess@northway.example",
		PasswordHash:    "$argon2id$fake",
		FirstName:       "Tess",
		LastName:        "Case",
		TenantID:        "ten-1",
		Role:            "staff",
		Permissions:     []string{"view_clients"},
		Specializations: []string{"work_visa", "study_permit"},
		ProfileData:     map[string]string{"stage": "review"},
		Active:          true,
	}
}

func TestPrincipalRoundTrip(t *testing.T) {
	rs, _ := newTestStore(t)
	ctx := context.Background()

	if err := rs.CreatePrincipal(ctx, samplePrincipal()); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := rs.FindByID(ctx, KindTeamMember, "p-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Email != "tess@northway.example" || got.Role != "staff" {
		t.Fatalf("record mismatch: %+v", got)
	}
	if len(got.Specializations) != 2 || got.ProfileData["stage"] != "review" {
		t.Fatalf("encoded fields lost: %+v", got)
	}
	if !got.Active || got.DeletedAt != nil || got.LastLogin != nil {
		t.Fatalf("state fields mismatch: %+v", got)
	}
}

func TestFindByLoginIdentityCaseInsensitive(t *testing.T) {
	rs, _ := newTestStore(t)
	ctx := context.Background()

	p := samplePrincipal()
	p.Email = "Tess@Northway.Example"
	if err := rs.CreatePrincipal(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := rs.FindByLoginIdentity(ctx, KindTeamMember, "  TESS@northway.example ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != "p-1" {
		t.Fatalf("wrong record: %+v", got)
	}
}

func TestFindSkipsSoftDeleted(t *testing.T) {
	rs, mr := newTestStore(t)
	ctx := context.Background()

	if err := rs.CreatePrincipal(ctx, samplePrincipal()); err != nil {
		t.Fatalf("create: %v", err)
	}
	mr.HSet("t:p:team_member:p-1", "deleted_at", time.Now().UTC().Format(time.RFC3339Nano))

	if _, err := rs.FindByID(ctx, KindTeamMember, "p-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := rs.FindByLoginIdentity(ctx, KindTeamMember, "tess@northway.example"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreatePrincipalDuplicate(t *testing.T) {
	rs, _ := newTestStore(t)
	ctx := context.Background()

	if err := rs.CreatePrincipal(ctx, samplePrincipal()); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := samplePrincipal()
	dup.ID = "p-2"
	if err := rs.CreatePrincipal(ctx, dup); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestCreatePrincipalReleasesIndexOnWriteFailure(t *testing.T) {
	rs, mr := newTestStore(t)
	ctx := context.Background()

	// A string value at the record key makes the hash write fail.
	if err := mr.Set("t:p:team_member:p-1", "occupied"); err != nil {
		t.Fatalf("seed conflict: %v", err)
	}

	if err := rs.CreatePrincipal(ctx, samplePrincipal()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	// The failed create must not strand the email claim.
	mr.Del("t:p:team_member:p-1")
	if err := rs.CreatePrincipal(ctx, samplePrincipal()); err != nil {
		t.Fatalf("retry after failed create: %v", err)
	}
}

func TestIncrementFailedAttempts(t *testing.T) {
	rs, _ := newTestStore(t)
	ctx := context.Background()

	if err := rs.CreatePrincipal(ctx, samplePrincipal()); err != nil {
		t.Fatalf("create: %v", err)
	}

	for want := uint32(1); want <= 3; want++ {
		got, err := rs.IncrementFailedAttempts(ctx, KindTeamMember, "p-1")
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if got != want {
			t.Fatalf("count = %d, want %d", got, want)
		}
	}
}

func TestResetLockout(t *testing.T) {
	rs, _ := newTestStore(t)
	ctx := context.Background()

	if err := rs.CreatePrincipal(ctx, samplePrincipal()); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := rs.IncrementFailedAttempts(ctx, KindTeamMember, "p-1"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	until := time.Now().Add(time.Hour).UTC()
	if err := rs.SetLockedUntil(ctx, KindTeamMember, "p-1", until); err != nil {
		t.Fatalf("set locked: %v", err)
	}

	login := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := rs.ResetLockout(ctx, KindTeamMember, "p-1", login); err != nil {
		t.Fatalf("reset: %v", err)
	}

	got, err := rs.FindByID(ctx, KindTeamMember, "p-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.FailedAttempts != 0 || got.LockedUntil != nil {
		t.Fatalf("lockout not cleared: %+v", got)
	}
	if got.LastLogin == nil || !got.LastLogin.Equal(login) {
		t.Fatalf("last login = %v", got.LastLogin)
	}

	// A second reset on an already-clean record is a no-op, not an error.
	secondLogin := login.Add(time.Minute)
	if err := rs.ResetLockout(ctx, KindTeamMember, "p-1", secondLogin); err != nil {
		t.Fatalf("second reset: %v", err)
	}
	got, err = rs.FindByID(ctx, KindTeamMember, "p-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.FailedAttempts != 0 || got.LockedUntil != nil {
		t.Fatalf("repeat reset disturbed lockout state: %+v", got)
	}
	if got.LastLogin == nil || !got.LastLogin.Equal(secondLogin) {
		t.Fatalf("last login after second reset = %v", got.LastLogin)
	}
}

func TestTenantAdminSynthesis(t *testing.T) {
	rs, _ := newTestStore(t)
	ctx := context.Background()

	tenant := &Tenant{
		ID:                "ten-1",
		Domain:            "northway.example",
		Name:              "Northway Immigration",
		AdminEmail:        "Ada@Northway.Example",
		AdminPasswordHash: "$argon2id$fake",
		AdminFirstName:    "Ada",
		Active:            true,
	}
	if err := rs.CreateTenant(ctx, tenant); err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	p, err := rs.FindByLoginIdentity(ctx, KindTenantAdmin, "ada@northway.example")
	if err != nil {
		t.Fatalf("admin lookup: %v", err)
	}
	if p.ID != "ten-1" || p.TenantID != "ten-1" || p.Kind != KindTenantAdmin {
		t.Fatalf("synthesized admin mismatch: %+v", p)
	}

	// Counter writes land on the tenant hash.
	count, err := rs.IncrementFailedAttempts(ctx, KindTenantAdmin, "ten-1")
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d", count)
	}

	got, err := rs.FindTenantByID(ctx, "ten-1")
	if err != nil {
		t.Fatalf("find tenant: %v", err)
	}
	if got.AdminFailedAttempts != 1 {
		t.Fatalf("tenant admin counter = %d", got.AdminFailedAttempts)
	}
}

func TestTenantDomainLookup(t *testing.T) {
	rs, _ := newTestStore(t)
	ctx := context.Background()

	tenant := &Tenant{
		ID:         "ten-1",
		Domain:     "Northway.Example",
		Name:       "Northway Immigration",
		AdminEmail: "ada@northway.example",
		Active:     true,
	}
	if err := rs.CreateTenant(ctx, tenant); err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	got, err := rs.FindByDomain(ctx, "NORTHWAY.example")
	if err != nil {
		t.Fatalf("domain lookup: %v", err)
	}
	if got.ID != "ten-1" {
		t.Fatalf("wrong tenant: %+v", got)
	}
}

func TestCreateTenantDuplicates(t *testing.T) {
	rs, _ := newTestStore(t)
	ctx := context.Background()

	first := &Tenant{ID: "ten-1", Domain: "northway.example", AdminEmail: "ada@northway.example", Active: true}
	if err := rs.CreateTenant(ctx, first); err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	dupDomain := &Tenant{ID: "ten-2", Domain: "northway.example", AdminEmail: "other@x.example", Active: true}
	if err := rs.CreateTenant(ctx, dupDomain); !errors.Is(err, ErrDuplicateDomain) {
		t.Fatalf("expected ErrDuplicateDomain, got %v", err)
	}

	dupAdmin := &Tenant{ID: "ten-3", Domain: "fresh.example", AdminEmail: "ada@northway.example", Active: true}
	if err := rs.CreateTenant(ctx, dupAdmin); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUnknownKindRejected(t *testing.T) {
	rs, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := rs.FindByID(ctx, Kind("ghost"), "p-1"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := rs.IncrementFailedAttempts(ctx, Kind("ghost"), "p-1"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
