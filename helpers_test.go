package authcore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	engine *Engine
	redis  *miniredis.Miniredis
	sink   *ChannelSink
	clock  *testClock
}

func newTestEngine(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	cfg := defaultConfig()
	cfg.Token.SigningMethod = "hs256"
	cfg.Token.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	if mutate != nil {
		mutate(&cfg)
	}

	sink := NewChannelSink(128)
	clock := newTestClock()

	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithAuditSink(sink).
		WithClock(clock.Now).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEnv{
		engine: engine,
		redis:  mr,
		sink:   sink,
		clock:  clock,
	}
}

func (env *testEnv) seedSuperAdmin(t *testing.T, email, pass string) *Principal {
	t.Helper()

	p, err := env.engine.CreateSuperAdmin(context.Background(), NewSuperAdmin{
		Email:       email,
		Password:    pass,
		FirstName:   "Sam",
		LastName:    "Ops",
		Permissions: []string{"manage_tenants", "view_system"},
	})
	if err != nil {
		t.Fatalf("seed super admin: %v", err)
	}
	return p
}

func (env *testEnv) seedTenant(t *testing.T, domain, adminEmail, adminPass string) *Tenant {
	t.Helper()

	tenant, err := env.engine.CreateTenant(context.Background(), NewTenant{
		Name:           "Northway Immigration",
		Domain:         domain,
		AdminEmail:     adminEmail,
		AdminPassword:  adminPass,
		AdminFirstName: "Ada",
		AdminLastName:  "North",
	})
	if err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	return tenant
}

func (env *testEnv) seedTeamMember(t *testing.T, tenantID, email, pass string) *Principal {
	t.Helper()

	p, err := env.engine.CreateTeamMember(context.Background(), NewTeamMember{
		TenantID:        tenantID,
		Email:           email,
		Password:        pass,
		FirstName:       "Tess",
		LastName:        "Case",
		Role:            RoleStaff,
		Permissions:     []string{"view_clients", "edit_applications"},
		Specializations: []string{"work_visa"},
	})
	if err != nil {
		t.Fatalf("seed team member: %v", err)
	}
	return p
}

func (env *testEnv) seedClient(t *testing.T, tenantID, email, pass string) *Principal {
	t.Helper()

	p, err := env.engine.CreateClient(context.Background(), NewClient{
		TenantID:  tenantID,
		Email:     email,
		Password:  pass,
		FirstName: "Caro",
		LastName:  "Lee",
		ProfileData: map[string]string{
			"application_stage": "documents",
		},
	})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return p
}

// waitAuditEvent drains sink until an event with the given action arrives.
func (env *testEnv) waitAuditEvent(t *testing.T, action string) AuditEvent {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-env.sink.Events():
			if event.Action == action {
				return event
			}
		case <-deadline:
			t.Fatalf("no %q audit event arrived", action)
		}
	}
}
