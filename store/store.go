package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no record matches a lookup. Lookups
	// treat soft-deleted records as absent.
	ErrNotFound = errors.New("record not found")

	// ErrUnavailable indicates the backing store could not be reached. It
	// wraps the driver error so operators can distinguish infrastructure
	// failure from a genuine miss.
	ErrUnavailable = errors.New("store unavailable")

	// ErrDuplicateEmail is returned when a create would reuse a login
	// identity already present in the target collection.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicateDomain is returned when a tenant create would reuse a
	// claimed domain.
	ErrDuplicateDomain = errors.New("domain already registered")

	// ErrUnknownKind is returned for a Kind outside the four collections.
	ErrUnknownKind = errors.New("unknown principal kind")
)

// PrincipalStore is the credential store adapter: one uniform contract over
// the four principal collections. Identity lookups are case-insensitive
// (identities are lowercased before comparison and before storage) and skip
// soft-deleted records.
type PrincipalStore interface {
	// FindByLoginIdentity resolves the record for the claimed kind. For
	// tenant admins the identity is the tenant's admin email.
	FindByLoginIdentity(ctx context.Context, kind Kind, identity string) (*Principal, error)

	// FindByID fetches a live record by primary key.
	FindByID(ctx context.Context, kind Kind, id string) (*Principal, error)

	// Save persists the principal's mutable credential state (counters,
	// lock deadline, timestamps, password hash).
	Save(ctx context.Context, p *Principal) error

	// IncrementFailedAttempts atomically bumps the failure counter and
	// returns the new value. The increment happens store-side so
	// concurrent failures against one identity cannot under-count.
	IncrementFailedAttempts(ctx context.Context, kind Kind, id string) (uint32, error)

	// SetLockedUntil records the lock deadline on the principal.
	SetLockedUntil(ctx context.Context, kind Kind, id string, until time.Time) error

	// ResetLockout zeroes the failure counter, clears the lock deadline,
	// and stamps the last successful login in one write.
	ResetLockout(ctx context.Context, kind Kind, id string, lastLogin time.Time) error

	// CreatePrincipal inserts a new record, rejecting duplicate login
	// identities within the kind's collection. Tenant admins cannot be
	// created this way; they live inside their Tenant record.
	CreatePrincipal(ctx context.Context, p *Principal) error
}

// TenantStore resolves and persists tenant records.
type TenantStore interface {
	FindTenantByID(ctx context.Context, id string) (*Tenant, error)
	FindByDomain(ctx context.Context, domain string) (*Tenant, error)
	FindByAdminEmail(ctx context.Context, email string) (*Tenant, error)
	SaveTenant(ctx context.Context, t *Tenant) error

	// CreateTenant inserts a new tenant, rejecting duplicate domains and
	// duplicate admin emails.
	CreateTenant(ctx context.Context, t *Tenant) error
}
