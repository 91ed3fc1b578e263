package store

import "time"

// Kind tags the four principal collections.
type Kind string

const (
	KindSuperAdmin  Kind = "super_admin"
	KindTenantAdmin Kind = "tenant_admin"
	KindTeamMember  Kind = "team_member"
	KindClient      Kind = "client"
)

// Valid reports whether k names a known collection.
func (k Kind) Valid() bool {
	switch k {
	case KindSuperAdmin, KindTenantAdmin, KindTeamMember, KindClient:
		return true
	}
	return false
}

// Principal is the unified account record the engine operates on. Three
// kinds map one-to-one onto their own collection; tenant admins are
// synthesized from the owning Tenant record, with ID equal to the tenant
// ID.
type Principal struct {
	ID           string
	Kind         Kind
	Email        string // stored lowercase
	PasswordHash string
	FirstName    string
	LastName     string

	// TenantID is empty for super admins and required for every other kind.
	TenantID string

	// Role is set for team members only (admin|staff|viewer).
	Role string

	Permissions     []string
	Specializations []string

	// ProfileData and Preferences carry client application-progress
	// metadata. The engine passes them through untouched.
	ProfileData map[string]string
	Preferences map[string]string

	Active    bool
	DeletedAt *time.Time

	FailedAttempts uint32
	LockedUntil    *time.Time
	LastLogin      *time.Time
}

// Deleted reports whether the record is soft-deleted. Soft-deleted records
// are excluded from every lookup path used by login.
func (p *Principal) Deleted() bool {
	return p != nil && p.DeletedAt != nil
}

// Tenant is an organizational account boundary. Its administrative identity
// is embedded here rather than stored as a separate principal; that
// asymmetry is part of the storage contract and deliberately preserved.
type Tenant struct {
	ID     string
	Domain string // unique, stored lowercase
	Name   string

	AdminEmail        string // unique across tenants, stored lowercase
	AdminPasswordHash string
	AdminFirstName    string
	AdminLastName     string

	AdminFailedAttempts uint32
	AdminLockedUntil    *time.Time
	AdminLastLogin      *time.Time

	Active    bool
	DeletedAt *time.Time
}

// Deleted reports whether the tenant is soft-deleted.
func (t *Tenant) Deleted() bool {
	return t != nil && t.DeletedAt != nil
}

// AdminPrincipal synthesizes the tenant's embedded admin identity as a
// Principal. The admin has no stored permission list; the engine projects a
// fixed set for this kind.
func (t *Tenant) AdminPrincipal() *Principal {
	failed := t.AdminFailedAttempts
	return &Principal{
		ID:             t.ID,
		Kind:           KindTenantAdmin,
		Email:          t.AdminEmail,
		PasswordHash:   t.AdminPasswordHash,
		FirstName:      t.AdminFirstName,
		LastName:       t.AdminLastName,
		TenantID:       t.ID,
		Active:         t.Active,
		DeletedAt:      t.DeletedAt,
		FailedAttempts: failed,
		LockedUntil:    t.AdminLockedUntil,
		LastLogin:      t.AdminLastLogin,
	}
}
