package authcore

import (
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/clearpath-hq/authcore/internal/audit"
	"github.com/clearpath-hq/authcore/store"
)

// PrincipalKind tags the four authenticable identity kinds. Each kind owns
// its own storage collection and lockout configuration.
type PrincipalKind = store.Kind

const (
	// KindSuperAdmin is a platform operator with global scope and no
	// tenant affiliation.
	KindSuperAdmin = store.KindSuperAdmin
	// KindTenantAdmin is the single administrative identity embedded in a
	// Tenant record. It has no collection of its own.
	KindTenantAdmin = store.KindTenantAdmin
	// KindTeamMember is a consultancy staff identity scoped to one tenant.
	KindTeamMember = store.KindTeamMember
	// KindClient is an end-customer identity scoped to one tenant.
	KindClient = store.KindClient
)

// Team member roles.
const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleViewer = "viewer"
)

// Principal is the unified account record the engine operates on. The store
// adapter maps each kind's collection into this shape; for tenant admins the
// record is synthesized from the owning Tenant and its ID equals the tenant
// ID.
type Principal = store.Principal

// Tenant is an organizational account boundary. The tenant's administrative
// identity is embedded in the record rather than stored as a separate
// principal; that asymmetry is part of the storage contract and deliberately
// preserved.
type Tenant = store.Tenant

// TokenPair carries the bearer credentials minted on successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Profile is the single outward-facing account shape projected from every
// principal kind.
type Profile struct {
	ID              string            `json:"id"`
	Email           string            `json:"email"`
	FirstName       string            `json:"firstName"`
	LastName        string            `json:"lastName"`
	Kind            PrincipalKind     `json:"kind"`
	Role            string            `json:"role,omitempty"`
	TenantID        string            `json:"tenantId,omitempty"`
	TenantName      string            `json:"tenantName,omitempty"`
	TenantDomain    string            `json:"tenantDomain,omitempty"`
	Permissions     []string          `json:"permissions"`
	Specializations []string          `json:"specializations,omitempty"`
	IsActive        bool              `json:"isActive"`
	LastLogin       *time.Time        `json:"lastLogin,omitempty"`
	ProfileData     map[string]string `json:"profileData,omitempty"`
	Preferences     map[string]string `json:"preferences,omitempty"`
}

// LoginResult is returned by the four login operations.
type LoginResult struct {
	Tokens  TokenPair
	Profile Profile
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// StreamSink is an [AuditSink] that appends events to a Redis stream.
type StreamSink = internalaudit.StreamSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewStreamSink creates a [StreamSink] appending to the named Redis stream.
func NewStreamSink(client redis.UniversalClient, stream string) *StreamSink {
	return internalaudit.NewStreamSink(client, stream)
}
