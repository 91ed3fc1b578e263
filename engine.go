package authcore

import (
	"context"
	"errors"
	"time"

	internalaudit "github.com/clearpath-hq/authcore/internal/audit"
	"github.com/clearpath-hq/authcore/password"
	"github.com/clearpath-hq/authcore/store"
	"github.com/clearpath-hq/authcore/token"
)

// Engine is the authentication core. One instance serves all four principal
// kinds; the per-kind behavior differences live in a small strategy table,
// not in four parallel code paths. Construct it with [New] and release its
// background resources with [Close].
type Engine struct {
	config     Config
	principals store.PrincipalStore
	tenants    store.TenantStore
	hasher     *password.Hasher
	tokens     *token.Manager
	audit      *internalaudit.Dispatcher
	clock      func() time.Time
}

func (e *Engine) ready() bool {
	return e != nil && e.principals != nil && e.tenants != nil &&
		e.hasher != nil && e.tokens != nil && e.clock != nil
}

// Close drains and stops the audit dispatcher. The engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

/*
====================================
LOGIN
====================================
*/

// LoginSuperAdmin authenticates a platform operator.
func (e *Engine) LoginSuperAdmin(ctx context.Context, email, pass string) (*LoginResult, error) {
	return e.login(ctx, KindSuperAdmin, email, pass)
}

// LoginTenantAdmin authenticates a tenant's embedded administrator.
func (e *Engine) LoginTenantAdmin(ctx context.Context, email, pass string) (*LoginResult, error) {
	return e.login(ctx, KindTenantAdmin, email, pass)
}

// LoginTeamMember authenticates a consultancy staff member.
func (e *Engine) LoginTeamMember(ctx context.Context, email, pass string) (*LoginResult, error) {
	return e.login(ctx, KindTeamMember, email, pass)
}

// LoginClient authenticates an end customer.
func (e *Engine) LoginClient(ctx context.Context, email, pass string) (*LoginResult, error) {
	return e.login(ctx, KindClient, email, pass)
}

/*
====================================
REFRESH
====================================
*/

// RefreshAccessToken validates a refresh token and mints a new access token
// from the identity snapshot it carries. Storage is never consulted:
// permission or status changes made since login stay invisible until the
// principal logs in again. Any validation failure surfaces as
// [ErrAuthentication].
func (e *Engine) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}

	now := e.clock()

	claims, err := e.tokens.ParseRefresh(refreshToken)
	if err != nil {
		e.emitAudit(ctx, AuditEvent{
			Timestamp: now,
			Action:    actionTokenRefresh,
			Success:   false,
			Error:     "invalid_token",
		})
		return "", ErrAuthentication
	}

	access, err := e.tokens.IssueAccess(token.Claims{
		PrincipalID: claims.PrincipalID,
		Kind:        claims.Kind,
		TenantID:    claims.TenantID,
	}, now)
	if err != nil {
		return "", err
	}

	e.emitAudit(ctx, AuditEvent{
		Timestamp: now,
		Action:    actionTokenRefresh,
		ActorID:   claims.PrincipalID,
		ActorKind: claims.Kind,
		TenantID:  claims.TenantID,
		Success:   true,
	})

	return access, nil
}

/*
====================================
LOGOUT
====================================
*/

// Logout records the end of a session. Tokens are stateless, so there is
// nothing to revoke server-side; the call exists for the audit trail and
// never fails observably.
func (e *Engine) Logout(ctx context.Context, kind PrincipalKind, principalID, tenantID string) {
	if !e.ready() {
		return
	}

	e.emitAudit(ctx, AuditEvent{
		Timestamp: e.clock(),
		Action:    actionLogout,
		ActorID:   principalID,
		ActorKind: string(kind),
		TenantID:  tenantID,
		Success:   true,
	})
}

/*
====================================
PROFILE
====================================
*/

// GetProfile re-fetches the principal and projects its current profile.
// Unlike refresh, this path always reflects the stored state. A missing or
// soft-deleted principal surfaces as [ErrAuthentication].
func (e *Engine) GetProfile(ctx context.Context, kind PrincipalKind, principalID string) (*Profile, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	p, err := e.principals.FindByID(ctx, kind, principalID)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return nil, err
		}
		return nil, ErrAuthentication
	}

	tenant, err := e.resolveTenant(ctx, p)
	if err != nil {
		return nil, err
	}

	profile := e.projectProfile(p, tenant)
	return &profile, nil
}

/*
====================================
UNLOCK
====================================
*/

// UnlockPrincipal clears a principal's failure counter and lock deadline.
// It is an operator action and does not touch the last-login stamp.
func (e *Engine) UnlockPrincipal(ctx context.Context, kind PrincipalKind, principalID string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	p, err := e.principals.FindByID(ctx, kind, principalID)
	if err != nil {
		return err
	}

	p.FailedAttempts = 0
	p.LockedUntil = nil
	if err := e.principals.Save(ctx, p); err != nil {
		return err
	}

	e.emitAudit(ctx, AuditEvent{
		Timestamp:    e.clock(),
		Action:       actionUnlock,
		ResourceKind: string(kind),
		ResourceID:   principalID,
		TenantID:     p.TenantID,
		Success:      true,
	})

	return nil
}

// resolveTenant fetches the tenant a scoped principal belongs to. Super
// admins have none. A missing or soft-deleted tenant invalidates the
// principal's access entirely.
func (e *Engine) resolveTenant(ctx context.Context, p *Principal) (*Tenant, error) {
	if p.Kind == KindSuperAdmin {
		return nil, nil
	}

	tenant, err := e.tenants.FindTenantByID(ctx, p.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return nil, err
		}
		return nil, ErrAuthentication
	}

	return tenant, nil
}
