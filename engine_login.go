package authcore

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/clearpath-hq/authcore/internal/lockout"
	"github.com/clearpath-hq/authcore/store"
	"github.com/clearpath-hq/authcore/token"
)

// login is the single authentication flow shared by all four kinds. The
// step order is fixed: normalize, lookup, lock check, password verify. The
// lock check runs before verification so a locked account rejects even the
// correct password, and every failure collapses into ErrAuthentication so a
// caller cannot distinguish "no such account" from "wrong password".
func (e *Engine) login(ctx context.Context, kind PrincipalKind, email, pass string) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	now := e.clock()
	identity := store.NormalizeIdentity(email)

	p, err := e.principals.FindByLoginIdentity(ctx, kind, identity)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return nil, err
		}
		e.auditLoginFailed(ctx, kind, nil, identity, now, err, 0)
		return nil, ErrAuthentication
	}

	policy := lockout.Config{
		MaxAttempts: e.config.Lockout.ForKind(kind).MaxAttempts,
		Duration:    e.config.Lockout.ForKind(kind).Duration,
	}

	if lockout.IsLocked(p.LockedUntil, now) {
		e.auditLoginFailed(ctx, kind, p, identity, now, errLocked, p.FailedAttempts)
		return nil, ErrAuthentication
	}

	if !p.Active {
		e.auditLoginFailed(ctx, kind, p, identity, now, errInactive, p.FailedAttempts)
		return nil, ErrAuthentication
	}

	ok, err := e.hasher.Verify(pass, p.PasswordHash)
	if err != nil || !ok {
		return nil, e.recordFailedAttempt(ctx, kind, p, identity, policy, now)
	}

	if err := e.principals.ResetLockout(ctx, kind, p.ID, now); err != nil {
		return nil, err
	}
	lastLogin := now
	p.FailedAttempts = 0
	p.LockedUntil = nil
	p.LastLogin = &lastLogin

	e.maybeUpgradeHash(ctx, p, pass)

	tenant, err := e.resolveTenant(ctx, p)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return nil, err
		}
		e.auditLoginFailed(ctx, kind, p, identity, now, ErrNotFound, 0)
		return nil, ErrAuthentication
	}

	perms := e.resolvePermissions(p)

	claims := token.Claims{
		PrincipalID: p.ID,
		Kind:        string(kind),
		TenantID:    p.TenantID,
		Permissions: perms,
	}

	access, err := e.tokens.IssueAccess(claims, now)
	if err != nil {
		return nil, err
	}
	refresh, err := e.tokens.IssueRefresh(claims, now)
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, AuditEvent{
		Timestamp: now,
		Action:    actionLogin,
		ActorID:   p.ID,
		ActorKind: string(kind),
		TenantID:  p.TenantID,
		Success:   true,
	})

	return &LoginResult{
		Tokens: TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
		},
		Profile: e.projectProfile(p, tenant),
	}, nil
}

// recordFailedAttempt bumps the failure counter store-side and applies the
// kind's lockout policy against the returned count. The increment is atomic
// in the store, so two simultaneous failures observe distinct counts and
// the threshold cannot be skipped over.
func (e *Engine) recordFailedAttempt(ctx context.Context, kind PrincipalKind, p *Principal, identity string, policy lockout.Config, now time.Time) error {
	count, err := e.principals.IncrementFailedAttempts(ctx, kind, p.ID)
	if err != nil {
		return err
	}

	if policy.ShouldLock(count) {
		if err := e.principals.SetLockedUntil(ctx, kind, p.ID, policy.Deadline(now)); err != nil {
			return err
		}
	}

	e.auditLoginFailed(ctx, kind, p, identity, now, errBadCredentials, count)

	return ErrAuthentication
}

// maybeUpgradeHash rehashes the password under the current parameters when
// the stored hash is weaker. Best effort: a failed upgrade never fails the
// login that triggered it.
func (e *Engine) maybeUpgradeHash(ctx context.Context, p *Principal, pass string) {
	if !e.config.Password.UpgradeOnLogin {
		return
	}

	needs, err := e.hasher.NeedsUpgrade(p.PasswordHash)
	if err != nil || !needs {
		return
	}

	rehashed, err := e.hasher.Hash(pass)
	if err != nil {
		return
	}

	p.PasswordHash = rehashed
	if err := e.principals.Save(ctx, p); err != nil {
		log.Printf("authcore: password upgrade save failed for %s/%s: %v", p.Kind, p.ID, err)
	}
}

func (e *Engine) auditLoginFailed(ctx context.Context, kind PrincipalKind, p *Principal, identity string, now time.Time, cause error, attempts uint32) {
	event := AuditEvent{
		Timestamp: now,
		Action:    actionLoginFailed,
		ActorKind: string(kind),
		Success:   false,
		Error:     auditCause(cause),
		Detail: map[string]string{
			"identity": identity,
		},
	}
	if p != nil {
		event.ActorID = p.ID
		event.TenantID = p.TenantID
	}
	if attempts > 0 {
		event.Detail["failed_attempts"] = strconv.FormatUint(uint64(attempts), 10)
	}

	e.emitAudit(ctx, event)
}
