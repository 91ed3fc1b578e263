package authcore

import (
	"context"
	"errors"
)

// Audit action names. The trail is append-only: the engine only ever emits
// events, it never rewrites or deletes them.
const (
	actionLogin            = "login"
	actionLoginFailed      = "login_failed"
	actionLogout           = "logout"
	actionTokenRefresh     = "token_refresh"
	actionUnlock           = "account_unlock"
	actionPrincipalCreated = "principal_created"
	actionTenantCreated    = "tenant_created"
)

// emitAudit stamps the event with the request's network context and hands
// it to the async dispatcher, which assigns the event ID. A nil dispatcher
// (auditing disabled) makes this a no-op.
func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if e.audit == nil {
		return
	}

	event.IP = clientIPFromContext(ctx)
	event.UserAgent = userAgentFromContext(ctx)

	e.audit.Emit(ctx, event)
}

// auditCause maps an internal failure cause to the stable code recorded in
// the audit trail. The caller-facing error stays opaque; the trail keeps
// the real reason.
func auditCause(err error) string {
	switch {
	case errors.Is(err, errBadCredentials):
		return "bad_credentials"
	case errors.Is(err, errLocked):
		return "account_locked"
	case errors.Is(err, errInactive):
		return "account_inactive"
	case errors.Is(err, ErrNotFound):
		return "unknown_identity"
	default:
		return "error"
	}
}
