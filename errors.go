package authcore

import (
	"errors"

	"github.com/clearpath-hq/authcore/store"
)

var (
	// ErrAuthentication is the sole error surfaced to callers for login,
	// refresh, and profile failures regardless of root cause. Collapsing
	// not-found, locked, and bad-password into one opaque error prevents
	// account enumeration; the audit trail retains the specific cause.
	ErrAuthentication = errors.New("authentication failed")

	// ErrNotFound indicates a principal or tenant record is missing. Login
	// paths wrap it into ErrAuthentication at the boundary; provisioning
	// surfaces it directly.
	ErrNotFound = store.ErrNotFound

	// ErrStoreUnavailable indicates the backing store could not be reached.
	// It is deliberately distinct from ErrAuthentication so operators can
	// tell "wrong password" from "database down".
	ErrStoreUnavailable = store.ErrUnavailable

	// ErrDuplicateEmail is returned by provisioning when the login identity
	// already exists in the target collection.
	ErrDuplicateEmail = store.ErrDuplicateEmail

	// ErrDuplicateDomain is returned by tenant provisioning when the domain
	// is already claimed.
	ErrDuplicateDomain = store.ErrDuplicateDomain

	// ErrUnknownKind is returned when an operation names a principal kind
	// the engine does not recognize.
	ErrUnknownKind = store.ErrUnknownKind

	// ErrEngineNotReady is returned when an Engine method is called before
	// the engine was fully constructed.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// Internal failure causes. They never cross the boundary; they exist so the
// audit path can record why a login failed while the caller sees only
// ErrAuthentication.
var (
	errBadCredentials = errors.New("password mismatch")
	errLocked         = errors.New("account locked")
	errInactive       = errors.New("account inactive")
)
