// Package authcore is the multi-role authentication engine for the
// ClearPath consultancy platform. It authenticates four structurally
// distinct principal kinds (super admins, tenant admins, team members,
// and clients) against their own storage collections while exposing one
// uniform login/refresh/logout/profile contract.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (Profile, TokenPair, AuditEvent). Lockout policy and
// audit dispatch live under internal/ and are never exported. Storage,
// hashing, and token signing live in the store, password, and token
// subpackages.
//
// # Failure semantics
//
// Every authentication failure (unknown identity, wrong password, locked
// account, soft-deleted record) collapses to [ErrAuthentication] at the
// boundary so callers cannot enumerate accounts. The specific cause is
// retained in the audit trail for operators. Store connectivity failures
// surface separately as [ErrStoreUnavailable] and are never conflated with
// bad credentials.
//
// # Concurrency
//
// Each login/refresh/logout/profile call is an independent request-response
// unit. The only shared mutable state is the failure counter on each
// principal record, which is incremented with a store-level atomic HINCRBY
// so concurrent failed logins cannot under-count and defeat the lockout.
package authcore
