// Package audit implements the engine's append-only audit trail: the event
// model, pluggable sinks, and the asynchronous dispatcher that decouples
// sink latency from the authentication hot path.
//
// Audit writes are best-effort by design: a full buffer drops the event (and
// counts the drop) rather than blocking or failing the login that produced
// it.
package audit
