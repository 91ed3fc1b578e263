// Package lockout is the pure state machine behind per-kind brute-force
// lockout. It decides, it never stores. Counters live on the principal
// record and are incremented atomically by the store adapter so concurrent
// failures cannot under-count; this package only answers "is this account
// locked now" and "does this count trigger a lock".
package lockout
