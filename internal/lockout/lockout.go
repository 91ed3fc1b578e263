package lockout

import "time"

// Config holds the brute-force lockout tuning for one principal kind.
// Kinds are independently tunable: a consultancy may want clients locked
// out aggressively while keeping the super-admin threshold loose enough
// for operator recovery.
type Config struct {
	// MaxAttempts is the failed-attempt count at which the account locks.
	// The Nth failure (N == MaxAttempts) triggers the lock; the (N-1)th
	// does not.
	MaxAttempts uint32

	// Duration is how long the account stays locked once triggered.
	Duration time.Duration
}

// IsLocked reports whether a principal with the given lock deadline is
// currently locked. A nil deadline means never locked; a deadline exactly
// equal to now has already elapsed.
func IsLocked(lockedUntil *time.Time, now time.Time) bool {
	return lockedUntil != nil && lockedUntil.After(now)
}

// ShouldLock reports whether the given failure count (after the atomic
// store increment) has reached the lock threshold.
func (c Config) ShouldLock(failedAttempts uint32) bool {
	return c.MaxAttempts > 0 && failedAttempts >= c.MaxAttempts
}

// Deadline returns the lock expiry for a lock triggered at now. The result
// is strictly after now for any positive Duration.
func (c Config) Deadline(now time.Time) time.Time {
	return now.Add(c.Duration)
}
