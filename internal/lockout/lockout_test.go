package lockout

import (
	"testing"
	"time"
)

func TestShouldLockThresholdBoundary(t *testing.T) {
	policy := Config{MaxAttempts: 30, Duration: time.Minute}

	if policy.ShouldLock(29) {
		t.Fatal("attempt 29 must not lock")
	}
	if !policy.ShouldLock(30) {
		t.Fatal("attempt 30 must lock")
	}
	if !policy.ShouldLock(31) {
		t.Fatal("attempt 31 must lock")
	}
}

func TestZeroMaxAttemptsNeverLocks(t *testing.T) {
	policy := Config{MaxAttempts: 0, Duration: time.Minute}

	if policy.ShouldLock(1000000) {
		t.Fatal("disabled policy locked")
	}
}

func TestIsLocked(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if IsLocked(nil, now) {
		t.Fatal("nil deadline reported locked")
	}

	past := now.Add(-time.Second)
	if IsLocked(&past, now) {
		t.Fatal("elapsed deadline reported locked")
	}

	exact := now
	if IsLocked(&exact, now) {
		t.Fatal("deadline equal to now reported locked")
	}

	future := now.Add(time.Second)
	if !IsLocked(&future, now) {
		t.Fatal("future deadline reported unlocked")
	}
}

func TestDeadline(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := Config{MaxAttempts: 3, Duration: 90 * time.Second}

	got := policy.Deadline(now)
	if !got.Equal(now.Add(90 * time.Second)) {
		t.Fatalf("deadline = %v", got)
	}
}
