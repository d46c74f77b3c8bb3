package models

import "time"

// ThrottleRecord is one row of the auth_throttle table: a fixed-window counter
// plus optional lock state, keyed by a namespaced string such as
// "login:ip:1.2.3.4", "failed_login:user@example.com" or "lock:user@example.com".
type ThrottleRecord struct {
	Key         string
	Count       int
	ResetAt     time.Time
	LockedUntil time.Time // zero value = not locked
	LockReason  *string
	UpdatedAt   time.Time
}

// WindowExpired reports whether the counter window has rolled over. An expired
// record must be treated as count == 0 before any decision is made.
func (r *ThrottleRecord) WindowExpired(now time.Time) bool {
	return now.After(r.ResetAt)
}

// Locked reports whether the record carries an active lock at the given instant.
func (r *ThrottleRecord) Locked(now time.Time) bool {
	return !r.LockedUntil.IsZero() && now.Before(r.LockedUntil)
}

// RateLimitResult is the outcome of a fixed-window rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds until the window resets; only set when rejected
}

// FailedLoginResult is the outcome of recording a credential failure.
type FailedLoginResult struct {
	Locked        bool
	Attempts      int
	LockRemaining int // seconds; only set when Locked
}
