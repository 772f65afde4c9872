package auth

import (
	"sync"
	"time"
)

// lockoutEntry tracks failed login attempts for an account.
type lockoutEntry struct {
	failures  int
	expiresAt time.Time // zero while not locked
}

// LockoutTracker locks an account after repeated failed logins.
// State is in memory only and is lost on restart.
type LockoutTracker struct {
	mu        sync.Mutex
	entries   map[string]*lockoutEntry
	threshold int
	duration  time.Duration
	now       func() time.Time
}

// NewLockoutTracker creates a tracker that locks after threshold failures
// for duration. A threshold of zero disables lockout.
func NewLockoutTracker(threshold int, duration time.Duration) *LockoutTracker {
	return &LockoutTracker{
		entries:   make(map[string]*lockoutEntry),
		threshold: threshold,
		duration:  duration,
		now:       time.Now,
	}
}

// RecordFailure records a failed login attempt.
// Returns true if the account is now locked.
func (t *LockoutTracker) RecordFailure(key string) bool {
	if t.threshold <= 0 {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.pruneLocked(now)

	entry, ok := t.entries[key]
	if !ok {
		entry = &lockoutEntry{}
		t.entries[key] = entry
	}
	if now.Before(entry.expiresAt) {
		return true
	}

	entry.failures++
	if entry.failures >= t.threshold {
		entry.expiresAt = now.Add(t.duration)
		return true
	}
	return false
}

// IsLocked returns true if the account is currently locked.
func (t *LockoutTracker) IsLocked(key string) bool {
	return t.Remaining(key) > 0
}

// Remaining returns how long until the lockout expires.
func (t *LockoutTracker) Remaining(key string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[key]
	if !ok || entry.expiresAt.IsZero() {
		return 0
	}
	remaining := entry.expiresAt.Sub(t.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ClearFailures clears failed attempts on successful login.
func (t *LockoutTracker) ClearFailures(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries, key)
}

// pruneLocked drops entries whose lockout has expired.
func (t *LockoutTracker) pruneLocked(now time.Time) {
	for key, entry := range t.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(t.entries, key)
		}
	}
}
