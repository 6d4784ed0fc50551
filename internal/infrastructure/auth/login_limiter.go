package auth

import (
	"strings"
	"sync"
	"time"
)

// LoginAttemptLimiter throttles failed login attempts per (client, email) key.
// Unlike a request rate limiter, only FAILED attempts consume the budget;
// a successful login clears the key immediately.
type LoginAttemptLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*attemptRecord
	maxFailures int
	window      time.Duration
	cleanupTick time.Duration
}

type attemptRecord struct {
	failures    int
	windowStart time.Time
}

// NewLoginAttemptLimiter creates a limiter allowing maxFailures failed
// attempts per rolling window.
func NewLoginAttemptLimiter(maxFailures int, window time.Duration) *LoginAttemptLimiter {
	l := &LoginAttemptLimiter{
		attempts:    make(map[string]*attemptRecord),
		maxFailures: maxFailures,
		window:      window,
		cleanupTick: window * 2,
	}
	go l.cleanup()
	return l
}

// cleanup removes expired records periodically
func (l *LoginAttemptLimiter) cleanup() {
	ticker := time.NewTicker(l.cleanupTick)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, rec := range l.attempts {
			if now.Sub(rec.windowStart) > l.window {
				delete(l.attempts, key)
			}
		}
		l.mu.Unlock()
	}
}

// Key builds the limiter key from the client address and the submitted email.
// The email is lowercased so retries with different casing share a budget.
func Key(clientAddr, email string) string {
	return clientAddr + ":" + strings.ToLower(strings.TrimSpace(email))
}

// TooManyAttempts reports whether the key has exhausted its failure budget.
// When throttled it also returns how long until the window resets.
func (l *LoginAttemptLimiter) TooManyAttempts(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, exists := l.attempts[key]
	if !exists {
		return false, 0
	}

	now := time.Now()
	if now.Sub(rec.windowStart) >= l.window {
		delete(l.attempts, key)
		return false, 0
	}

	if rec.failures >= l.maxFailures {
		retryAfter := l.window - now.Sub(rec.windowStart)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return true, retryAfter
	}

	return false, 0
}

// RecordFailure counts a failed attempt against the key
func (l *LoginAttemptLimiter) RecordFailure(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	rec, exists := l.attempts[key]
	if !exists || now.Sub(rec.windowStart) >= l.window {
		l.attempts[key] = &attemptRecord{failures: 1, windowStart: now}
		return
	}
	rec.failures++
}

// Reset clears the failure budget for the key after a successful login
func (l *LoginAttemptLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}
