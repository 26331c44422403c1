package auth

import (
	"sync"
	"time"
)

// LoginLimiter counts failed logins per client IP and login name and locks the
// pair out once the limit is reached inside the window.
type LoginLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*attemptRecord
	maxAttempts int
	window      time.Duration
	lockout     time.Duration
	now         func() time.Time
}

type attemptRecord struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
}

func NewLoginLimiter(maxAttempts int, window, lockout time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	if lockout <= 0 {
		lockout = 30 * time.Minute
	}
	return &LoginLimiter{
		attempts:    make(map[string]*attemptRecord),
		maxAttempts: maxAttempts,
		window:      window,
		lockout:     lockout,
		now:         time.Now,
	}
}

func limiterKey(ip, login string) string {
	return ip + "|" + login
}

// Allow reports whether a login attempt may proceed and, if not, how long the
// caller has to wait.
func (l *LoginLimiter) Allow(ip, login string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.attempts[limiterKey(ip, login)]
	if !ok {
		return true, 0
	}
	now := l.now()
	if now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts a failed attempt and reports whether it triggered a lockout.
func (l *LoginLimiter) RecordFailure(ip, login string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := limiterKey(ip, login)
	record, ok := l.attempts[key]
	if !ok || now.Sub(record.windowStart) > l.window {
		record = &attemptRecord{windowStart: now}
		l.attempts[key] = record
	}

	record.failures++
	if record.failures >= l.maxAttempts {
		record.lockedUntil = now.Add(l.lockout)
		return true
	}
	return false
}

// RecordSuccess forgets previous failures for the pair.
func (l *LoginLimiter) RecordSuccess(ip, login string) {
	l.mu.Lock()
	delete(l.attempts, limiterKey(ip, login))
	l.mu.Unlock()
}

// Prune drops records whose window and lockout have both passed.
func (l *LoginLimiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	pruned := 0
	for key, record := range l.attempts {
		if now.Sub(record.windowStart) > l.window && !now.Before(record.lockedUntil) {
			delete(l.attempts, key)
			pruned++
		}
	}
	return pruned
}
