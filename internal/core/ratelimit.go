package core

import (
	"sync"
	"time"
)

// RateLimiter admits at most maxPoints requests per key inside a trailing
// window. State lives for the process lifetime only; a restart clears all
// admission history.
type RateLimiter struct {
	mu         sync.Mutex
	admissions map[string][]time.Time
	maxPoints  int
	window     time.Duration

	now func() time.Time
}

// NewRateLimiter returns a limiter allowing maxPoints admissions per key
// within the trailing window.
func NewRateLimiter(maxPoints int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		admissions: make(map[string][]time.Time),
		maxPoints:  maxPoints,
		window:     window,
		now:        time.Now,
	}
}

// Admit reports whether a request for key may proceed right now. Timestamps
// older than the window are pruned before counting; a denial records nothing,
// so a denied caller does not extend its own penalty.
func (l *RateLimiter) Admit(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.admissions[key][:0]
	for _, ts := range l.admissions[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.maxPoints {
		l.admissions[key] = recent
		return false
	}

	l.admissions[key] = append(recent, now)
	return true
}
