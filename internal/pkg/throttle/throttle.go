// Package throttle provides a keyed rolling-window limiter used to cap the
// rate of outward location broadcasts per order. The decision structure is an
// in-process map: it is not shared across server instances, so throttling is
// only per-process. A multi-instance deployment needs a shared keyed store
// with a TTL-based conditional write instead.
package throttle

import (
	"sync"
	"time"
)

// KeyedLimiter allows at most one successful Allow per key per rolling window.
// The window is measured from the last *allowed* call for that key, not from
// the last attempt, so a steady stream of suppressed calls never starves the
// next permitted one.
type KeyedLimiter struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewKeyedLimiter creates a limiter with the given rolling window.
func NewKeyedLimiter(window time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		window: window,
		now:    time.Now,
		last:   make(map[string]time.Time),
	}
}

// NewKeyedLimiterWithClock creates a limiter with an injected clock for tests.
func NewKeyedLimiterWithClock(window time.Duration, now func() time.Time) *KeyedLimiter {
	return &KeyedLimiter{
		window: window,
		now:    now,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether an action for key is permitted now. A true result
// consumes the window: subsequent calls for the same key return false until
// the window has elapsed since this call.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.last[key]; ok && now.Sub(last) < l.window {
		return false
	}

	l.last[key] = now
	return true
}

// Forget drops the tracked state for key. Used when an order leaves the
// delivery phase and its throttle entry is no longer needed.
func (l *KeyedLimiter) Forget(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.last, key)
}
