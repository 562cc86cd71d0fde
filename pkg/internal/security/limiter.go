package security

import (
	"sync"
	"time"
)

// RateLimiter is a fixed, restarting window counter keyed by an arbitrary
// string (client IP, "ip|username", ...). Once a window elapses the counter
// starts over, so bursts across a window boundary can momentarily exceed the
// configured rate; that approximation is intentional.
//
// Entries are never evicted. The key space is bounded by the population of
// clients seen since boot, which is acceptable at the scale this serves, and
// losing the state on restart fails open.
type RateLimiter struct {
	window    time.Duration
	maxEvents int
	clock     Clock

	buckets sync.Map // key -> *rateWindow
}

type rateWindow struct {
	mu          sync.Mutex
	windowStart time.Time
	count       int
}

func NewRateLimiter(window time.Duration, maxEvents int, clock Clock) *RateLimiter {
	if clock == nil {
		clock = SystemClock()
	}
	return &RateLimiter{
		window:    window,
		maxEvents: maxEvents,
		clock:     clock,
	}
}

func (r *RateLimiter) bucket(key string) *rateWindow {
	if val, ok := r.buckets.Load(key); ok {
		return val.(*rateWindow)
	}
	val, _ := r.buckets.LoadOrStore(key, &rateWindow{windowStart: r.clock.Now()})
	return val.(*rateWindow)
}

// Allow reports whether one more event for key fits into the current window
// and counts it when it does. Locking is per key; distinct keys never
// contend.
func (r *RateLimiter) Allow(key string) bool {
	if len(key) == 0 {
		key = "unknown"
	}

	now := r.clock.Now()
	w := r.bucket(key)
	w.mu.Lock()
	defer w.mu.Unlock()

	if now.Sub(w.windowStart) > r.window {
		w.windowStart = now
		w.count = 0
	}
	if w.count >= r.maxEvents {
		return false
	}
	w.count++
	return true
}

// RegisterFailure counts an event against key without granting anything.
// Used by login throttling, which only advances the counter on failed
// attempts.
func (r *RateLimiter) RegisterFailure(key string) {
	now := r.clock.Now()
	w := r.bucket(key)
	w.mu.Lock()
	defer w.mu.Unlock()

	if now.Sub(w.windowStart) > r.window {
		w.windowStart = now
		w.count = 0
	}
	w.count++
}

// Blocked reports whether key has exhausted the current window without
// consuming an event.
func (r *RateLimiter) Blocked(key string) bool {
	now := r.clock.Now()
	w := r.bucket(key)
	w.mu.Lock()
	defer w.mu.Unlock()

	if now.Sub(w.windowStart) > r.window {
		w.windowStart = now
		w.count = 0
	}
	return w.count >= r.maxEvents
}

// Reset forgets everything known about key.
func (r *RateLimiter) Reset(key string) {
	r.buckets.Delete(key)
}
