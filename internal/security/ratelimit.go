package security

import (
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a process-local fixed-window counter keyed by "ip:key".
// It is not shared across instances and is lost on restart.
type RateLimiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	size      time.Duration
	max       int
	limits    map[string]int
	now       func() time.Time
	nextSweep time.Time
}

// NewRateLimiter creates a limiter allowing max requests per key per window.
// limits overrides max for specific keys.
func NewRateLimiter(size time.Duration, max int, limits map[string]int) *RateLimiter {
	l := make(map[string]int, len(limits))
	for k, v := range limits {
		l[k] = v
	}
	return &RateLimiter{
		windows: make(map[string]*window),
		size:    size,
		max:     max,
		limits:  l,
		now:     time.Now,
	}
}

// Limit returns the threshold for key.
func (r *RateLimiter) Limit(key string) int {
	if n, ok := r.limits[key]; ok {
		return n
	}
	return r.max
}

// Check counts one request from ip against key. It reports whether the
// request is allowed and how long until the window resets.
func (r *RateLimiter) Check(ip, key string) (bool, time.Duration) {
	now := r.now()
	id := ip + ":" + key

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep(now)

	w, ok := r.windows[id]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(r.size)}
		r.windows[id] = w
	}
	w.count++
	return w.count <= r.Limit(key), w.resetAt.Sub(now)
}

// sweep drops expired windows at most once per window length.
func (r *RateLimiter) sweep(now time.Time) {
	if now.Before(r.nextSweep) {
		return
	}
	for id, w := range r.windows {
		if !now.Before(w.resetAt) {
			delete(r.windows, id)
		}
	}
	r.nextSweep = now.Add(r.size)
}

// Tracked is the number of live windows.
func (r *RateLimiter) Tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.windows)
}
