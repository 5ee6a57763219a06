package web

import (
	"sync"
	"time"
)

const (
	rateWindowDefault = time.Minute
	rateLimitAuth     = 12
	rateLimitContact  = 5
	rateLimitUpload   = 10
	rateLimitProfile  = 30
)

// routeLimits is the per-route submission ceiling within one window.
// Credential guessing and contact spam get the tightest budgets; profile
// edits are cheap for the backend and sit looser.
var routeLimits = map[string]int{
	"/login-signup": rateLimitAuth,
	"/contact-us":   rateLimitContact,
	"/upload-theme": rateLimitUpload,
	"/profile":      rateLimitProfile,
}

// routeLimit resolves a route's ceiling; unknown routes are unlimited.
func routeLimit(route string) int {
	return routeLimits[route]
}

// RateLimiter throttles form submissions per key within a fixed window.
type RateLimiter interface {
	Allow(key string, limit int, window time.Duration) rateDecision
	Close()
}

type rateDecision struct {
	allowed   bool
	count     int
	windowEnd time.Time
}

// memoryRateLimiter counts hits per key in fixed windows. Stale buckets
// are swept opportunistically on the write path, so no janitor goroutine
// is needed.
type memoryRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*rateBucket
	lastSweep time.Time
}

type rateBucket struct {
	hits    int
	resetAt time.Time
}

const bucketSweepInterval = 5 * time.Minute

// NewMemoryRateLimiter returns a process-local limiter used when Redis is
// not configured or unreachable.
func NewMemoryRateLimiter() RateLimiter {
	return &memoryRateLimiter{
		buckets:   make(map[string]*rateBucket),
		lastSweep: time.Now(),
	}
}

func (rl *memoryRateLimiter) Allow(key string, limit int, window time.Duration) rateDecision {
	if limit <= 0 {
		return rateDecision{allowed: true}
	}
	if window <= 0 {
		window = rateWindowDefault
	}
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if now.Sub(rl.lastSweep) >= bucketSweepInterval {
		rl.sweep(now)
	}

	b := rl.buckets[key]
	if b == nil || now.After(b.resetAt) {
		b = &rateBucket{resetAt: now.Add(window)}
		rl.buckets[key] = b
	}
	if b.hits >= limit {
		return rateDecision{allowed: false, count: b.hits, windowEnd: b.resetAt}
	}
	b.hits++
	return rateDecision{allowed: true, count: b.hits, windowEnd: b.resetAt}
}

// sweep drops buckets whose window already ended. Caller holds the lock.
func (rl *memoryRateLimiter) sweep(now time.Time) {
	for key, b := range rl.buckets {
		if now.After(b.resetAt) {
			delete(rl.buckets, key)
		}
	}
	rl.lastSweep = now
}

func (rl *memoryRateLimiter) Close() {}
