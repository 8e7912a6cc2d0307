package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxIdleAge is how long a client may stay silent before its bucket is forgotten.
const maxIdleAge = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// attemptLimiter throttles login attempts with one token bucket per client key.
// All decisions use the caller's clock, so tests can drive refills.
type attemptLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	buckets   map[string]*bucket
	nextSweep time.Time
}

func newAttemptLimiter(limit rate.Limit, burst int, idle time.Duration) *attemptLimiter {
	return &attemptLimiter{
		limit:   limit,
		burst:   burst,
		idle:    idle,
		buckets: map[string]*bucket{},
	}
}

// take spends one attempt for key at now and reports whether it was available.
func (l *attemptLimiter) take(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !now.Before(l.nextSweep) {
		l.sweep(now)
		l.nextSweep = now.Add(l.idle)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// sweep drops buckets idle for longer than l.idle whose tokens have fully
// refilled. Such a bucket behaves exactly like a new one. Caller holds mu.
func (l *attemptLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idle && b.limiter.TokensAt(now) >= float64(l.burst) {
			delete(l.buckets, key)
		}
	}
}
