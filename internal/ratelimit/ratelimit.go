package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles calls per key, e.g. per backend collection.
type Limiter interface {
	Allow(key string) bool
	Wait(ctx context.Context, key string) error
}

// InMemoryLimiter keeps one token bucket per key.
type InMemoryLimiter struct {
	keys map[string]*rate.Limiter
	mu   sync.Mutex
	r    rate.Limit // tokens added per second
	b    int        // bucket size
}

// NewInMemoryLimiter creates a limiter allowing perSecond calls per key with the given burst.
// A non-positive perSecond disables limiting.
// Example: NewInMemoryLimiter(10, 5) -> 10 calls per second per key, 5 at once
func NewInMemoryLimiter(perSecond float64, burst int) *InMemoryLimiter {
	r := rate.Limit(perSecond)
	if perSecond <= 0 {
		r = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &InMemoryLimiter{
		keys: make(map[string]*rate.Limiter),
		r:    r,
		b:    burst,
	}
}

func (l *InMemoryLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.keys[key]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.keys[key] = limiter
	}
	return limiter
}

// Allow reports whether a call for key may happen now.
func (l *InMemoryLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

// Wait blocks until a call for key is allowed or ctx is done.
func (l *InMemoryLimiter) Wait(ctx context.Context, key string) error {
	return l.limiter(key).Wait(ctx)
}
