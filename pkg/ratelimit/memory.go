package ratelimit

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const emptyKey = "__empty__"

// InMemoryRateLimiter keeps one token bucket per key for a single instance.
// Buckets idle for two windows are evicted.
type InMemoryRateLimiter struct {
	requests int
	window   time.Duration

	mu      sync.Mutex
	buckets *gocache.Cache
}

func NewInMemoryRateLimiter(requests int, window time.Duration) *InMemoryRateLimiter {
	idle := 2 * window
	return &InMemoryRateLimiter{
		requests: requests,
		window:   window,
		buckets:  gocache.New(idle, idle),
	}
}

func (r *InMemoryRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *InMemoryRateLimiter) IsLimited(key string) (bool, error) {
	if key == "" {
		key = emptyKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.bucket(key)
	if !ok {
		bucket = rate.NewLimiter(rate.Limit(float64(r.requests)/r.window.Seconds()), r.requests)
	}

	// Re-setting refreshes the idle expiry.
	r.buckets.SetDefault(key, bucket)

	return !bucket.Allow(), nil
}

func (r *InMemoryRateLimiter) bucket(key string) (*rate.Limiter, bool) {
	cached, ok := r.buckets.Get(key)
	if !ok {
		return nil, false
	}
	limiter, ok := cached.(*rate.Limiter)
	return limiter, ok
}

func (r *InMemoryRateLimiter) Close() error {
	r.buckets.Flush()
	return nil
}
