// Package factory builds rate limiters that share counters through Redis when
// the application cache is Redis, and limit per process otherwise.
package factory

import (
	"context"
	"time"

	"github.com/akeren/event-registration/pkg/ratelimit"
	"github.com/go-redis/redis/v8"
)

type Cache interface {
	Ping(ctx context.Context) error
}

type redisClientProvider interface {
	GetClient() *redis.Client
}

type LimiterFactory struct {
	client *redis.Client
	logger ratelimit.Logger
}

// NewLimiterFactory accepts a nil cache and a nil logger.
func NewLimiterFactory(cache Cache, logger ratelimit.Logger) *LimiterFactory {
	f := &LimiterFactory{logger: logger}
	if provider, ok := cache.(redisClientProvider); ok {
		f.client = provider.GetClient()
	}
	return f
}

// Shared reports whether limiters from this factory coordinate through Redis.
func (f *LimiterFactory) Shared() bool {
	return f.client != nil
}

func (f *LimiterFactory) Limiter(requests int, window time.Duration) ratelimit.RateLimiter {
	return ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
		Requests: requests,
		Window:   window,
		Redis:    f.client,
		Logger:   f.logger,
	})
}
