// Package ratelimit decides whether a caller key has exceeded its request
// budget. Keys are chosen by the caller, typically scoped by route and client IP.
package ratelimit

import (
	"time"

	"github.com/go-redis/redis/v8"
)

type Logger interface {
	Error(msg string, args ...any)
}

type RateLimiter interface {
	GetLimitDetails() (int, time.Duration)
	// IsLimited records one request for key and reports whether it exceeds
	// the budget. An error means the decision could not be made.
	IsLimited(key string) (bool, error)
	Close() error
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	// Redis shares counters across instances. Nil limits per process.
	Redis  *redis.Client
	Logger Logger
}

func NewRateLimiter(config *RateLimitConfig) RateLimiter {
	if config.Redis != nil {
		return NewRedisRateLimiter(config.Redis, config.Requests, config.Window, config.Logger)
	}
	return NewInMemoryRateLimiter(config.Requests, config.Window)
}
