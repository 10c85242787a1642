package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	redisKeyPrefix   = "ratelimit:"
	redisCallTimeout = 500 * time.Millisecond
)

// slidingWindow trims entries older than the window, then admits the request
// only if fewer than limit remain. Returns 1 when limited.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

if redis.call('ZCARD', key) >= limit then
	return 1
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window * 2)
return 0
`)

// RedisRateLimiter is a sliding window log shared by every instance that
// points at the same Redis.
type RedisRateLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
	logger   Logger
}

func NewRedisRateLimiter(client *redis.Client, requests int, window time.Duration, logger Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:   client,
		requests: requests,
		window:   window,
		logger:   logger,
	}
}

func (r *RedisRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

// IsLimited fails closed on Redis errors by returning the error; the caller
// chooses the policy.
func (r *RedisRateLimiter) IsLimited(key string) (bool, error) {
	if !strings.HasPrefix(key, redisKeyPrefix) {
		key = redisKeyPrefix + key
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()

	limited, err := slidingWindow.Run(ctx, r.client, []string{key},
		time.Now().UnixMilli(),
		r.window.Milliseconds(),
		r.requests,
		uuid.NewString(),
	).Int()
	if err != nil {
		if r.logger != nil {
			r.logger.Error("Redis rate limit script failed", "key", key, "error", err)
		}
		return false, fmt.Errorf("rate limiter redis: %w", err)
	}

	return limited == 1, nil
}

// Close is a no-op; the client belongs to the application cache.
func (r *RedisRateLimiter) Close() error {
	return nil
}
