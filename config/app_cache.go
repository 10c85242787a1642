package config

import (
	"context"
	"errors"
	"time"

	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/pkg/memcache"
	pkgredis "github.com/akeren/event-registration/pkg/redis"
	"github.com/akeren/event-registration/pkg/utils"
)

// Cache backs session revocation, the options read cache and, when it is
// Redis, the shared rate limit counters.
type Cache interface {
	// Get returns ("", nil) when a key is not found.
	Get(ctx context.Context, key string) (string, error)
	// Set uses ttl=0 for no expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

var ErrCacheNotConfigured = errors.New("cache host is not configured")

type CacheConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewCacheConfig() *CacheConfig {
	return &CacheConfig{
		Host:     utils.GetEnvTrimmed("REDIS_HOST"),
		Port:     utils.GetEnvTrimmedOrDefault("REDIS_PORT", "6379"),
		Password: utils.GetEnvTrimmed("REDIS_PASSWORD"),
		DB:       utils.GetEnvPositiveIntOrDefault("REDIS_DB", 0),
	}
}

func (cc *CacheConfig) IsConfigured() bool {
	return cc.Host != ""
}

func (cc *CacheConfig) NewCache(logger *log.Logger) (Cache, error) {
	if !cc.IsConfigured() {
		return nil, ErrCacheNotConfigured
	}

	cache, err := pkgredis.NewRedisCache(&pkgredis.Config{
		Host:     cc.Host,
		Port:     cc.Port,
		Password: cc.Password,
		DB:       cc.DB,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Cache (Redis) connected", "host", cc.Host, "db", cc.DB)
	return cache, nil
}

// NewCacheOrFallback prefers Redis and falls back to an in-process cache so
// session revocation and options caching always have a backend. With the
// fallback, revocations do not survive a restart and are not shared between
// replicas.
func (cc *CacheConfig) NewCacheOrFallback(logger *log.Logger) Cache {
	cache, err := cc.NewCache(logger)
	switch {
	case errors.Is(err, ErrCacheNotConfigured):
		logger.Info("REDIS_HOST not set; using in-process cache")
		return memcache.New()
	case err != nil:
		logger.Error("Cache (Redis) unreachable; using in-process cache", "host", cc.Host, "error", err)
		return memcache.New()
	}
	return cache
}

func CloseCache(cache Cache, logger *log.Logger) error {
	if cache == nil {
		return nil
	}

	if err := cache.Close(); err != nil {
		logger.Error("Failed to close cache", "error", err)
		return err
	}

	logger.Info("Cache connection closed")
	return nil
}
