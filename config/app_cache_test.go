package config

import (
	"context"
	"testing"

	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/pkg/memcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCacheConfig_ReadsEnvironment(t *testing.T) {
	t.Setenv("REDIS_HOST", " cache.internal ")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_PASSWORD", "pw")
	t.Setenv("REDIS_DB", "2")

	cc := NewCacheConfig()
	assert.Equal(t, &CacheConfig{Host: "cache.internal", Port: "6379", Password: "pw", DB: 2}, cc)
	assert.True(t, cc.IsConfigured())
}

func TestNewCache_RequiresHost(t *testing.T) {
	_, err := (&CacheConfig{}).NewCache(log.NewLoggerWithJSONOutput())
	assert.ErrorIs(t, err, ErrCacheNotConfigured)
}

func TestNewCacheOrFallback_UsesInProcessCache(t *testing.T) {
	logger := log.NewLoggerWithJSONOutput()

	tests := []struct {
		name string
		cc   *CacheConfig
	}{
		{name: "not configured", cc: &CacheConfig{}},
		// Port 1 on loopback refuses connections immediately.
		{name: "unreachable", cc: &CacheConfig{Host: "127.0.0.1", Port: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := tt.cc.NewCacheOrFallback(logger)
			require.IsType(t, &memcache.MemoryCache{}, cache)

			ctx := context.Background()
			require.NoError(t, cache.Set(ctx, "session:revoked:abc", "1", 0))
			got, err := cache.Get(ctx, "session:revoked:abc")
			require.NoError(t, err)
			assert.Equal(t, "1", got)
		})
	}
}

func TestCloseCache_NilIsNoop(t *testing.T) {
	assert.NoError(t, CloseCache(nil, log.NewLoggerWithJSONOutput()))
}
