// Package memcache is the in-process Cache used when no Redis host is configured.
package memcache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const cleanupInterval = 5 * time.Minute

type MemoryCache struct {
	store *gocache.Cache
}

func New() *MemoryCache {
	return &MemoryCache{store: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	value, found := c.store.Get(key)
	if !found {
		return "", nil
	}

	s, _ := value.(string)
	return s, nil
}

// Set uses ttl=0 for no expiry.
func (c *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.store.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

func (c *MemoryCache) Ping(context.Context) error {
	return nil
}

func (c *MemoryCache) Close() error {
	c.store.Flush()
	return nil
}
