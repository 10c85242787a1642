package memcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetMissingReturnsEmpty(t *testing.T) {
	c := New()

	value, err := c.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := New()

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	value, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	require.NoError(t, c.Delete(ctx, "k"))
	value, _ = c.Get(ctx, "k")
	assert.Empty(t, value)
}

func TestMemoryCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := New()

	require.NoError(t, c.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	value, _ := c.Get(ctx, "k")
	assert.Empty(t, value)
}
