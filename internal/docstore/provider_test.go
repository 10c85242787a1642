package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akeren/event-registration/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func lazyClient(ctx context.Context, _ Config) (*mongo.Client, error) {
	// Connect does not dial synchronously, so this succeeds without a server.
	return mongo.Connect(ctx, options.Client().ApplyURI("mongodb://127.0.0.1:1"))
}

func newTestProvider(connect connectFunc, initializers ...Initializer) *Provider {
	p := NewProvider(Config{URI: "mongodb://127.0.0.1:1", DatabaseName: "test"}, log.NewLoggerWithJSONOutput(), initializers...)
	p.connect = connect
	return p
}

func TestProvider_CachesSuccessfulConnection(t *testing.T) {
	calls := 0
	p := newTestProvider(func(ctx context.Context, cfg Config) (*mongo.Client, error) {
		calls++
		return lazyClient(ctx, cfg)
	})
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	first, err := p.Database(context.Background())
	require.NoError(t, err)
	second, err := p.Database(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
	assert.True(t, p.Connected())
}

func TestProvider_NeverCachesFailure(t *testing.T) {
	calls := 0
	p := newTestProvider(func(ctx context.Context, cfg Config) (*mongo.Client, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection refused")
		}
		return lazyClient(ctx, cfg)
	})
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	_, err := p.Database(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, IsUnavailable(err))
	assert.False(t, p.Connected())

	db, err := p.Database(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", db.Name())
	assert.Equal(t, 2, calls)
}

func TestProvider_FailedInitializerIsRetried(t *testing.T) {
	inits := 0
	p := newTestProvider(lazyClient, func(context.Context, *mongo.Database) error {
		inits++
		if inits == 1 {
			return errors.New("index build failed")
		}
		return nil
	})
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	_, err := p.Database(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)

	_, err = p.Database(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inits)
}

func TestProvider_ConcurrentCallersShareOneAttempt(t *testing.T) {
	const timeout = 200 * time.Millisecond

	var calls atomic.Int32
	p := NewProvider(Config{URI: "mongodb://127.0.0.1:1", DatabaseName: "test", ConnectTimeout: timeout}, log.NewLoggerWithJSONOutput())
	p.connect = func(ctx context.Context, _ Config) (*mongo.Client, error) {
		calls.Add(1)
		<-ctx.Done()
		return nil, ctx.Err()
	}

	const callers = 5
	waits := make([]time.Duration, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := time.Now()
			_, errs[i] = p.Database(context.Background())
			waits[i] = time.Since(start)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		assert.ErrorIs(t, errs[i], ErrUnavailable)
		assert.Less(t, waits[i], 3*timeout, "caller %d queued behind other dials", i)
	}
	assert.Less(t, int(calls.Load()), callers)
}

func TestProvider_CallerContextEndsWait(t *testing.T) {
	release := make(chan struct{})
	p := NewProvider(Config{URI: "mongodb://127.0.0.1:1", DatabaseName: "test", ConnectTimeout: 5 * time.Second}, log.NewLoggerWithJSONOutput())
	p.connect = func(ctx context.Context, _ Config) (*mongo.Client, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil, errors.New("connection refused")
	}
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Database(ctx)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, IsUnavailable(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestIsUnavailable(t *testing.T) {
	assert.True(t, IsUnavailable(fmt.Errorf("wrap: %w", ErrUnavailable)))
	assert.True(t, IsUnavailable(context.DeadlineExceeded))
	assert.True(t, IsUnavailable(errors.New("server selection error: context deadline exceeded")))
	assert.False(t, IsUnavailable(errors.New("E11000 duplicate key")))
	assert.False(t, IsUnavailable(nil))
}
