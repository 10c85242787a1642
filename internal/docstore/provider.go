// Package docstore owns the process-wide document store connection.
//
// The connection is established lazily on first use and reused afterwards.
// A failed attempt is never cached: the next caller tries again, so the
// service recovers on its own once the store comes back. The mutex only
// guards the cached handle and is never held across network calls.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/akeren/event-registration/internal/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/singleflight"
)

// DefaultConnectTimeout bounds server selection and the initial ping.
const DefaultConnectTimeout = 3 * time.Second

// ErrUnavailable is returned when the store cannot be reached within the
// connect timeout.
var ErrUnavailable = errors.New("document store unavailable")

// Database hands out a ready database handle.
type Database interface {
	Database(ctx context.Context) (*mongo.Database, error)
}

// Initializer runs once per successful connection, e.g. to ensure indexes.
type Initializer func(ctx context.Context, db *mongo.Database) error

type Config struct {
	URI            string
	DatabaseName   string
	ConnectTimeout time.Duration
}

type connectFunc func(ctx context.Context, cfg Config) (*mongo.Client, error)

// Provider is safe for concurrent use.
type Provider struct {
	cfg          Config
	logger       *log.Logger
	connect      connectFunc
	initializers []Initializer

	dials singleflight.Group

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

func NewProvider(cfg Config, logger *log.Logger, initializers ...Initializer) *Provider {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}

	return &Provider{
		cfg:          cfg,
		logger:       logger,
		connect:      dial,
		initializers: initializers,
	}
}

// Database returns the cached handle or attempts a fresh connection.
// Concurrent callers share one in-flight attempt, so a down store costs each
// caller at most one ConnectTimeout. A caller whose ctx ends first stops
// waiting; the shared attempt carries on for the others.
func (p *Provider) Database(ctx context.Context) (*mongo.Database, error) {
	if db := p.cached(); db != nil {
		return db, nil
	}

	result := p.dials.DoChan("connect", func() (any, error) {
		if db := p.cached(); db != nil {
			return db, nil
		}
		return p.establish(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*mongo.Database), nil
	}
}

func (p *Provider) cached() *mongo.Database {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db
}

// establish dials and initialises without holding mu.
func (p *Provider) establish(ctx context.Context) (*mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, p.cfg.ConnectTimeout)
	defer cancel()

	client, err := p.connect(connectCtx, p.cfg)
	if err != nil {
		p.logger.Error("Document store connection failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	db := client.Database(p.cfg.DatabaseName)

	for _, initialize := range p.initializers {
		if err := initialize(connectCtx, db); err != nil {
			p.logger.Error("Document store initialisation failed", "error", err)
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	p.mu.Lock()
	if p.db != nil {
		// Another attempt installed a handle first.
		existing := p.db
		p.mu.Unlock()
		_ = client.Disconnect(context.Background())
		return existing, nil
	}
	p.client = client
	p.db = db
	p.mu.Unlock()

	p.logger.Info("Document store connection established", "database", p.cfg.DatabaseName)
	return db, nil
}

// Ping checks connectivity, connecting first if needed.
func (p *Provider) Ping(ctx context.Context) error {
	db, err := p.Database(ctx)
	if err != nil {
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, p.cfg.ConnectTimeout)
	defer cancel()

	return db.Client().Ping(pingCtx, readpref.Primary())
}

// Connected reports whether a handle is currently cached, without dialing.
func (p *Provider) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db != nil
}

func (p *Provider) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		return nil
	}

	err := p.client.Disconnect(ctx)
	p.client = nil
	p.db = nil
	return err
}

func dial(ctx context.Context, cfg Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client, nil
}

// IsUnavailable reports whether err means the store could not be reached, as
// opposed to an operation-specific failure.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		strings.Contains(err.Error(), "server selection")
}
