// Package circuitbreaker stops calling a dependency that keeps failing and
// probes it again after a cool-down.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

type CircuitState int

const (
	Closed CircuitState = iota
	Open
	HalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreaker interface {
	Call(func() error) error
	State() CircuitState
	Reset()
}

type Config struct {
	// Consecutive counted failures that open a closed circuit.
	FailureThreshold int
	// How long an open circuit rejects calls before admitting a probe.
	RecoveryTimeout time.Duration
	// Successful probes needed to close again.
	SuccessThreshold int

	// Trips decides whether an error counts as a failure. Nil counts every
	// error. Errors it rejects are returned to the caller untouched.
	Trips func(error) bool

	// OnStateChange runs after each transition, outside the lock.
	OnStateChange func(from, to CircuitState)
}

func DefaultConfig() *Config {
	return &Config{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 1,
	}
}

type breaker struct {
	cfg Config
	now func() time.Time

	mu        sync.Mutex
	state     CircuitState
	failures  int
	successes int
	openUntil time.Time
	probing   bool
}

// NewCircuitBreaker uses DefaultConfig when config is nil and fills in
// non-positive thresholds.
func NewCircuitBreaker(config *Config) CircuitBreaker {
	cfg := *DefaultConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 1
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}

	return &breaker{cfg: cfg, now: time.Now}
}

func (b *breaker) Call(fn func() error) error {
	from, to, err := b.admit()
	b.notify(from, to)
	if err != nil {
		return err
	}

	callErr := fn()

	from, to = b.record(callErr)
	b.notify(from, to)

	return callErr
}

// admit lets one probe through at a time while half-open.
func (b *breaker) admit() (CircuitState, CircuitState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	from := b.state
	if b.state == Open && !b.now().Before(b.openUntil) {
		b.state = HalfOpen
		b.successes = 0
	}

	switch {
	case b.state == Open:
		return from, b.state, ErrCircuitOpen
	case b.state == HalfOpen && b.probing:
		return from, b.state, ErrCircuitOpen
	case b.state == HalfOpen:
		b.probing = true
	}
	return from, b.state, nil
}

func (b *breaker) record(err error) (CircuitState, CircuitState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	from := b.state
	b.probing = false

	if err != nil && b.counts(err) {
		b.failures++
		if b.state == HalfOpen || b.failures >= b.cfg.FailureThreshold {
			b.state = Open
			b.openUntil = b.now().Add(b.cfg.RecoveryTimeout)
		}
		return from, b.state
	}

	b.failures = 0
	if b.state == HalfOpen {
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.state = Closed
			b.successes = 0
		}
	}
	return from, b.state
}

func (b *breaker) counts(err error) bool {
	return b.cfg.Trips == nil || b.cfg.Trips(err)
}

func (b *breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *breaker) Reset() {
	b.mu.Lock()
	from := b.state
	b.state = Closed
	b.failures = 0
	b.successes = 0
	b.probing = false
	b.mu.Unlock()

	b.notify(from, Closed)
}

func (b *breaker) notify(from, to CircuitState) {
	if from != to && b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
}
