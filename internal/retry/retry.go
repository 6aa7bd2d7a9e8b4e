package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// ErrRetriesExhausted wraps the final transient error when every allowed
// attempt failed. Distinct from a first-attempt terminal error so callers can
// log the two differently; both mean the action did not succeed this cycle.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Config bounds a single Call invocation. Zero values fall back to the
// defaults below.
type Config struct {
	// MaxAttempts is the total number of attempts, counting the first.
	MaxAttempts int
	// InitialBackoff is the delay after the first transient failure.
	InitialBackoff time.Duration
	// MaxBackoff caps every computed delay, jitter included.
	MaxBackoff time.Duration
	// JitterFraction adds up to delay*fraction of random slack per retry.
	JitterFraction float64
}

const (
	defaultMaxAttempts    = 5
	defaultInitialBackoff = time.Second
	defaultMaxBackoff     = 5 * time.Minute
	defaultJitterFraction = 0.1
)

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = defaultInitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxBackoff
	}
	if c.JitterFraction < 0 {
		c.JitterFraction = 0
	}
	return c
}

// Caller retries an operation on transient failures with exponential backoff.
// It keeps no state between Call invocations.
type Caller struct {
	cfg       Config
	transient func(error) bool
	sleep     func(context.Context, time.Duration) error
	rng       *rand.Rand
	logger    *slog.Logger
}

type Option func(*Caller)

// WithSleep replaces the real timer-based sleep, for tests.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(c *Caller) { c.sleep = fn }
}

// WithRand replaces the jitter source, for tests.
func WithRand(rng *rand.Rand) Option {
	return func(c *Caller) { c.rng = rng }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Caller) { c.logger = logger }
}

// NewCaller builds a Caller. transient classifies an operation error as
// retryable; a nil classifier treats every error as terminal.
func NewCaller(cfg Config, transient func(error) bool, opts ...Option) *Caller {
	c := &Caller{
		cfg:       cfg.withDefaults(),
		transient: transient,
		sleep:     sleepContext,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:    slog.Default(),
	}
	if c.transient == nil {
		c.transient = func(error) bool { return false }
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call runs op until it succeeds, fails terminally, or the attempt budget is
// spent. Context cancellation is only observed between attempts; an in-flight
// op runs to completion.
func (c *Caller) Call(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if !c.transient(err) {
			return err
		}
		lastErr = err
		if attempt == c.cfg.MaxAttempts {
			break
		}
		delay := c.delay(attempt)
		c.logger.Warn("transient failure, backing off",
			"attempt", attempt,
			"max_attempts", c.cfg.MaxAttempts,
			"delay", delay,
			"error", err)
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, c.cfg.MaxAttempts, lastErr)
}

// delay computes the wait after the given failed attempt (counted from 1):
// min(initial * 2^(attempt-1), max) plus jitter, never exceeding max.
func (c *Caller) delay(attempt int) time.Duration {
	backoff := c.cfg.InitialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= c.cfg.MaxBackoff {
			backoff = c.cfg.MaxBackoff
			break
		}
	}
	if c.cfg.JitterFraction > 0 && backoff < c.cfg.MaxBackoff {
		jitter := time.Duration(c.rng.Float64() * c.cfg.JitterFraction * float64(backoff))
		backoff += jitter
		if backoff > c.cfg.MaxBackoff {
			backoff = c.cfg.MaxBackoff
		}
	}
	return backoff
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
