package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"
)

var errTransient = errors.New("http 503")

func transientAlways(error) bool { return true }

func instantSleep(sleeps *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
}

func TestCallStopsAfterMaxAttempts(t *testing.T) {
	var sleeps []time.Duration
	caller := NewCaller(Config{MaxAttempts: 3, InitialBackoff: time.Second, MaxBackoff: time.Minute},
		transientAlways, WithSleep(instantSleep(&sleeps)))

	attempts := 0
	err := caller.Call(context.Background(), func() error {
		attempts++
		return errTransient
	})
	if attempts != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", attempts)
	}
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected retries-exhausted error, got %v", err)
	}
	if !errors.Is(err, errTransient) {
		t.Fatalf("expected final error to wrap the last failure, got %v", err)
	}
	if len(sleeps) != 2 {
		t.Fatalf("expected 2 sleeps between 3 attempts, got %d", len(sleeps))
	}
}

func TestCallTerminalErrorNotRetried(t *testing.T) {
	terminal := errors.New("http 403")
	caller := NewCaller(Config{MaxAttempts: 5}, func(err error) bool { return !errors.Is(err, terminal) },
		WithSleep(instantSleep(&[]time.Duration{})))

	attempts := 0
	err := caller.Call(context.Background(), func() error {
		attempts++
		return terminal
	})
	if attempts != 1 {
		t.Fatalf("terminal error must not be retried, got %d attempts", attempts)
	}
	if !errors.Is(err, terminal) {
		t.Fatalf("expected terminal error surfaced as-is, got %v", err)
	}
	if errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("first-attempt terminal error must not look like exhaustion")
	}
}

func TestCallSucceedsAfterTransientFailures(t *testing.T) {
	var sleeps []time.Duration
	caller := NewCaller(Config{MaxAttempts: 5, InitialBackoff: time.Second}, transientAlways,
		WithSleep(instantSleep(&sleeps)))

	attempts := 0
	err := caller.Call(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDelayMonotonicAndCapped(t *testing.T) {
	var sleeps []time.Duration
	caller := NewCaller(
		Config{MaxAttempts: 8, InitialBackoff: time.Second, MaxBackoff: 10 * time.Second, JitterFraction: 0},
		transientAlways, WithSleep(instantSleep(&sleeps)))

	_ = caller.Call(context.Background(), func() error { return errTransient })

	if len(sleeps) != 7 {
		t.Fatalf("expected 7 sleeps, got %d", len(sleeps))
	}
	for i, d := range sleeps {
		if i > 0 && d < sleeps[i-1] {
			t.Fatalf("delay %d (%v) shorter than delay %d (%v)", i, d, i-1, sleeps[i-1])
		}
		if d > 10*time.Second {
			t.Fatalf("delay %v exceeds max backoff", d)
		}
	}
	want := []time.Duration{1, 2, 4, 8, 10, 10, 10}
	for i, mult := range want {
		if sleeps[i] != mult*time.Second {
			t.Fatalf("delay %d = %v, want %v", i, sleeps[i], mult*time.Second)
		}
	}
}

func TestDelayJitterNeverExceedsCap(t *testing.T) {
	caller := NewCaller(
		Config{MaxAttempts: 5, InitialBackoff: time.Second, MaxBackoff: 4 * time.Second, JitterFraction: 0.5},
		transientAlways, WithRand(rand.New(rand.NewSource(1))))

	for attempt := 1; attempt <= 10; attempt++ {
		d := caller.delay(attempt)
		if d > 4*time.Second {
			t.Fatalf("attempt %d delay %v exceeds cap", attempt, d)
		}
		base := time.Second << (attempt - 1)
		if base > 4*time.Second {
			base = 4 * time.Second
		}
		if d < base {
			t.Fatalf("attempt %d delay %v below base %v", attempt, d, base)
		}
	}
}

func TestCallObservesCancellationBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	caller := NewCaller(Config{MaxAttempts: 5, InitialBackoff: time.Hour}, transientAlways,
		WithSleep(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }))

	attempts := 0
	err := caller.Call(ctx, func() error {
		attempts++
		cancel()
		return fmt.Errorf("attempt %d: %w", attempts, errTransient)
	})
	if attempts != 1 {
		t.Fatalf("expected a single attempt before cancellation, got %d", attempts)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCallerStatelessAcrossInvocations(t *testing.T) {
	var sleeps []time.Duration
	caller := NewCaller(Config{MaxAttempts: 3, InitialBackoff: time.Second, JitterFraction: 0},
		transientAlways, WithSleep(instantSleep(&sleeps)))

	for i := 0; i < 2; i++ {
		_ = caller.Call(context.Background(), func() error { return errTransient })
	}
	// Both invocations must start from the initial backoff.
	if sleeps[0] != time.Second || sleeps[2] != time.Second {
		t.Fatalf("expected each invocation to restart at 1s, got %v", sleeps)
	}
}
