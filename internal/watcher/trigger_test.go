package watcher

import (
	"context"
	"testing"
	"time"
)

func TestIntervalTriggerFires(t *testing.T) {
	trigger := NewIntervalTrigger(20 * time.Millisecond)
	events, err := trigger.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer trigger.Stop()

	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a tick within the interval")
	}
}

func TestIntervalTriggerRejectsNonPositiveInterval(t *testing.T) {
	if _, err := NewIntervalTrigger(0).Start(context.Background()); err == nil {
		t.Fatalf("expected an error for a zero interval")
	}
}

func TestIntervalTriggerStopClosesEvents(t *testing.T) {
	trigger := NewIntervalTrigger(time.Hour)
	events, err := trigger.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := trigger.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	select {
	case _, ok := <-events:
		if ok {
			t.Fatalf("expected the events channel to close, got a tick")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("events channel did not close after Stop")
	}
	// Stop is safe to call again.
	if err := trigger.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestIntervalTriggerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	trigger := NewIntervalTrigger(time.Hour)
	events, err := trigger.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer trigger.Stop()

	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Fatalf("expected the events channel to close, got a tick")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("events channel did not close after cancellation")
	}
}

func TestCronTriggerRejectsBadInputs(t *testing.T) {
	if _, err := NewCronTrigger("", "").Start(context.Background()); err == nil {
		t.Fatalf("expected an error for an empty schedule")
	}
	if _, err := NewCronTrigger("* * * * *", "Not/AZone").Start(context.Background()); err == nil {
		t.Fatalf("expected an error for an unknown timezone")
	}
	if _, err := NewCronTrigger("not a schedule", "").Start(context.Background()); err == nil {
		t.Fatalf("expected an error for a malformed schedule")
	}
}

func TestCronTriggerStopClosesEvents(t *testing.T) {
	trigger := NewCronTrigger("@hourly", "")
	events, err := trigger.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := trigger.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	select {
	case _, ok := <-events:
		if ok {
			t.Fatalf("expected the events channel to close, got a tick")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("events channel did not close after Stop")
	}
	if err := trigger.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
