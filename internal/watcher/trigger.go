package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Trigger tells the watcher when to run a poll cycle. The first cycle always
// runs immediately on start, independent of the trigger.
type Trigger interface {
	// Start begins emitting tick events until ctx is cancelled or Stop is
	// called.
	Start(ctx context.Context) (<-chan time.Time, error)
	Stop() error
}

// IntervalTrigger fires at a fixed period. This is the default poll loop
// cadence.
type IntervalTrigger struct {
	interval time.Duration
	stop     chan struct{}
	events   chan time.Time
}

func NewIntervalTrigger(interval time.Duration) *IntervalTrigger {
	return &IntervalTrigger{interval: interval}
}

func (t *IntervalTrigger) Start(ctx context.Context) (<-chan time.Time, error) {
	if t.interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	t.stop = make(chan struct{})
	t.events = make(chan time.Time, 1)
	go func() {
		defer close(t.events)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.stop:
				return
			case now := <-ticker.C:
				select {
				case t.events <- now:
				default:
				}
			}
		}
	}()
	return t.events, nil
}

func (t *IntervalTrigger) Stop() error {
	if t.stop != nil {
		select {
		case <-t.stop:
		default:
			close(t.stop)
		}
	}
	return nil
}

// CronTrigger fires on a cron schedule for operators who want calendar
// alignment instead of a fixed interval.
type CronTrigger struct {
	schedule string
	timezone string
	cron     *cron.Cron
	events   chan time.Time
	stopOnce sync.Once
}

func NewCronTrigger(schedule, timezone string) *CronTrigger {
	return &CronTrigger{schedule: schedule, timezone: timezone}
}

func (t *CronTrigger) Start(ctx context.Context) (<-chan time.Time, error) {
	if t.schedule == "" {
		return nil, fmt.Errorf("cron schedule is required")
	}
	location := time.UTC
	if t.timezone != "" {
		tz, err := time.LoadLocation(t.timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone: %w", err)
		}
		location = tz
	}

	t.events = make(chan time.Time, 1)
	t.cron = cron.New(cron.WithLocation(location))
	_, err := t.cron.AddFunc(t.schedule, func() {
		select {
		case t.events <- time.Now().UTC():
		default:
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", t.schedule, err)
	}
	t.cron.Start()

	go func() {
		<-ctx.Done()
		_ = t.Stop()
	}()

	return t.events, nil
}

func (t *CronTrigger) Stop() error {
	t.stopOnce.Do(func() {
		if t.cron != nil {
			stopCtx := t.cron.Stop()
			<-stopCtx.Done()
		}
		if t.events != nil {
			close(t.events)
		}
	})
	return nil
}
