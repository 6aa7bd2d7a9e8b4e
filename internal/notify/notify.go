package notify

import (
	"context"
	"time"
)

// EventKind labels the high-severity conditions worth paging an operator for.
type EventKind string

const (
	// EventPersistFailure: a comment was posted but could not be recorded in
	// the seen set. The next cycle may post a duplicate.
	EventPersistFailure EventKind = "persist_failure"
	// EventRetriesExhausted: the comment action burned its whole retry
	// budget; the video stays unseen and will be retried next cycle.
	EventRetriesExhausted EventKind = "retries_exhausted"
)

// Event describes one alert-worthy occurrence.
type Event struct {
	Kind       EventKind
	VideoID    string
	VideoTitle string
	Err        error
	OccurredAt time.Time
}

// Notifier delivers operator alerts. Implementations must never propagate
// delivery failures into the watch loop.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Nop is the default notifier when no alert channel is configured.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Message is a rendered alert ready for a transport.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers a rendered alert message.
type Sender interface {
	Send(ctx context.Context, message Message) error
}
