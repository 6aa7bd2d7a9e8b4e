package notify

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/bkellam/autochatter/internal/core"
)

// EmailNotifier renders alert bodies from markdown and hands them to a
// Sender. Send failures are logged and swallowed. Logging and the cycle id
// come from the context the watch loop tagged.
type EmailNotifier struct {
	sender    Sender
	to        string
	from      string
	converter goldmark.Markdown
}

func NewEmailNotifier(sender Sender, to, from string) *EmailNotifier {
	return &EmailNotifier{
		sender:    sender,
		to:        to,
		from:      from,
		converter: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (n *EmailNotifier) Notify(ctx context.Context, event Event) {
	logger := core.LoggerFromContext(ctx)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := n.render(event, core.CycleIDFromContext(ctx))
	if err != nil {
		logger.Error("failed to render alert", "kind", event.Kind, "error", err)
		return
	}
	message := Message{
		From:    n.from,
		To:      n.to,
		Subject: subjectFor(event),
		Body:    body,
	}
	if err := n.sender.Send(ctx, message); err != nil {
		logger.Error("failed to deliver alert",
			"kind", event.Kind, "video_id", event.VideoID, "error", err)
	}
}

func subjectFor(event Event) string {
	switch event.Kind {
	case EventPersistFailure:
		return fmt.Sprintf("[autochatter] state write failed for %s (duplicate risk)", event.VideoID)
	case EventRetriesExhausted:
		return fmt.Sprintf("[autochatter] comment retries exhausted for %s", event.VideoID)
	default:
		return fmt.Sprintf("[autochatter] %s for %s", event.Kind, event.VideoID)
	}
}

func (n *EmailNotifier) render(event Event, cycleID string) (string, error) {
	var md bytes.Buffer
	fmt.Fprintf(&md, "## %s\n\n", subjectFor(event))
	fmt.Fprintf(&md, "| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&md, "| Video | `%s` |\n", event.VideoID)
	if event.VideoTitle != "" {
		fmt.Fprintf(&md, "| Title | %s |\n", event.VideoTitle)
	}
	fmt.Fprintf(&md, "| Kind | %s |\n", event.Kind)
	if cycleID != "" {
		fmt.Fprintf(&md, "| Cycle | %s |\n", cycleID)
	}
	fmt.Fprintf(&md, "| At | %s |\n", event.OccurredAt.Format(time.RFC3339))
	if event.Err != nil {
		fmt.Fprintf(&md, "\n```\n%v\n```\n", event.Err)
	}
	if event.Kind == EventPersistFailure {
		fmt.Fprintf(&md, "\nThe comment was posted but not recorded. Check the state file before the next cycle to avoid a duplicate.\n")
	}

	var html bytes.Buffer
	if err := n.converter.Convert(md.Bytes(), &html); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return html.String(), nil
}
