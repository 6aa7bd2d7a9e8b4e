package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bkellam/autochatter/internal/core"
)

// Source lists the most recent uploads for a channel, newest first.
type Source interface {
	ListRecentUploads(ctx context.Context, channelID string, limit int) ([]core.Video, error)
}

// Commenter posts a top-level comment on a video.
type Commenter interface {
	PostComment(ctx context.Context, videoID, text string) error
}

// StatusError is a remote failure with an HTTP status code. The backoff
// caller only needs the code to classify it.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("youtube: http %d", e.Code)
	}
	return fmt.Sprintf("youtube: http %d: %s", e.Code, e.Body)
}

// IsTransient reports whether err should be retried: rate limiting (429) or
// any server error (5xx). Everything else is terminal.
func IsTransient(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= http.StatusInternalServerError
	}
	return false
}

// StatusCode extracts the HTTP status from err for logging, or 0.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return 0
}
