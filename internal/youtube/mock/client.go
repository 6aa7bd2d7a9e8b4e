package mock

import (
	"context"
	"sync"

	"github.com/bkellam/autochatter/internal/core"
)

// Client is a scripted Source and Commenter for watcher tests. The mutex
// makes counters safe to read while a watch loop runs in another goroutine.
type Client struct {
	Videos  []core.Video
	ListErr error
	// PostErr, when set, scripts the outcome per video id and attempt
	// (1-based across all calls for that id).
	PostErr func(videoID string, attempt int) error

	mu        sync.Mutex
	listCalls int
	posted    []PostedComment
	attempts  map[string]int
}

type PostedComment struct {
	VideoID string
	Text    string
}

func (c *Client) ListRecentUploads(_ context.Context, _ string, limit int) ([]core.Video, error) {
	c.mu.Lock()
	c.listCalls++
	c.mu.Unlock()
	if c.ListErr != nil {
		return nil, c.ListErr
	}
	if limit > 0 && limit < len(c.Videos) {
		return c.Videos[:limit], nil
	}
	return c.Videos, nil
}

func (c *Client) PostComment(_ context.Context, videoID, text string) error {
	c.mu.Lock()
	if c.attempts == nil {
		c.attempts = map[string]int{}
	}
	c.attempts[videoID]++
	attempt := c.attempts[videoID]
	c.mu.Unlock()
	if c.PostErr != nil {
		if err := c.PostErr(videoID, attempt); err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.posted = append(c.posted, PostedComment{VideoID: videoID, Text: text})
	c.mu.Unlock()
	return nil
}

// ListCalls reports how many listing calls were made.
func (c *Client) ListCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listCalls
}

// Posted returns a copy of the comments posted so far.
func (c *Client) Posted() []PostedComment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]PostedComment(nil), c.posted...)
}

// Attempts reports how many PostComment calls were made for a video.
func (c *Client) Attempts(videoID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts[videoID]
}
