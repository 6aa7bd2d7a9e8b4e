package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/bkellam/autochatter/internal/core"
)

// Lister reads the channel's public RSS feed instead of the Data API. Costs
// no API quota, needs no auth, but cannot resolve video durations (those stay
// zero and read as "unknown" to the filter).
type Lister struct {
	parser *gofeed.Parser
}

func NewLister(timeout time.Duration, userAgent string) *Lister {
	if userAgent == "" {
		userAgent = "autochatter/0.1"
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = userAgent
	return &Lister{parser: parser}
}

func (l *Lister) ListRecentUploads(ctx context.Context, channelID string, limit int) ([]core.Video, error) {
	feedURL := "https://www.youtube.com/feeds/videos.xml?channel_id=" + url.QueryEscape(channelID)
	feed, err := l.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse channel feed: %w", err)
	}

	if limit <= 0 {
		limit = len(feed.Items)
	}
	videos := make([]core.Video, 0, limit)
	for _, entry := range feed.Items {
		if len(videos) >= limit {
			break
		}
		video := core.Video{
			ID:    videoIDFromEntry(entry),
			Title: entry.Title,
			Kind:  core.KindVideo,
		}
		if video.ID == "" {
			continue
		}
		if entry.PublishedParsed != nil {
			video.PublishedAt = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			video.PublishedAt = *entry.UpdatedParsed
		}
		videos = append(videos, video)
	}
	return videos, nil
}

// videoIDFromEntry extracts the id from the feed entry GUID, which YouTube
// publishes as "yt:video:<id>".
func videoIDFromEntry(entry *gofeed.Item) string {
	if id, ok := strings.CutPrefix(entry.GUID, "yt:video:"); ok {
		return id
	}
	if ext, ok := entry.Extensions["yt"]; ok {
		if ids, ok := ext["videoId"]; ok && len(ids) > 0 {
			return ids[0].Value
		}
	}
	return ""
}
