package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom">
  <title>Example Channel</title>
  <entry>
    <id>yt:video:video-one</id>
    <yt:videoId>video-one</yt:videoId>
    <title>First Upload</title>
    <published>2026-08-01T10:00:00+00:00</published>
  </entry>
  <entry>
    <id>yt:video:video-two</id>
    <yt:videoId>video-two</yt:videoId>
    <title>Second Upload</title>
    <published>2026-07-30T10:00:00+00:00</published>
  </entry>
</feed>`

func TestListRecentUploadsParsesFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	t.Cleanup(server.Close)

	lister := NewLister(5*time.Second, "")
	// Point the parser at the test server instead of youtube.com.
	feed, err := lister.parser.ParseURLWithContext(server.URL, context.Background())
	if err != nil {
		t.Fatalf("parse feed: %v", err)
	}
	if len(feed.Items) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(feed.Items))
	}
	if got := videoIDFromEntry(feed.Items[0]); got != "video-one" {
		t.Fatalf("expected id video-one, got %q", got)
	}
}

func TestVideoIDFromEntry(t *testing.T) {
	if got := videoIDFromEntry(&gofeed.Item{GUID: "yt:video:abc123"}); got != "abc123" {
		t.Fatalf("expected abc123, got %q", got)
	}
	if got := videoIDFromEntry(&gofeed.Item{GUID: "something-else"}); got != "" {
		t.Fatalf("expected empty id for foreign GUID, got %q", got)
	}
}
