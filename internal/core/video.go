package core

import "time"

// Video kind as reported by the listing source.
const (
	KindVideo    = "video"
	KindShort    = "short"
	KindLive     = "live"
	KindUpcoming = "upcoming"
)

// Video is a single upload as returned by a listing source.
// Immutable once fetched; the ID is the dedup key.
type Video struct {
	ID          string
	Title       string
	Kind        string
	Duration    time.Duration // zero when the source cannot resolve it (e.g. the RSS feed)
	PublishedAt time.Time
}

// HasDuration reports whether the listing source resolved the video length.
func (v Video) HasDuration() bool {
	return v.Duration > 0
}
