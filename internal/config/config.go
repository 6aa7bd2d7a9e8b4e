package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Document is the top-level structure of an autochatter.yaml file. Every knob
// has a default; a missing file yields a usable Document as long as the
// channel id arrives via the environment.
type Document struct {
	Watch   WatchConfig   `yaml:"watch"`
	Comment CommentConfig `yaml:"comment"`
	Filter  FilterConfig  `yaml:"filter"`
	State   StateConfig   `yaml:"state"`
	Retry   RetryConfig   `yaml:"retry"`
	Notify  NotifyConfig  `yaml:"notify,omitempty"`
}

// WatchConfig drives the poll loop.
type WatchConfig struct {
	ChannelID string `yaml:"channel_id"`
	// Source selects the listing path: "api" (YouTube Data API) or "feed"
	// (the channel's public RSS feed, no quota cost).
	Source       string   `yaml:"source,omitempty"`
	PollInterval Duration `yaml:"poll_interval,omitempty"`
	// Schedule, when set, replaces the fixed interval with a cron expression.
	Schedule string `yaml:"schedule,omitempty"`
	Timezone string `yaml:"timezone,omitempty"`
	PageSize int    `yaml:"page_size,omitempty"`
	// ReannounceLimit caps how many unseen videos may be actioned in one
	// cycle. With no prior state every fetched video looks new; this bounds
	// the resulting burst.
	ReannounceLimit int `yaml:"reannounce_limit,omitempty"`
}

// CommentConfig controls pacing and comment composition.
type CommentConfig struct {
	MinDelay  Duration `yaml:"min_delay,omitempty"`
	MaxDelay  Duration `yaml:"max_delay,omitempty"`
	Templates []string `yaml:"templates,omitempty"`
	PromoLink string   `yaml:"promo_link,omitempty"`
	// PromoInclusionRate is the probability in [0,1] that the promo fragment
	// is appended to a comment.
	PromoInclusionRate *float64   `yaml:"promo_inclusion_rate,omitempty"`
	LLM                *LLMConfig `yaml:"llm,omitempty"`
}

// LLMConfig enables LLM-generated comment text instead of the template list.
type LLMConfig struct {
	Model       string   `yaml:"model,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	MaxTokens   int      `yaml:"max_tokens,omitempty"`
}

// FilterConfig decides which new videos are eligible for a comment. Rejected
// videos are never marked seen and stay eligible if the filter changes.
type FilterConfig struct {
	ShortsOnly       bool     `yaml:"shorts_only,omitempty"`
	MaxShortDuration Duration `yaml:"max_short_duration,omitempty"`
	// Rule is an optional expr expression over
	// {id, title, kind, duration, published_at}; it must return a bool.
	Rule string `yaml:"rule,omitempty"`
}

// StateConfig selects and tunes the seen-set backend.
type StateConfig struct {
	// Backend is "file" (human-editable JSON) or "sqlite".
	Backend string `yaml:"backend,omitempty"`
	Path    string `yaml:"path,omitempty"`
	Table   string `yaml:"table,omitempty"`
	// MaxEntries bounds stored identifiers; oldest are evicted first.
	// Zero keeps everything.
	MaxEntries int `yaml:"max_entries,omitempty"`
}

// RetryConfig tunes the backoff caller around remote actions.
type RetryConfig struct {
	MaxAttempts    int      `yaml:"max_attempts,omitempty"`
	InitialBackoff Duration `yaml:"initial_backoff,omitempty"`
	MaxBackoff     Duration `yaml:"max_backoff,omitempty"`
	JitterFraction *float64 `yaml:"jitter_fraction,omitempty"`
}

// NotifyConfig enables operator alerts for duplicate-risk events.
type NotifyConfig struct {
	Email *EmailNotifyConfig `yaml:"email,omitempty"`
}

type EmailNotifyConfig struct {
	To   string `yaml:"to"`
	From string `yaml:"from,omitempty"`
}

// Load reads the document at path and applies defaults. A missing file is not
// an error; it returns a default document.
func Load(path string) (*Document, error) {
	var doc Document
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	doc.ApplyDefaults()
	return &doc, nil
}

// ApplyDefaults fills every unset knob with the built-in default.
func (d *Document) ApplyDefaults() {
	if d.Watch.Source == "" {
		d.Watch.Source = "api"
	}
	if d.Watch.PollInterval <= 0 {
		d.Watch.PollInterval = Duration(10 * time.Minute)
	}
	if d.Watch.PageSize <= 0 {
		d.Watch.PageSize = 5
	}
	if d.Watch.ReannounceLimit <= 0 {
		d.Watch.ReannounceLimit = d.Watch.PageSize
	}
	if d.Comment.MinDelay <= 0 {
		d.Comment.MinDelay = Duration(30 * time.Second)
	}
	if d.Comment.MaxDelay <= 0 {
		d.Comment.MaxDelay = Duration(180 * time.Second)
	}
	if d.Comment.PromoInclusionRate == nil {
		rate := 0.2
		d.Comment.PromoInclusionRate = &rate
	}
	if d.Filter.MaxShortDuration <= 0 {
		d.Filter.MaxShortDuration = Duration(60 * time.Second)
	}
	if d.State.Backend == "" {
		d.State.Backend = "file"
	}
	if d.State.Path == "" {
		switch d.State.Backend {
		case "sqlite":
			d.State.Path = "state.db"
		default:
			d.State.Path = "state.json"
		}
	}
	if d.State.MaxEntries < 0 {
		d.State.MaxEntries = 0
	}
	if d.Retry.MaxAttempts <= 0 {
		d.Retry.MaxAttempts = 5
	}
	if d.Retry.InitialBackoff <= 0 {
		d.Retry.InitialBackoff = Duration(time.Second)
	}
	if d.Retry.MaxBackoff <= 0 {
		d.Retry.MaxBackoff = Duration(5 * time.Minute)
	}
	if d.Retry.JitterFraction == nil {
		jitter := 0.1
		d.Retry.JitterFraction = &jitter
	}
}

// Validate rejects configurations the watcher cannot run with.
func (d *Document) Validate() error {
	if d.Watch.ChannelID == "" {
		return fmt.Errorf("watch.channel_id is required (or set YOUTUBE_CHANNEL_ID)")
	}
	switch d.Watch.Source {
	case "api", "feed":
	default:
		return fmt.Errorf("watch.source must be \"api\" or \"feed\", got %q", d.Watch.Source)
	}
	if d.Comment.MaxDelay < d.Comment.MinDelay {
		return fmt.Errorf("comment.max_delay must be >= comment.min_delay")
	}
	if rate := *d.Comment.PromoInclusionRate; rate < 0 || rate > 1 {
		return fmt.Errorf("comment.promo_inclusion_rate must be in [0,1], got %v", rate)
	}
	switch d.State.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("state.backend must be \"file\" or \"sqlite\", got %q", d.State.Backend)
	}
	if d.Watch.Timezone != "" {
		if _, err := time.LoadLocation(d.Watch.Timezone); err != nil {
			return fmt.Errorf("invalid watch.timezone: %w", err)
		}
	}
	if d.Notify.Email != nil && d.Notify.Email.To == "" {
		return fmt.Errorf("notify.email.to is required when email notifications are configured")
	}
	return nil
}
