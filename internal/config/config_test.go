package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	doc, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not be an error: %v", err)
	}
	if doc.Watch.PollInterval.Std() != 10*time.Minute {
		t.Fatalf("expected default poll interval 10m, got %v", doc.Watch.PollInterval)
	}
	if doc.Watch.PageSize != 5 {
		t.Fatalf("expected default page size 5, got %d", doc.Watch.PageSize)
	}
	if doc.Watch.ReannounceLimit != 5 {
		t.Fatalf("expected reannounce limit to default to page size, got %d", doc.Watch.ReannounceLimit)
	}
	if doc.Comment.MinDelay.Std() != 30*time.Second || doc.Comment.MaxDelay.Std() != 180*time.Second {
		t.Fatalf("unexpected default delays: %v..%v", doc.Comment.MinDelay, doc.Comment.MaxDelay)
	}
	if *doc.Comment.PromoInclusionRate != 0.2 {
		t.Fatalf("expected default inclusion rate 0.2, got %v", *doc.Comment.PromoInclusionRate)
	}
	if doc.Retry.MaxAttempts != 5 || doc.Retry.InitialBackoff.Std() != time.Second || doc.Retry.MaxBackoff.Std() != 5*time.Minute {
		t.Fatalf("unexpected retry defaults: %+v", doc.Retry)
	}
	if doc.State.Backend != "file" || doc.State.Path != "state.json" {
		t.Fatalf("unexpected state defaults: %+v", doc.State)
	}
}

func TestLoadParsesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autochatter.yaml")
	body := `
watch:
  channel_id: UCabc123
  source: feed
  poll_interval: 5m
  page_size: 10
comment:
  min_delay: 10s
  max_delay: 20s
  promo_inclusion_rate: 0
filter:
  shorts_only: true
  max_short_duration: 60
state:
  backend: sqlite
  max_entries: 200
retry:
  max_attempts: 3
  initial_backoff: 2s
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if doc.Watch.ChannelID != "UCabc123" || doc.Watch.Source != "feed" {
		t.Fatalf("unexpected watch config: %+v", doc.Watch)
	}
	if doc.Watch.PollInterval.Std() != 5*time.Minute {
		t.Fatalf("expected 5m interval, got %v", doc.Watch.PollInterval)
	}
	if *doc.Comment.PromoInclusionRate != 0 {
		t.Fatalf("explicit zero inclusion rate must survive defaulting, got %v", *doc.Comment.PromoInclusionRate)
	}
	if doc.Filter.MaxShortDuration.Std() != 60*time.Second {
		t.Fatalf("bare numbers should parse as seconds, got %v", doc.Filter.MaxShortDuration)
	}
	if doc.State.Backend != "sqlite" || doc.State.Path != "state.db" {
		t.Fatalf("sqlite backend should default path to state.db: %+v", doc.State)
	}
	if doc.Retry.MaxAttempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", doc.Retry.MaxAttempts)
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("expected valid document: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Document)
	}{
		{"missing channel", func(d *Document) { d.Watch.ChannelID = "" }},
		{"bad source", func(d *Document) { d.Watch.Source = "rss" }},
		{"inverted delays", func(d *Document) {
			d.Comment.MinDelay = Duration(time.Minute)
			d.Comment.MaxDelay = Duration(time.Second)
		}},
		{"rate above one", func(d *Document) {
			rate := 1.5
			d.Comment.PromoInclusionRate = &rate
		}},
		{"bad backend", func(d *Document) { d.State.Backend = "redis" }},
		{"email without recipient", func(d *Document) { d.Notify.Email = &EmailNotifyConfig{} }},
	}
	for _, tc := range cases {
		doc := &Document{Watch: WatchConfig{ChannelID: "UCabc123"}}
		doc.ApplyDefaults()
		tc.mutate(doc)
		if err := doc.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"90", 90 * time.Second},
		{"1.5", 1500 * time.Millisecond},
		{"10m", 10 * time.Minute},
		{"1d", 24 * time.Hour},
		{"1d12h", 36 * time.Hour},
	}
	for _, tc := range cases {
		got, err := parseDuration(tc.raw)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q = %v, want %v", tc.raw, got, tc.want)
		}
	}
	if _, err := parseDuration(""); err == nil {
		t.Fatalf("empty duration should fail")
	}
	if _, err := parseDuration("bogus"); err == nil {
		t.Fatalf("junk duration should fail")
	}
}
