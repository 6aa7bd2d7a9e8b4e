package filter

import (
	"strings"
	"testing"
	"time"

	"github.com/bkellam/autochatter/internal/config"
	"github.com/bkellam/autochatter/internal/core"
)

func mustFilter(t *testing.T, cfg config.FilterConfig) *Filter {
	t.Helper()
	f, err := New(cfg)
	if err != nil {
		t.Fatalf("build filter: %v", err)
	}
	return f
}

func TestAcceptAllByDefault(t *testing.T) {
	f := mustFilter(t, config.FilterConfig{})
	ok, _, err := f.Accept(core.Video{ID: "a", Title: "anything"})
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if !ok {
		t.Fatalf("default filter must accept everything")
	}
}

func TestShortsOnly(t *testing.T) {
	f := mustFilter(t, config.FilterConfig{
		ShortsOnly:       true,
		MaxShortDuration: config.Duration(60 * time.Second),
	})

	cases := []struct {
		name  string
		video core.Video
		want  bool
	}{
		{"short", core.Video{ID: "s", Duration: 45 * time.Second}, true},
		{"boundary", core.Video{ID: "b", Duration: 60 * time.Second}, true},
		{"long", core.Video{ID: "l", Duration: 90 * time.Second}, false},
		{"unknown duration", core.Video{ID: "u"}, false},
	}
	for _, tc := range cases {
		ok, reason, err := f.Accept(tc.video)
		if err != nil {
			t.Fatalf("%s: accept failed: %v", tc.name, err)
		}
		if ok != tc.want {
			t.Fatalf("%s: accept = %v, want %v (reason %q)", tc.name, ok, tc.want, reason)
		}
	}
}

func TestRuleExpression(t *testing.T) {
	f := mustFilter(t, config.FilterConfig{Rule: `duration <= 60 && kind != "live"`})

	ok, _, err := f.Accept(core.Video{ID: "a", Kind: core.KindShort, Duration: 30 * time.Second})
	if err != nil || !ok {
		t.Fatalf("expected short accepted, got ok=%v err=%v", ok, err)
	}

	ok, reason, err := f.Accept(core.Video{ID: "b", Kind: core.KindLive, Duration: 30 * time.Second})
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if ok {
		t.Fatalf("expected live stream rejected")
	}
	if !strings.Contains(reason, "rule") {
		t.Fatalf("expected rule rejection reason, got %q", reason)
	}
}

func TestRuleMustReturnBool(t *testing.T) {
	f := mustFilter(t, config.FilterConfig{Rule: `title`})
	_, _, err := f.Accept(core.Video{ID: "a", Title: "hello"})
	if err == nil {
		t.Fatalf("expected non-bool rule result to error")
	}
}

func TestBadRuleFailsAtBuild(t *testing.T) {
	if _, err := New(config.FilterConfig{Rule: `duration <=`}); err == nil {
		t.Fatalf("expected compile error")
	}
}
