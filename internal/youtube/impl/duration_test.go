package impl

import (
	"testing"
	"time"
)

func TestParseISODuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"PT45S", 45 * time.Second},
		{"PT1M30S", 90 * time.Second},
		{"PT1H", time.Hour},
		{"PT2H3M4S", 2*time.Hour + 3*time.Minute + 4*time.Second},
		{"P1DT2H", 26 * time.Hour},
		{"PT0S", 0},
	}
	for _, tc := range cases {
		got, err := parseISODuration(tc.raw)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestParseISODurationRejectsJunk(t *testing.T) {
	for _, raw := range []string{"", "90s", "PT", "PTXS", "P1X", "PT1"} {
		if d, err := parseISODuration(raw); err == nil && d != 0 {
			t.Fatalf("expected %q rejected, got %v", raw, d)
		}
	}
}
