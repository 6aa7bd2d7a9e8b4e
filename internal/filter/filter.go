package filter

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/bkellam/autochatter/internal/config"
	"github.com/bkellam/autochatter/internal/core"
)

// Filter decides whether a new video is eligible for a comment. Videos it
// rejects are never marked seen, so they become eligible again if the
// configuration changes.
type Filter struct {
	shortsOnly bool
	maxShort   time.Duration
	rule       string
	program    *vm.Program
}

func New(cfg config.FilterConfig) (*Filter, error) {
	f := &Filter{
		shortsOnly: cfg.ShortsOnly,
		maxShort:   cfg.MaxShortDuration.Std(),
		rule:       cfg.Rule,
	}
	if cfg.Rule != "" {
		program, err := expr.Compile(cfg.Rule, expr.Env(map[string]interface{}{}))
		if err != nil {
			return nil, fmt.Errorf("compile filter rule: %w", err)
		}
		f.program = program
	}
	return f, nil
}

// Accept reports whether the video passes every configured predicate, along
// with a short reason when it does not.
func (f *Filter) Accept(video core.Video) (bool, string, error) {
	if f.shortsOnly {
		// An unknown duration cannot be proven to be a Short.
		if !video.HasDuration() || video.Duration > f.maxShort {
			return false, "not a short", nil
		}
	}
	if f.program != nil {
		result, err := expr.Run(f.program, ruleEnv(video))
		if err != nil {
			return false, "", fmt.Errorf("run filter rule: %w", err)
		}
		matched, ok := result.(bool)
		if !ok {
			return false, "", fmt.Errorf("filter rule did not return bool")
		}
		if !matched {
			return false, "rule rejected", nil
		}
	}
	return true, "", nil
}

func ruleEnv(video core.Video) map[string]interface{} {
	return map[string]interface{}{
		"id":           video.ID,
		"title":        video.Title,
		"kind":         video.Kind,
		"duration":     int64(video.Duration / time.Second),
		"published_at": video.PublishedAt,
	}
}
