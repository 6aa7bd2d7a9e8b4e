package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bkellam/autochatter/internal/compose"
	"github.com/bkellam/autochatter/internal/core"
	"github.com/bkellam/autochatter/internal/filter"
	"github.com/bkellam/autochatter/internal/notify"
	"github.com/bkellam/autochatter/internal/retry"
	"github.com/bkellam/autochatter/internal/state"
	"github.com/bkellam/autochatter/internal/youtube"
)

// Config carries the resolved runtime knobs for the watch loop.
type Config struct {
	ChannelID string
	PageSize  int
	// ReannounceLimit caps actioned videos per cycle; with fresh state the
	// whole page looks new and this bounds the burst.
	ReannounceLimit    int
	MinDelay           time.Duration
	MaxDelay           time.Duration
	PromoInclusionRate float64
}

// Deps are the watcher's collaborators. Nil optional fields get defaults.
type Deps struct {
	Source    youtube.Source
	Commenter youtube.Commenter
	Store     state.SeenStore
	Filter    *filter.Filter
	Composer  compose.Composer
	Caller    *retry.Caller
	Notifier  notify.Notifier
	Logger    *slog.Logger
	Rand      *rand.Rand
	Sleep     func(context.Context, time.Duration) error
}

// Watcher runs the poll-detect-dedupe-act cycle. Videos are processed
// strictly sequentially; the only suspensions are the interval wait and the
// per-video pacing delay.
type Watcher struct {
	cfg       Config
	source    youtube.Source
	commenter youtube.Commenter
	store     state.SeenStore
	filter    *filter.Filter
	composer  compose.Composer
	caller    *retry.Caller
	notifier  notify.Notifier
	logger    *slog.Logger
	rng       *rand.Rand
	sleep     func(context.Context, time.Duration) error
	tracer    trace.Tracer
	cycles    uint64
}

func New(cfg Config, deps Deps) (*Watcher, error) {
	if cfg.ChannelID == "" {
		return nil, fmt.Errorf("channel id is required")
	}
	if deps.Source == nil || deps.Commenter == nil || deps.Store == nil || deps.Composer == nil || deps.Caller == nil {
		return nil, fmt.Errorf("source, commenter, store, composer and caller are required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}
	if cfg.ReannounceLimit <= 0 {
		cfg.ReannounceLimit = cfg.PageSize
	}
	if cfg.MaxDelay < cfg.MinDelay {
		return nil, fmt.Errorf("max delay must be >= min delay")
	}
	w := &Watcher{
		cfg:       cfg,
		source:    deps.Source,
		commenter: deps.Commenter,
		store:     deps.Store,
		filter:    deps.Filter,
		composer:  deps.Composer,
		caller:    deps.Caller,
		notifier:  deps.Notifier,
		logger:    deps.Logger,
		rng:       deps.Rand,
		sleep:     deps.Sleep,
		tracer:    otel.Tracer("autochatter/watcher"),
	}
	if w.notifier == nil {
		w.notifier = notify.Nop{}
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.rng == nil {
		w.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if w.sleep == nil {
		w.sleep = sleepContext
	}
	return w, nil
}

// Run polls until ctx is cancelled. The first check happens immediately; the
// trigger paces every one after that. Individual cycle failures never stop
// the loop.
func (w *Watcher) Run(ctx context.Context, trigger Trigger) error {
	events, err := trigger.Start(ctx)
	if err != nil {
		return fmt.Errorf("start trigger: %w", err)
	}
	defer trigger.Stop()

	w.CheckOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch loop stopping", "cycles", w.cycles)
			return nil
		case _, ok := <-events:
			if !ok {
				return nil
			}
			w.CheckOnce(ctx)
		}
	}
}

// CheckOnce fetches the current candidate batch and processes it, returning
// the number of successfully actioned videos. Partial failure is steady-state
// behavior, not an error.
func (w *Watcher) CheckOnce(ctx context.Context) int {
	w.cycles++
	cycleID := fmt.Sprintf("cycle-%d", w.cycles)
	logger := w.logger.With("cycle_id", cycleID)
	ctx = core.WithCycleID(core.WithLogger(ctx, logger), cycleID)

	ctx, span := w.tracer.Start(ctx, "watch.cycle",
		trace.WithAttributes(attribute.String("cycle.id", cycleID)))
	defer span.End()

	logger.Info("checking for new videos", "channel_id", w.cfg.ChannelID)
	var videos []core.Video
	err := w.caller.Call(ctx, func() error {
		var listErr error
		videos, listErr = w.source.ListRecentUploads(ctx, w.cfg.ChannelID, w.cfg.PageSize)
		return listErr
	})
	if err != nil {
		logger.Error("failed to fetch uploads",
			"channel_id", w.cfg.ChannelID,
			"status", youtube.StatusCode(err),
			"error", err)
		span.RecordError(err)
		return 0
	}
	if len(videos) == 0 {
		logger.Info("no videos returned")
		return 0
	}

	actioned := 0
	for _, video := range videos {
		if ctx.Err() != nil {
			break
		}
		seen, err := w.store.HasSeen(ctx, video.ID)
		if err != nil {
			logger.Error("seen lookup failed, skipping video", "video_id", video.ID, "error", err)
			continue
		}
		if seen {
			logger.Debug("already processed, skipping", "video_id", video.ID)
			continue
		}
		if w.filter != nil {
			ok, reason, err := w.filter.Accept(video)
			if err != nil {
				logger.Error("filter failed, skipping video", "video_id", video.ID, "error", err)
				continue
			}
			if !ok {
				// Not marked seen: stays eligible if the filter changes.
				logger.Info("filtered out", "video_id", video.ID, "reason", reason)
				continue
			}
		}
		if actioned >= w.cfg.ReannounceLimit {
			logger.Info("per-cycle action cap reached, deferring remainder",
				"cap", w.cfg.ReannounceLimit)
			break
		}
		if w.processVideo(ctx, logger, video) {
			actioned++
		}
	}
	logger.Info("cycle complete", "actioned", actioned, "candidates", len(videos))
	span.SetAttributes(attribute.Int("cycle.actioned", actioned))
	return actioned
}

// processVideo paces, composes and posts one comment, then records it.
// Returns true when the comment was posted, even if recording it failed.
func (w *Watcher) processVideo(ctx context.Context, logger *slog.Logger, video core.Video) bool {
	ctx, span := w.tracer.Start(ctx, "watch.comment",
		trace.WithAttributes(attribute.String("video.id", video.ID)))
	defer span.End()

	logger = logger.With("video_id", video.ID)
	logger.Info("processing new video", "title", video.Title, "kind", video.Kind)

	delay := w.pacingDelay()
	logger.Info("waiting before commenting", "delay", delay)
	if err := w.sleep(ctx, delay); err != nil {
		logger.Info("pacing delay interrupted", "error", err)
		return false
	}

	text, err := w.composer.ChooseText(ctx, video)
	if err != nil {
		logger.Error("comment composition failed", "error", err)
		span.RecordError(err)
		return false
	}
	if w.rng.Float64() < w.cfg.PromoInclusionRate {
		if fragment := w.composer.PromoFragment(); fragment != "" {
			text += "\n\n" + fragment
		}
	}

	err = w.caller.Call(ctx, func() error {
		return w.commenter.PostComment(ctx, video.ID, text)
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, retry.ErrRetriesExhausted) {
			logger.Error("comment failed after exhausting retries, will retry next cycle",
				"status", youtube.StatusCode(err), "error", err)
			w.notifier.Notify(ctx, notify.Event{
				Kind:       notify.EventRetriesExhausted,
				VideoID:    video.ID,
				VideoTitle: video.Title,
				Err:        err,
			})
		} else {
			logger.Error("comment failed terminally, will retry next cycle",
				"status", youtube.StatusCode(err), "error", err)
		}
		return false
	}
	logger.Info("comment posted")

	if err := w.store.MarkSeen(ctx, video.ID); err != nil {
		// The action happened but is not recorded: the next cycle may
		// duplicate it. Loud log plus operator alert.
		logger.Error("comment posted but seen-set write failed, duplicate risk",
			"error", err)
		span.RecordError(err)
		w.notifier.Notify(ctx, notify.Event{
			Kind:       notify.EventPersistFailure,
			VideoID:    video.ID,
			VideoTitle: video.Title,
			Err:        err,
		})
	}
	return true
}

// pacingDelay draws uniformly from [MinDelay, MaxDelay].
func (w *Watcher) pacingDelay() time.Duration {
	if w.cfg.MaxDelay <= w.cfg.MinDelay {
		return w.cfg.MinDelay
	}
	spread := int64(w.cfg.MaxDelay - w.cfg.MinDelay)
	return w.cfg.MinDelay + time.Duration(w.rng.Int63n(spread+1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
