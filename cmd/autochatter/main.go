package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bkellam/autochatter/internal/compose"
	"github.com/bkellam/autochatter/internal/config"
	"github.com/bkellam/autochatter/internal/filter"
	"github.com/bkellam/autochatter/internal/llm/openai"
	"github.com/bkellam/autochatter/internal/notify"
	"github.com/bkellam/autochatter/internal/notify/smtp"
	"github.com/bkellam/autochatter/internal/observability/otelx"
	"github.com/bkellam/autochatter/internal/retry"
	"github.com/bkellam/autochatter/internal/state"
	"github.com/bkellam/autochatter/internal/watcher"
	"github.com/bkellam/autochatter/internal/youtube"
	"github.com/bkellam/autochatter/internal/youtube/feed"
	"github.com/bkellam/autochatter/internal/youtube/impl"
)

func main() {
	env := config.LoadEnv()

	configPath := flag.String("config", env.ConfigPath, "path to autochatter document")
	channelID := flag.String("channel", env.ChannelID, "YouTube channel id to watch")
	runOnce := flag.Bool("run-once", env.RunOnce, "run a single check cycle and exit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	slog.SetDefault(logger)

	doc, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *channelID != "" {
		doc.Watch.ChannelID = *channelID
	}
	if err := doc.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := otelx.Init(ctx, logger, env.OTel)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	if shutdownOTel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTel(shutdownCtx); err != nil {
				logger.Error("otel shutdown failed", "error", err)
			}
		}()
	}

	store, err := buildStore(doc, logger)
	if err != nil {
		log.Fatalf("failed to open seen store: %v", err)
	}
	defer store.Close()

	// The API client is always needed for posting; the feed source only
	// replaces the listing path.
	client, err := impl.NewClient(ctx, logger, env.YouTube)
	if err != nil {
		log.Fatalf("failed to build YouTube client: %v", err)
	}
	var source youtube.Source = client
	if doc.Watch.Source == "feed" {
		source = feed.NewLister(env.YouTube.HTTPTimeout, "autochatter/1.0")
	}

	videoFilter, err := filter.New(doc.Filter)
	if err != nil {
		log.Fatalf("failed to build filter: %v", err)
	}

	caller := retry.NewCaller(retry.Config{
		MaxAttempts:    doc.Retry.MaxAttempts,
		InitialBackoff: time.Duration(doc.Retry.InitialBackoff),
		MaxBackoff:     time.Duration(doc.Retry.MaxBackoff),
		JitterFraction: *doc.Retry.JitterFraction,
	}, youtube.IsTransient, retry.WithLogger(logger))

	w, err := watcher.New(watcher.Config{
		ChannelID:          doc.Watch.ChannelID,
		PageSize:           doc.Watch.PageSize,
		ReannounceLimit:    doc.Watch.ReannounceLimit,
		MinDelay:           time.Duration(doc.Comment.MinDelay),
		MaxDelay:           time.Duration(doc.Comment.MaxDelay),
		PromoInclusionRate: *doc.Comment.PromoInclusionRate,
	}, watcher.Deps{
		Source:    source,
		Commenter: client,
		Store:     store,
		Filter:    videoFilter,
		Composer:  buildComposer(doc, env, logger),
		Caller:    caller,
		Notifier:  buildNotifier(doc, env, logger),
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("failed to build watcher: %v", err)
	}

	if *runOnce {
		w.CheckOnce(ctx)
		return
	}

	var trigger watcher.Trigger
	if doc.Watch.Schedule != "" {
		trigger = watcher.NewCronTrigger(doc.Watch.Schedule, doc.Watch.Timezone)
	} else {
		trigger = watcher.NewIntervalTrigger(time.Duration(doc.Watch.PollInterval))
	}

	logger.Info("autochatter starting",
		"channel_id", doc.Watch.ChannelID,
		"source", doc.Watch.Source,
		"state_backend", doc.State.Backend)
	if err := w.Run(ctx, trigger); err != nil {
		log.Fatalf("watch loop failed: %v", err)
	}
}

func buildStore(doc *config.Document, logger *slog.Logger) (state.SeenStore, error) {
	if doc.State.Backend == "sqlite" {
		return state.NewSQLiteStore(doc.State.Path, doc.State.Table, doc.State.MaxEntries)
	}
	return state.NewFileStore(doc.State.Path, doc.State.MaxEntries, logger), nil
}

func buildComposer(doc *config.Document, env config.EnvConfig, logger *slog.Logger) compose.Composer {
	templates := compose.NewTemplateComposer(doc.Comment.Templates, doc.Comment.PromoLink, nil)
	if doc.Comment.LLM == nil {
		return templates
	}
	if env.OpenAI.APIKey == "" {
		logger.Warn("comment.llm configured but OPENAI_API_KEY is unset, using templates")
		return templates
	}
	model := doc.Comment.LLM.Model
	if model == "" {
		model = env.OpenAI.Model
	}
	temperature := 0.7
	if doc.Comment.LLM.Temperature != nil {
		temperature = *doc.Comment.LLM.Temperature
	}
	client := openai.NewClient(env.OpenAI)
	return compose.NewLLMComposer(client, model, temperature, doc.Comment.LLM.MaxTokens, templates)
}

func buildNotifier(doc *config.Document, env config.EnvConfig, logger *slog.Logger) notify.Notifier {
	if doc.Notify.Email == nil {
		return notify.Nop{}
	}
	if env.SMTP.Host == "" {
		logger.Warn("notify.email configured but SMTP_HOST is unset, alerts disabled")
		return notify.Nop{}
	}
	from := doc.Notify.Email.From
	if from == "" {
		from = env.SMTP.User
	}
	return notify.NewEmailNotifier(smtp.NewSender(env.SMTP), doc.Notify.Email.To, from)
}
