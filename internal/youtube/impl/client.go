package impl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/bkellam/autochatter/internal/config"
	"github.com/bkellam/autochatter/internal/core"
	"github.com/bkellam/autochatter/internal/youtube"
)

// Client is the authenticated YouTube Data API caller. It is built once at
// startup and reused for the process lifetime; failing to build it is the one
// fatal error in the system.
type Client struct {
	svc    *ytapi.Service
	logger *slog.Logger
}

// NewClient loads the OAuth token from cfg.TokenFile and builds the API
// service. Token acquisition and refresh-token issuance happen out of band;
// the oauth2 transport refreshes access tokens transparently.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.YouTubeEnvConfig) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("youtube oauth client id and secret are required")
	}

	data, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token file %q: %w", cfg.TokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token file %q: %w", cfg.TokenFile, err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{ytapi.YoutubeForceSslScope},
	}
	httpClient := oauthCfg.Client(ctx, &token)
	httpClient.Timeout = cfg.HTTPTimeout

	svc, err := ytapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("build youtube service: %w", err)
	}
	logger.Info("youtube client initialized", "token_file", cfg.TokenFile)
	return &Client{svc: svc, logger: logger}, nil
}

// ListRecentUploads resolves the channel's uploads playlist and returns its
// most recent entries, newest first, with durations and kinds attached.
func (c *Client) ListRecentUploads(ctx context.Context, channelID string, limit int) ([]core.Video, error) {
	if limit <= 0 {
		limit = 5
	}

	channels, err := c.svc.Channels.List([]string{"contentDetails"}).Id(channelID).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("list channel", err)
	}
	if len(channels.Items) == 0 {
		return nil, fmt.Errorf("channel not found: %s", channelID)
	}
	uploadsPlaylist := channels.Items[0].ContentDetails.RelatedPlaylists.Uploads

	playlist, err := c.svc.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(uploadsPlaylist).
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError("list uploads playlist", err)
	}

	ids := make([]string, 0, len(playlist.Items))
	videos := make([]core.Video, 0, len(playlist.Items))
	for _, item := range playlist.Items {
		if item.Snippet == nil || item.Snippet.ResourceId == nil {
			continue
		}
		video := core.Video{
			ID:    item.Snippet.ResourceId.VideoId,
			Title: item.Snippet.Title,
			Kind:  core.KindVideo,
		}
		if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			video.PublishedAt = t
		}
		ids = append(ids, video.ID)
		videos = append(videos, video)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	details, err := c.svc.Videos.List([]string{"contentDetails", "snippet"}).Id(ids...).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("list video details", err)
	}
	byID := make(map[string]*ytapi.Video, len(details.Items))
	for _, v := range details.Items {
		byID[v.Id] = v
	}
	for i := range videos {
		detail, ok := byID[videos[i].ID]
		if !ok {
			continue
		}
		if detail.ContentDetails != nil {
			if d, err := parseISODuration(detail.ContentDetails.Duration); err == nil {
				videos[i].Duration = d
			} else {
				c.logger.Warn("unparseable video duration",
					"video_id", videos[i].ID,
					"duration", detail.ContentDetails.Duration)
			}
		}
		videos[i].Kind = classifyVideo(detail, videos[i].Duration)
	}
	return videos, nil
}

// PostComment inserts a top-level comment. The raw API error is mapped to a
// StatusError so the backoff caller can classify it.
func (c *Client) PostComment(ctx context.Context, videoID, text string) error {
	thread := &ytapi.CommentThread{
		Snippet: &ytapi.CommentThreadSnippet{
			VideoId: videoID,
			TopLevelComment: &ytapi.Comment{
				Snippet: &ytapi.CommentSnippet{TextOriginal: text},
			},
		},
	}
	_, err := c.svc.CommentThreads.Insert([]string{"snippet"}, thread).Context(ctx).Do()
	if err != nil {
		return wrapAPIError("insert comment", err)
	}
	return nil
}

const maxShortLength = 60 * time.Second

func classifyVideo(detail *ytapi.Video, duration time.Duration) string {
	if detail.Snippet != nil {
		switch detail.Snippet.LiveBroadcastContent {
		case "live":
			return core.KindLive
		case "upcoming":
			return core.KindUpcoming
		}
	}
	if duration > 0 && duration <= maxShortLength {
		return core.KindShort
	}
	return core.KindVideo
}

func wrapAPIError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", op, &youtube.StatusError{Code: apiErr.Code, Body: apiErr.Message})
	}
	// No status code: network-level failure, terminal by classification.
	return fmt.Errorf("%s: %w", op, err)
}
