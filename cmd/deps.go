package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"reddit-overlay/internal/ai"
	"reddit-overlay/internal/artifact"
	"reddit-overlay/internal/comments"
	"reddit-overlay/internal/config"
	"reddit-overlay/internal/reddit"
	"reddit-overlay/internal/redisclient"
	"reddit-overlay/internal/session"
)

func newRedditClient(cfg config.Config) *reddit.Client {
	return reddit.NewClient(
		reddit.WithHTTPClient(&http.Client{Timeout: cfg.Reddit.TimeoutDuration()}),
		reddit.WithBaseURL(cfg.Reddit.BaseURL),
		reddit.WithUserAgent(cfg.Reddit.UserAgent),
		reddit.WithRetries(cfg.Reddit.MaxRetries),
		reddit.WithRateLimit(cfg.Reddit.RequestsPerSecond, 2),
	)
}

func newExtractor(cfg config.Config, override string) (*comments.Extractor, error) {
	mode := cfg.Comments.Discovery
	if override != "" {
		mode = override
	}
	d, err := comments.ParseDiscovery(mode)
	if err != nil {
		return nil, err
	}
	return comments.New(comments.WithDiscovery(d)), nil
}

// openArtifacts returns the configured debug store, or nil for backend none.
// A Redis store that cannot be reached degrades to nil.
func openArtifacts(ctx context.Context, cfg config.Config) (artifact.Store, func(), error) {
	switch strings.ToLower(cfg.Debug.Backend) {
	case "none":
		return nil, func() {}, nil
	case "redis":
		rdb := redisclient.New(cfg.Redis)
		store := artifact.NewRedisStore(rdb, cfg.Debug.TTLDuration())
		if _, err := store.Ping(ctx); err != nil {
			slog.Warn("artifact: redis unavailable, snapshots disabled", "addr", cfg.Redis.Addr, "error", err)
			_ = rdb.Close()
			return nil, func() {}, nil
		}
		return store, func() { _ = rdb.Close() }, nil
	case "file", "":
		return artifact.NewFileStore(cfg.Debug.Dir), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown debug backend %q", cfg.Debug.Backend)
	}
}

func newLoader(ctx context.Context, cfg config.Config, discovery string) (*session.ThreadLoader, func(), error) {
	ex, err := newExtractor(cfg, discovery)
	if err != nil {
		return nil, nil, err
	}
	store, closeStore, err := openArtifacts(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return &session.ThreadLoader{
		Fetcher:   newRedditClient(cfg),
		Extractor: ex,
		Artifacts: store,
	}, closeStore, nil
}

// newSummarizer returns nil when no API key is configured.
func newSummarizer(cfg config.Config) (ai.Summarizer, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, nil
	}
	c, err := ai.NewOpenAI(ai.Config{APIKey: cfg.OpenAI.APIKey, Model: cfg.OpenAI.Model, BaseURL: cfg.OpenAI.BaseURL})
	if err != nil {
		return nil, err
	}
	return c, nil
}
