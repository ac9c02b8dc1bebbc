package worker

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"reddit-overlay/internal/artifact"
	"reddit-overlay/internal/feed"
	"reddit-overlay/internal/model"
	"reddit-overlay/internal/session"
)

// FeedWatcher polls subreddit feeds and snapshots each one as feed_<subreddit>.
type FeedWatcher struct {
	Fetcher    session.Fetcher
	Store      artifact.Store // optional
	Subreddits []string
	Interval   time.Duration
	Now        func() time.Time
}

func (w *FeedWatcher) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 10 * time.Minute
	}
	if w.Now == nil {
		w.Now = time.Now
	}

	// initial run
	w.runOnce(ctx)

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *FeedWatcher) runOnce(ctx context.Context) {
	subs := lo.Uniq(lo.FilterMap(w.Subreddits, func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	}))
	for _, sub := range subs {
		if ctx.Err() != nil {
			return
		}
		raw, err := w.Fetcher.FetchFeedXML(ctx, sub)
		if err != nil {
			slog.Error("feed-watcher: fetch error", "subreddit", sub, "error", err)
			continue
		}
		posts, err := feed.Parse(raw)
		if err != nil {
			slog.Warn("feed-watcher: parse error", "subreddit", sub, "error", err)
		}
		newest := model.NoTitle
		if len(posts) > 0 {
			newest = posts[0].Title
		}
		slog.Info("feed-watcher: polled", "subreddit", sub, "posts", len(posts), "newest", newest)

		if w.Store == nil {
			continue
		}
		mc := artifact.MainContent{Subreddit: sub, Posts: posts}
		if _, err := artifact.SaveMainContent(ctx, w.Store, snapshotName(sub), mc, w.Now()); err != nil {
			slog.Error("feed-watcher: snapshot error", "subreddit", sub, "error", err)
		}
	}
}

// snapshotName maps a subreddit or feed URL onto a valid artifact name.
func snapshotName(sub string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(sub) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return "feed_" + strings.Trim(b.String(), "_")
}
