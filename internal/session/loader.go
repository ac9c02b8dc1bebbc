package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"reddit-overlay/internal/artifact"
	"reddit-overlay/internal/comments"
	"reddit-overlay/internal/reddit"
)

// Fetcher retrieves raw feed and page text. *reddit.Client implements it.
type Fetcher interface {
	FetchFeedXML(ctx context.Context, subredditOrURL string) (string, error)
	FetchHTMLPage(ctx context.Context, url string) (string, error)
}

var _ Fetcher = (*reddit.Client)(nil)

// ThreadLoader performs the fetches a Session asks for. Artifacts is optional;
// snapshot failures are logged and never fail a load.
type ThreadLoader struct {
	Fetcher   Fetcher
	Extractor *comments.Extractor
	Artifacts artifact.Store
	Now       func() time.Time
}

func (l *ThreadLoader) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// LoadFeed fetches the raw feed for a subreddit name or feed URL.
func (l *ThreadLoader) LoadFeed(ctx context.Context, subredditOrURL string) (string, error) {
	raw, err := l.Fetcher.FetchFeedXML(ctx, subredditOrURL)
	if err != nil {
		return "", fmt.Errorf("session: load feed %q: %w", subredditOrURL, err)
	}
	slog.Debug("session: feed fetched", "source", subredditOrURL, "bytes", len(raw))
	return raw, nil
}

// LoadThread fetches the post page and the comments partial concurrently and
// extracts the comments. Only a comments failure sets Err; the page is kept
// for snapshots.
func (l *ThreadLoader) LoadThread(ctx context.Context, req ThreadRequest, title string) ThreadResult {
	res := ThreadResult{Request: req}
	var commentsHTML string
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		res.PageHTML, res.PageErr = l.Fetcher.FetchHTMLPage(ctx, req.Link)
	}()
	if req.CommentsURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			commentsHTML, res.Err = l.Fetcher.FetchHTMLPage(ctx, req.CommentsURL)
		}()
	}
	wg.Wait()

	if res.PageErr != nil {
		slog.Warn("session: post page fetch failed", "url", req.Link, "error", res.PageErr)
	} else if l.Artifacts != nil {
		v := artifact.RedditView{URL: req.Link, PostTitle: title, HTML: res.PageHTML}
		if p, err := artifact.SaveRedditView(ctx, l.Artifacts, v, l.now()); err != nil {
			slog.Warn("session: snapshot post page failed", "error", err)
		} else {
			slog.Debug("session: post page saved", "at", p)
		}
	}

	if res.Err != nil {
		res.Err = fmt.Errorf("session: load comments: %w", res.Err)
		return res
	}
	if req.CommentsURL == "" {
		return res
	}

	ex := l.Extractor
	if ex == nil {
		ex = comments.New()
	}
	out := ex.Extract(commentsHTML, req.Link)
	for _, e := range out.Errors {
		slog.Warn("comments: node skipped", "error", e)
	}
	res.Comments = out.Comments
	res.Candidates = out.Candidates
	slog.Info("comments: extracted", "url", req.Link, "stage", out.Stage,
		"candidates", out.Candidates, "kept", len(out.Comments))
	return res
}

// SaveSession snapshots the session's posts and cursor. A nil Artifacts store
// returns artifact.ErrUnavailable.
func (l *ThreadLoader) SaveSession(ctx context.Context, subreddit string, v View, feedXML string) (string, error) {
	mc := artifact.MainContent{
		Subreddit:    subreddit,
		CurrentIndex: v.CurrentIndex,
		Posts:        v.Posts,
		FeedXML:      feedXML,
	}
	return artifact.SaveMainContent(ctx, l.Artifacts, "", mc, l.now())
}

// LoadSnapshot reads the last session snapshot without touching any session,
// so it can run off the session's goroutine.
func (l *ThreadLoader) LoadSnapshot(ctx context.Context) (artifact.MainContent, error) {
	return artifact.LoadMainContent(ctx, l.Artifacts, "")
}

// RestoreSession loads the last snapshot into s.
func (l *ThreadLoader) RestoreSession(ctx context.Context, s *Session) (string, *ThreadRequest, error) {
	mc, err := l.LoadSnapshot(ctx)
	if err != nil {
		return "", nil, err
	}
	return mc.Subreddit, s.Restore(mc.Posts, mc.CurrentIndex), nil
}
