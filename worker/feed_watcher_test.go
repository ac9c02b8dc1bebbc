package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"reddit-overlay/internal/artifact"
)

const rss = `<?xml version="1.0"?><rss version="2.0"><channel><title>x</title>
<item><title>Newest</title><link>https://www.reddit.com/r/golang/comments/1/a/</link></item>
<item><title>Older</title><link>https://www.reddit.com/r/golang/comments/2/b/</link></item>
</channel></rss>`

type stubFetcher struct {
	mu    sync.Mutex
	calls []string
}

func (f *stubFetcher) FetchFeedXML(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if name == "broken" {
		return "", errors.New("status 503")
	}
	return rss, nil
}

func (f *stubFetcher) FetchHTMLPage(context.Context, string) (string, error) {
	return "", errors.New("not used")
}

func TestFeedWatcherRunOnce(t *testing.T) {
	f := &stubFetcher{}
	store := artifact.NewFileStore(t.TempDir())
	w := &FeedWatcher{
		Fetcher:    f,
		Store:      store,
		Subreddits: []string{"golang", " ", "broken", "golang"},
		Now:        func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
	w.runOnce(context.Background())

	if len(f.calls) != 2 {
		t.Fatalf("expected 2 fetches, got %v", f.calls)
	}
	mc, err := artifact.LoadMainContent(context.Background(), store, "feed_golang")
	if err != nil {
		t.Fatalf("LoadMainContent error: %v", err)
	}
	if mc.Subreddit != "golang" || len(mc.Posts) != 2 || mc.Posts[0].Title != "Newest" {
		t.Errorf("unexpected snapshot: %+v", mc)
	}
	if _, err := store.Load(context.Background(), "feed_broken"); !errors.Is(err, artifact.ErrNotFound) {
		t.Errorf("failed fetch should not be snapshotted, got %v", err)
	}
}

func TestFeedWatcherStopsOnCancel(t *testing.T) {
	f := &stubFetcher{}
	w := &FeedWatcher{Fetcher: f, Subreddits: []string{"golang"}, Interval: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewManager(w).Start(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestSnapshotName(t *testing.T) {
	tests := map[string]string{
		"golang": "feed_golang",
		"r/Go":   "feed_r_go",
		"https://www.reddit.com/r/books/.rss": "feed_https___www_reddit_com_r_books__rss",
	}
	for in, want := range tests {
		if got := snapshotName(in); got != want {
			t.Errorf("snapshotName(%q) = %q, want %q", in, got, want)
		}
	}
}
