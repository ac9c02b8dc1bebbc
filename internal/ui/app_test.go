package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"reddit-overlay/internal/artifact"
	"reddit-overlay/internal/model"
	"reddit-overlay/internal/session"
)

const (
	threadLink = "https://www.reddit.com/r/books/comments/abc123/whats_good/"
	plainLink  = "https://example.com/article"
)

const twoEntryFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<entry><title>Thread post</title><link href="` + threadLink + `"/><author><name>/u/alice</name></author><content type="html">&lt;p&gt;Hello &lt;b&gt;there&lt;/b&gt;&lt;/p&gt;</content></entry>
<entry><title>Link post</title><link href="` + plainLink + `"/></entry>
</feed>`

// mockBackend records calls and answers from canned data.
type mockBackend struct {
	mu       sync.Mutex
	threads  []session.ThreadRequest
	saved    int
	feedErr  error
	snapshot artifact.MainContent
	snapErr  error
	pageErr  error
}

func (b *mockBackend) LoadFeed(_ context.Context, _ string) (string, error) {
	if b.feedErr != nil {
		return "", b.feedErr
	}
	return twoEntryFeed, nil
}

func (b *mockBackend) LoadThread(_ context.Context, req session.ThreadRequest, _ string) session.ThreadResult {
	b.mu.Lock()
	b.threads = append(b.threads, req)
	b.mu.Unlock()
	return session.ThreadResult{
		Request:  req,
		PageHTML: `<html><body><shreddit-post><div slot="text-body"><p>Full post text</p></div></shreddit-post><script>x()</script></body></html>`,
		PageErr:  b.pageErr,
		Comments: []model.Comment{{ID: 0, Author: "bob", ContentHTML: "comment for " + req.Link, PubDate: "1h"}},
	}
}

func (b *mockBackend) SaveSession(context.Context, string, session.View, string) (string, error) {
	b.mu.Lock()
	b.saved++
	b.mu.Unlock()
	return "debug/last_main_content.md", nil
}

func (b *mockBackend) LoadSnapshot(context.Context) (artifact.MainContent, error) {
	return b.snapshot, b.snapErr
}

// all executes cmd and returns every message it produced, expanding batches.
func all(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, all(c)...)
		}
		return out
	case nil:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

// run is all without spinner traffic.
func run(cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	for _, msg := range all(cmd) {
		switch msg.(type) {
		case spinner.TickMsg, spinnerStartMsg:
			continue
		}
		out = append(out, msg)
	}
	return out
}

func countTicks(msgs []tea.Msg) int {
	n := 0
	for _, msg := range msgs {
		if _, ok := msg.(spinner.TickMsg); ok {
			n++
		}
	}
	return n
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func loaded(t *testing.T, b *mockBackend) (Model, []tea.Msg) {
	t.Helper()
	m := New(context.Background(), b, session.New(), "books")
	msgs := run(m.Init())
	if len(msgs) != 1 {
		t.Fatalf("Init produced %d messages", len(msgs))
	}
	m, cmd := update(t, m, msgs[0])
	return m, run(cmd)
}

func TestAppInitNoSource(t *testing.T) {
	m := New(context.Background(), &mockBackend{}, session.New(), "")
	if cmd := m.Init(); cmd != nil {
		t.Error("Init should return nil without a source")
	}
	if !strings.Contains(m.View(), "No feed loaded") {
		t.Errorf("unexpected view:\n%s", m.View())
	}
}

func TestAppFeedLoadRequestsFirstThread(t *testing.T) {
	b := &mockBackend{}
	m, msgs := loaded(t, b)

	v := m.Session().View()
	if len(v.Posts) != 2 || v.CurrentIndex != 0 {
		t.Fatalf("unexpected session: %+v", v)
	}
	if len(b.threads) != 1 || b.threads[0].Link != threadLink {
		t.Fatalf("expected one thread request for the first post, got %+v", b.threads)
	}
	if b.saved != 1 {
		t.Errorf("expected the session to be saved once, got %d", b.saved)
	}

	for _, msg := range msgs {
		m, _ = update(t, m, msg)
	}
	v = m.Session().View()
	if v.State != session.CommentsLoaded || len(v.Comments) != 1 {
		t.Fatalf("comments not applied: %+v", v)
	}
	out := m.View()
	for _, want := range []string{"Thread post", "Hello there", "bob", "1/2"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestAppNavigationDropsStaleComments(t *testing.T) {
	b := &mockBackend{}
	m, msgs := loaded(t, b)

	m, cmd := update(t, m, keyPress("n"))
	if cmd != nil {
		t.Error("moving to a non-discussion post should not fetch")
	}
	if got := m.Session().View().CurrentIndex; got != 1 {
		t.Fatalf("index = %d, want 1", got)
	}

	// post 0's comments arrive after the move
	for _, msg := range msgs {
		m, _ = update(t, m, msg)
	}
	if v := m.Session().View(); len(v.Comments) != 0 {
		t.Errorf("stale comments applied: %+v", v.Comments)
	}

	m, _ = update(t, m, keyPress("right"))
	if got := m.Session().View().CurrentIndex; got != 1 {
		t.Errorf("next at the end should be a no-op, index = %d", got)
	}

	m, cmd = update(t, m, keyPress("k"))
	if got := m.Session().View().CurrentIndex; got != 0 {
		t.Fatalf("index = %d, want 0", got)
	}
	if len(run(cmd)) != 1 || len(b.threads) != 2 {
		t.Errorf("moving back should fetch the thread again, requests: %+v", b.threads)
	}
}

func TestAppViewStateToggles(t *testing.T) {
	m, _ := loaded(t, &mockBackend{})

	m, _ = update(t, m, keyPress("c"))
	m, _ = update(t, m, keyPress("v"))
	m, _ = update(t, m, keyPress("f"))
	vs := m.ViewState()
	if vs.ShowComments || vs.ShowContent || !vs.Fullscreen {
		t.Errorf("unexpected view state: %+v", vs)
	}
	if strings.Contains(m.View(), "reddit overlay") {
		t.Error("fullscreen should hide the header")
	}

	for i := 0; i < 10; i++ {
		m, _ = update(t, m, keyPress("+"))
	}
	if got := m.ViewState().Zoom; got != maxZoom {
		t.Errorf("zoom = %d, want %d", got, maxZoom)
	}
	for i := 0; i < 10; i++ {
		m, _ = update(t, m, keyPress("-"))
	}
	if got := m.ViewState().Zoom; got != minZoom {
		t.Errorf("zoom = %d, want %d", got, minZoom)
	}
}

func TestAppFeedError(t *testing.T) {
	b := &mockBackend{feedErr: errors.New("status 429")}
	m := New(context.Background(), b, session.New(), "books")
	msgs := run(m.Init())
	if len(msgs) != 1 {
		t.Fatalf("Init produced %d messages", len(msgs))
	}
	m, _ = update(t, m, msgs[0])
	if m.Session().View().State != session.Empty {
		t.Errorf("state = %s", m.Session().View().State)
	}
	if out := m.View(); !strings.Contains(out, "status 429") || !strings.Contains(out, "press r to retry") {
		t.Errorf("unexpected view:\n%s", out)
	}

	b.feedErr = nil
	m, cmd := update(t, m, keyPress("r"))
	msgs = run(cmd)
	if len(msgs) != 1 {
		t.Fatalf("reload produced %d messages", len(msgs))
	}
	m, _ = update(t, m, msgs[0])
	if n := len(m.Session().View().Posts); n != 2 {
		t.Errorf("posts after retry = %d", n)
	}
}

func TestAppLoadSnapshot(t *testing.T) {
	b := &mockBackend{snapshot: artifact.MainContent{
		Subreddit:    "golang",
		CurrentIndex: 1,
		Posts:        []model.Post{{Title: "one", Link: plainLink}, {Title: "two", Link: threadLink}},
	}}
	m := New(context.Background(), b, session.New(), "")
	m, cmd := update(t, m, keyPress("L"))
	msgs := run(cmd)
	if len(msgs) != 1 {
		t.Fatalf("L produced %d messages", len(msgs))
	}
	m, cmd = update(t, m, msgs[0])
	v := m.Session().View()
	if v.CurrentIndex != 1 || len(v.Posts) != 2 {
		t.Fatalf("snapshot not restored: %+v", v)
	}
	if len(run(cmd)) != 1 {
		t.Error("restoring onto a thread post should fetch its comments")
	}
	if !strings.Contains(m.View(), "golang") {
		t.Errorf("header should show the restored subreddit:\n%s", m.View())
	}

	b.snapErr = artifact.ErrNotFound
	m, cmd = update(t, m, keyPress("L"))
	m, _ = update(t, m, run(cmd)[0])
	if !strings.Contains(m.View(), "no saved session") {
		t.Errorf("missing notice:\n%s", m.View())
	}
}

func TestAppQuit(t *testing.T) {
	m := New(context.Background(), &mockBackend{}, session.New(), "")
	_, cmd := update(t, m, keyPress("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should produce a QuitMsg")
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText(`<div><p>Hello   <b>world</b></p><script>x()</script></div>`)
	if got != "Hello world" {
		t.Errorf("PlainText = %q", got)
	}
	if PlainText("  ") != "" {
		t.Error("blank input should give empty text")
	}
}

func TestTextWidth(t *testing.T) {
	vs := DefaultViewState()
	if got := vs.TextWidth(120); got != 80 {
		t.Errorf("width = %d, want 80", got)
	}
	vs.Zoom = 2
	if got := vs.TextWidth(120); got != 60 {
		t.Errorf("width = %d, want 60", got)
	}
	vs.Zoom = -2
	if got := vs.TextWidth(90); got != 86 {
		t.Errorf("width = %d, want 86", got)
	}
}

func TestAppRestoreOnStart(t *testing.T) {
	b := &mockBackend{snapshot: artifact.MainContent{Subreddit: "golang", Posts: []model.Post{{Title: "saved", Link: plainLink}}}}
	m := New(context.Background(), b, session.New(), "books").RestoreOnStart()
	msgs := run(m.Init())
	if len(msgs) != 1 {
		t.Fatalf("Init produced %d messages", len(msgs))
	}
	if _, ok := msgs[0].(SnapshotLoadedMsg); !ok {
		t.Fatalf("Init should load the snapshot, got %T", msgs[0])
	}
	m, _ = update(t, m, msgs[0])
	if p, _ := m.Session().Current(); p.Title != "saved" {
		t.Errorf("current post = %+v", p)
	}

	b = &mockBackend{snapErr: artifact.ErrNotFound}
	m = New(context.Background(), b, session.New(), "books").RestoreOnStart()
	m, cmd := update(t, m, run(m.Init())[0])
	msgs = run(cmd)
	if len(msgs) != 1 {
		t.Fatalf("fallback produced %d messages", len(msgs))
	}
	if _, ok := msgs[0].(FeedLoadedMsg); !ok {
		t.Fatalf("missing snapshot should fall back to the feed, got %T", msgs[0])
	}
}

func TestAppShowsDiscussionPage(t *testing.T) {
	m, msgs := loaded(t, &mockBackend{})
	for _, msg := range msgs {
		m, _ = update(t, m, msg)
	}
	if out := m.View(); !strings.Contains(out, "Full post text") || !strings.Contains(out, "Discussion page") {
		t.Errorf("page text missing:\n%s", out)
	}

	m, msgs = loaded(t, &mockBackend{pageErr: errors.New("status 503")})
	for _, msg := range msgs {
		m, _ = update(t, m, msg)
	}
	if err := m.Session().View().PageErr; err == nil {
		t.Fatal("page error not kept in the session")
	}
	if out := m.View(); !strings.Contains(out, "Could not load page: status 503") {
		t.Errorf("page error missing:\n%s", out)
	}
}

func TestPageText(t *testing.T) {
	got := PageText(`<html><body><nav>menu</nav><shreddit-post><div slot="text-body"><p>Body   here</p></div></shreddit-post></body></html>`)
	if got != "Body here" {
		t.Errorf("PageText = %q", got)
	}
	if got := PageText(`<html><body><p>only body</p></body></html>`); got != "only body" {
		t.Errorf("PageText fallback = %q", got)
	}
	long := "<p>" + strings.Repeat("a", maxPageRunes+10) + "</p>"
	if got := []rune(PageText(long)); len(got) != maxPageRunes+1 {
		t.Errorf("PageText length = %d", len(got))
	}
}

func TestAppSingleSpinnerLoop(t *testing.T) {
	m := New(context.Background(), &mockBackend{}, session.New(), "books")
	var feed, start tea.Msg
	for _, msg := range all(m.Init()) {
		switch msg.(type) {
		case FeedLoadedMsg:
			feed = msg
		case spinnerStartMsg:
			start = msg
		case spinner.TickMsg:
			t.Fatal("Init should not tick the spinner itself")
		}
	}
	if feed == nil || start == nil {
		t.Fatalf("Init should load the feed and start the spinner")
	}

	m, cmd := update(t, m, start)
	if got := countTicks(all(cmd)); got != 1 {
		t.Fatalf("spinner start produced %d ticks", got)
	}
	_, cmd = update(t, m, feed)
	if got := countTicks(all(cmd)); got != 0 {
		t.Errorf("feed load started a second spinner loop (%d ticks)", got)
	}
}
