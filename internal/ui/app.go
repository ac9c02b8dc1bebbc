// Package ui is the terminal front end: a Bubble Tea model that drives a
// session.Session and renders the current post with its comments.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"reddit-overlay/internal/artifact"
	"reddit-overlay/internal/model"
	"reddit-overlay/internal/session"
)

// Backend performs the blocking work behind the UI. *session.ThreadLoader
// implements it.
type Backend interface {
	LoadFeed(ctx context.Context, subredditOrURL string) (string, error)
	LoadThread(ctx context.Context, req session.ThreadRequest, title string) session.ThreadResult
	SaveSession(ctx context.Context, subreddit string, v session.View, feedXML string) (string, error)
	LoadSnapshot(ctx context.Context) (artifact.MainContent, error)
}

var _ Backend = (*session.ThreadLoader)(nil)

// Model is the root Bubble Tea model
type Model struct {
	ctx     context.Context
	backend Backend
	sess    *session.Session
	view    ViewState
	keys    keyMap
	spinner spinner.Model
	ticking bool
	restore bool

	source  string
	feedXML string
	notice  string
	width   int
	height  int
}

// New creates a model that shows source (a subreddit name or feed URL).
func New(ctx context.Context, backend Backend, sess *session.Session, source string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return Model{
		ctx:     ctx,
		backend: backend,
		sess:    sess,
		view:    DefaultViewState(),
		keys:    defaultKeys(),
		spinner: s,
		source:  source,
	}
}

// RestoreOnStart makes Init load the last saved session instead of the feed.
// The feed is loaded when no snapshot exists.
func (m Model) RestoreOnStart() Model {
	m.restore = true
	return m
}

// ViewState returns the current presentation toggles.
func (m Model) ViewState() ViewState { return m.view }

// Session returns the underlying session.
func (m Model) Session() *session.Session { return m.sess }

func (m Model) Init() tea.Cmd {
	if m.restore {
		return m.loadSnapshot()
	}
	if m.source == "" {
		return nil
	}
	m.sess.BeginLoad()
	return tea.Batch(m.loadFeed(m.source), func() tea.Msg { return spinnerStartMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinnerStartMsg:
		cmd := m.startSpinner()
		return m, cmd

	case spinner.TickMsg:
		if !m.busy() {
			m.ticking = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.ticking = true
		return m, cmd

	case FeedLoadedMsg:
		if msg.Err != nil {
			slog.Error("ui: feed load failed", "source", msg.Source, "error", msg.Err)
			m.sess.FailLoad(msg.Err)
			return m, nil
		}
		m.source = msg.Source
		m.feedXML = msg.Raw
		m.notice = ""
		req := m.sess.LoadFeed(msg.Raw)
		slog.Info("ui: feed loaded", "source", msg.Source, "posts", len(m.sess.View().Posts))
		cmd := tea.Batch(m.loadThread(req), m.saveSession(), m.startSpinner())
		return m, cmd

	case ThreadLoadedMsg:
		if err := m.sess.ApplyThread(msg.Result); err != nil {
			if errors.Is(err, session.ErrStaleResult) {
				slog.Debug("ui: stale thread result dropped", "index", msg.Result.Request.Index)
			}
			return m, nil
		}
		if msg.Result.Err != nil {
			slog.Warn("ui: comments failed", "url", msg.Result.Request.Link, "error", msg.Result.Err)
		}
		if msg.Result.PageErr != nil {
			slog.Warn("ui: page failed", "url", msg.Result.Request.Link, "error", msg.Result.PageErr)
		}
		return m, nil

	case SnapshotLoadedMsg:
		if msg.Err != nil {
			m.notice = "no saved session: " + msg.Err.Error()
			if m.restore && m.source != "" {
				m.restore = false
				m.sess.BeginLoad()
				cmd := tea.Batch(m.loadFeed(m.source), m.startSpinner())
				return m, cmd
			}
			return m, nil
		}
		m.restore = false
		m.source = msg.Snapshot.Subreddit
		m.feedXML = msg.Snapshot.FeedXML
		m.notice = "restored last session"
		req := m.sess.Restore(msg.Snapshot.Posts, msg.Snapshot.CurrentIndex)
		cmd := tea.Batch(m.loadThread(req), m.startSpinner())
		return m, cmd

	case SessionSavedMsg:
		if msg.Err != nil {
			slog.Debug("ui: session snapshot skipped", "error", msg.Err)
		} else {
			slog.Debug("ui: session saved", "at", msg.At)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		cmd = m.follow(m.sess.Next())

	case key.Matches(msg, m.keys.Previous):
		cmd = m.follow(m.sess.Previous())

	case key.Matches(msg, m.keys.Refetch):
		cmd = m.follow(m.sess.Refresh())

	case key.Matches(msg, m.keys.Reload):
		if m.source == "" {
			return m, nil
		}
		m.sess.BeginLoad()
		cmd = tea.Batch(m.loadFeed(m.source), m.startSpinner())

	case key.Matches(msg, m.keys.LoadSnapshot):
		cmd = m.loadSnapshot()

	case key.Matches(msg, m.keys.ToggleComments):
		m.view.ShowComments = !m.view.ShowComments

	case key.Matches(msg, m.keys.ToggleContent):
		m.view.ShowContent = !m.view.ShowContent

	case key.Matches(msg, m.keys.Fullscreen):
		m.view.Fullscreen = !m.view.Fullscreen

	case key.Matches(msg, m.keys.ZoomIn):
		m.view.ZoomIn()

	case key.Matches(msg, m.keys.ZoomOut):
		m.view.ZoomOut()
	}
	return m, cmd
}

func (m *Model) follow(req *session.ThreadRequest) tea.Cmd {
	m.notice = ""
	if req == nil {
		return nil
	}
	return tea.Batch(m.loadThread(req), m.startSpinner())
}

func (m Model) busy() bool {
	v := m.sess.View()
	return v.State == session.Loading || v.CommentsStatus == session.CommentsFetching
}

func (m *Model) startSpinner() tea.Cmd {
	if m.ticking || !m.busy() {
		return nil
	}
	m.ticking = true
	return m.spinner.Tick
}

// Commands

func (m Model) loadFeed(source string) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		raw, err := backend.LoadFeed(ctx, source)
		return FeedLoadedMsg{Source: source, Raw: raw, Err: err}
	}
}

func (m Model) loadThread(req *session.ThreadRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	title := model.NoTitle
	if p, ok := m.sess.Current(); ok {
		title = p.Title
	}
	ctx, backend, r := m.ctx, m.backend, *req
	return func() tea.Msg {
		return ThreadLoadedMsg{Result: backend.LoadThread(ctx, r, title)}
	}
}

func (m Model) saveSession() tea.Cmd {
	ctx, backend, source, raw, v := m.ctx, m.backend, m.source, m.feedXML, m.sess.View()
	return func() tea.Msg {
		at, err := backend.SaveSession(ctx, source, v, raw)
		return SessionSavedMsg{At: at, Err: err}
	}
}

func (m Model) loadSnapshot() tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		mc, err := backend.LoadSnapshot(ctx)
		return SnapshotLoadedMsg{Snapshot: mc, Err: err}
	}
}

// View renders the UI
func (m Model) View() string {
	v := m.sess.View()
	width := m.view.TextWidth(m.width)
	var sections []string

	if !m.view.Fullscreen {
		sections = append(sections, headerStyle.Render(m.headerText(v)))
	}

	post, ok := m.sess.Current()
	switch {
	case v.State == session.Empty && v.Err != nil:
		sections = append(sections, errorStyle.Render("Could not load feed: "+v.Err.Error()), metaStyle.Render("press r to retry"))
	case v.State == session.Empty:
		sections = append(sections, metaStyle.Render("No feed loaded."))
	case v.State == session.Loading && len(v.Posts) == 0:
		sections = append(sections, m.spinner.View()+" Loading feed…")
	case !ok:
		sections = append(sections, metaStyle.Render("This feed has no posts."))
	default:
		sections = append(sections, m.renderPost(post, v, width)...)
		if m.view.ShowComments && !m.view.Fullscreen {
			sections = append(sections, m.renderComments(v, width)...)
		}
	}

	if !m.view.Fullscreen {
		sections = append(sections, statusBarStyle.Render(m.statusText(v)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerText(v session.View) string {
	text := "reddit overlay"
	if m.source != "" {
		text += "  ·  " + m.source
	}
	if n := len(v.Posts); n > 0 {
		text += fmt.Sprintf("  ·  %d/%d", v.CurrentIndex+1, n)
	}
	if v.State == session.Loading {
		text += "  ·  " + m.spinner.View() + " refreshing"
	}
	return text
}

func (m Model) renderPost(p model.Post, v session.View, width int) []string {
	wrap := lipgloss.NewStyle().Width(width)
	out := []string{
		titleStyle.Inherit(wrap).Render(p.Title),
		metaStyle.Render(fmt.Sprintf("%s · %s", p.Author, p.PubDate)),
		metaStyle.Render(p.Link),
	}
	if p.ImageURL != "" {
		out = append(out, metaStyle.Render("image: "+p.ImageURL))
	}
	if m.view.ShowContent {
		out = append(out, "", wrap.Render(PlainText(p.ContentHTML)))
	}
	return append(out, m.renderPage(v, width)...)
}

func (m Model) renderPage(v session.View, width int) []string {
	switch {
	case v.PageErr != nil:
		return []string{sectionStyle.Render("Discussion page"), errorStyle.Render("Could not load page: " + v.PageErr.Error())}
	case v.PageHTML != "":
		text := PageText(v.PageHTML)
		if text == "" || !m.view.ShowContent {
			return nil
		}
		return []string{sectionStyle.Render("Discussion page"), lipgloss.NewStyle().Width(width).Render(text)}
	}
	return nil
}

func (m Model) renderComments(v session.View, width int) []string {
	out := []string{sectionStyle.Render(fmt.Sprintf("Comments (%d)", len(v.Comments)))}
	switch {
	case v.CommentsStatus == session.CommentsFetching:
		return append(out, m.spinner.View()+" Loading comments…")
	case v.CommentsStatus == session.CommentsFailed:
		return append(out, errorStyle.Render("Could not load comments: "+v.CommentsErr.Error()), metaStyle.Render("press R to retry"))
	case len(v.Comments) == 0:
		return append(out, metaStyle.Render("No comments."))
	}
	body := lipgloss.NewStyle().Width(width).PaddingLeft(2)
	for _, c := range v.Comments {
		out = append(out,
			authorStyle.Render(c.Author)+" "+metaStyle.Render(c.PubDate),
			body.Render(c.ContentHTML),
		)
	}
	return out
}

func (m Model) statusText(v session.View) string {
	if m.notice != "" {
		return m.notice
	}
	if v.Err != nil && v.State != session.Empty {
		return "reload failed: " + v.Err.Error()
	}
	parts := make([]string, 0, len(m.keys.help()))
	for _, b := range m.keys.help() {
		h := b.Help()
		parts = append(parts, fmt.Sprintf("[%s] %s", h.Key, h.Desc))
	}
	return strings.Join(parts, "  ")
}

// PlainText flattens an HTML fragment to whitespace-collapsed text.
func PlainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
