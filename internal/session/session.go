// Package session holds the feed browsing state: the parsed posts, the cursor
// and the comments loaded for the current post.
//
// A Session is not safe for concurrent use. It is driven by one goroutine and
// every asynchronous result is applied back on that goroutine through
// ApplyThread, which discards results that no longer match the cursor.
package session

import (
	"errors"
	"log/slog"

	"reddit-overlay/internal/feed"
	"reddit-overlay/internal/model"
	"reddit-overlay/internal/reddit"
)

// ErrStaleResult is returned by ApplyThread for a result requested for a post
// that is no longer current.
var ErrStaleResult = errors.New("session: stale thread result")

// State is the lifecycle of a session.
type State int

const (
	Empty State = iota
	Loading
	Loaded
	CommentsLoading
	CommentsLoaded
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case CommentsLoading:
		return "comments-loading"
	case CommentsLoaded:
		return "comments-loaded"
	}
	return "unknown"
}

// CommentsStatus tracks the comments sub-fetch. It never blocks navigation.
type CommentsStatus int

const (
	CommentsIdle CommentsStatus = iota
	CommentsFetching
	CommentsFailed
)

func (s CommentsStatus) String() string {
	switch s {
	case CommentsIdle:
		return "idle"
	case CommentsFetching:
		return "loading"
	case CommentsFailed:
		return "error"
	}
	return "unknown"
}

// ThreadRequest asks the caller to fetch the page and comments of the post at
// Index. Seq identifies the cursor position it was issued for.
type ThreadRequest struct {
	Seq         uint64
	Index       int
	Link        string
	CommentsURL string
}

// ThreadResult is the outcome of performing a ThreadRequest.
type ThreadResult struct {
	Request    ThreadRequest
	PageHTML   string
	PageErr    error
	Comments   []model.Comment
	Candidates int
	Err        error
}

// View is a read-only observation of the session. Slices are shared with the
// session and must not be modified.
type View struct {
	State          State
	Posts          []model.Post
	CurrentIndex   int
	Comments       []model.Comment
	CommentsStatus CommentsStatus
	CommentsErr    error
	// PageHTML is the rendered discussion page of the current post.
	PageHTML       string
	PageErr        error
	Err            error
}

type Option func(*Session)

// WithCommentsBaseURL sets the site root used to build comments partial URLs.
func WithCommentsBaseURL(u string) Option {
	return func(s *Session) { s.baseURL = u }
}

type Session struct {
	baseURL string

	state          State
	loaded         bool
	posts          []model.Post
	index          int
	comments       []model.Comment
	commentsStatus CommentsStatus
	commentsErr    error
	pageHTML       string
	pageErr        error
	err            error
	seq            uint64
}

func New(opts ...Option) *Session {
	s := &Session{baseURL: reddit.DefaultBaseURL}
	for _, o := range opts {
		o(s)
	}
	return s
}

// BeginLoad marks a feed fetch as in flight. Outstanding thread requests
// become stale; posts already loaded stay browsable meanwhile.
func (s *Session) BeginLoad() {
	s.seq++
	s.state = Loading
	s.err = nil
	if s.commentsStatus == CommentsFetching {
		s.commentsStatus = CommentsIdle
	}
}

// FailLoad records a feed fetch failure. Posts already loaded stay browsable.
func (s *Session) FailLoad(err error) {
	s.err = err
	if !s.loaded {
		s.state = Empty
		return
	}
	s.state = Loaded
	switch {
	case s.commentsStatus == CommentsFetching:
		s.state = CommentsLoading
	case s.comments != nil:
		s.state = CommentsLoaded
	}
}

// LoadFeed replaces the posts with those parsed from raw and moves the cursor
// to the first post. Malformed input yields an empty, loaded session.
func (s *Session) LoadFeed(raw string) *ThreadRequest {
	posts, err := feed.Parse(raw)
	if err != nil {
		slog.Warn("session: feed parse failed", "error", err)
	}
	return s.Restore(posts, 0)
}

// Restore loads an already parsed set of posts, such as a saved snapshot.
// Out of range indexes fall back to 0.
func (s *Session) Restore(posts []model.Post, index int) *ThreadRequest {
	if posts == nil {
		posts = []model.Post{}
	}
	s.posts = posts
	s.loaded = true
	s.err = nil
	s.state = Loaded
	if index < 0 || index >= len(posts) {
		index = 0
	}
	return s.moveTo(index)
}

// SetCurrentIndex moves the cursor to i and clears the comments. It returns a
// request when the new post links to a discussion thread. Out of range
// indexes are ignored.
func (s *Session) SetCurrentIndex(i int) *ThreadRequest {
	if !s.loaded || i < 0 || i >= len(s.posts) {
		return nil
	}
	return s.moveTo(i)
}

// Next moves to the following post; it is a no-op on the last one.
func (s *Session) Next() *ThreadRequest {
	return s.SetCurrentIndex(s.index + 1)
}

// Previous moves to the preceding post; it is a no-op on the first one.
func (s *Session) Previous() *ThreadRequest {
	return s.SetCurrentIndex(s.index - 1)
}

// Refresh requests the current post's thread again.
func (s *Session) Refresh() *ThreadRequest {
	return s.SetCurrentIndex(s.index)
}

func (s *Session) moveTo(i int) *ThreadRequest {
	s.seq++
	s.index = i
	s.comments = nil
	s.commentsErr = nil
	s.commentsStatus = CommentsIdle
	s.pageHTML = ""
	s.pageErr = nil
	s.setState(Loaded)
	if i >= len(s.posts) {
		return nil
	}
	link := s.posts[i].Link
	if !reddit.IsDiscussionURL(link) {
		return nil
	}
	cu, _ := reddit.CommentsURLFor(s.baseURL, link)
	s.setState(CommentsLoading)
	s.commentsStatus = CommentsFetching
	return &ThreadRequest{Seq: s.seq, Index: i, Link: link, CommentsURL: cu}
}

// ApplyThread stores the page and comments of a finished request. Results for
// a post that is no longer current are rejected with ErrStaleResult and leave
// the session untouched.
func (s *Session) ApplyThread(res ThreadResult) error {
	req := res.Request
	if s.commentsStatus != CommentsFetching || req.Seq != s.seq || req.Index != s.index {
		return ErrStaleResult
	}
	s.pageHTML, s.pageErr = res.PageHTML, res.PageErr
	if res.Err != nil {
		s.setState(Loaded)
		s.commentsStatus = CommentsFailed
		s.commentsErr = res.Err
		return nil
	}
	s.comments = res.Comments
	if s.comments == nil {
		s.comments = []model.Comment{}
	}
	s.setState(CommentsLoaded)
	s.commentsStatus = CommentsIdle
	return nil
}

// setState records comment progress without hiding an in-flight feed reload.
func (s *Session) setState(st State) {
	if s.state != Loading {
		s.state = st
	}
}

// Current returns the post under the cursor.
func (s *Session) Current() (model.Post, bool) {
	if s.index < 0 || s.index >= len(s.posts) {
		return model.Post{}, false
	}
	return s.posts[s.index], true
}

func (s *Session) View() View {
	return View{
		State:          s.state,
		Posts:          s.posts,
		CurrentIndex:   s.index,
		Comments:       s.comments,
		CommentsStatus: s.commentsStatus,
		CommentsErr:    s.commentsErr,
		PageHTML:       s.pageHTML,
		PageErr:        s.pageErr,
		Err:            s.err,
	}
}
