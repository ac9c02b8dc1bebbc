// Package reddit knows how subreddit feeds and discussion threads are addressed
// and fetches them over HTTP.
package reddit

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultBaseURL is the site root used to build feed and comments URLs.
const DefaultBaseURL = "https://www.reddit.com"

var threadRe = regexp.MustCompile(`reddit\.com/r/(\w+)/comments/(\w+)`)

// Thread identifies a discussion thread.
type Thread struct {
	Subreddit string
	PostID    string
}

// Fullname returns the t3_ fullname of the thread's link.
func (t Thread) Fullname() string {
	return "t3_" + t.PostID
}

// IsDiscussionURL reports whether u looks like a link to a discussion thread.
// It is a loose substring check; it only gates an optional fetch.
func IsDiscussionURL(u string) bool {
	return strings.Contains(u, "reddit.com/r/") && strings.Contains(u, "/comments/")
}

// ParseThread extracts the subreddit and post id from a thread URL.
func ParseThread(u string) (Thread, bool) {
	m := threadRe.FindStringSubmatch(u)
	if m == nil {
		return Thread{}, false
	}
	return Thread{Subreddit: m[1], PostID: m[2]}, true
}

// CommentsURL builds the URL of the server-rendered comments partial for t.
func CommentsURL(baseURL string, t Thread) string {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	q := url.Values{}
	q.Set("render-mode", "partial")
	q.Set("force_seo", "1")
	q.Set("seeker-session", "true")
	q.Set("referer", "https://www.google.com/")
	return fmt.Sprintf("%s/svc/shreddit/comments/r/%s/%s?%s",
		strings.TrimRight(baseURL, "/"), url.PathEscape(t.Subreddit), t.Fullname(), q.Encode())
}

// CommentsURLFor is CommentsURL for a post link; ok is false when the link is
// not a recognisable thread URL.
func CommentsURLFor(baseURL, postURL string) (string, bool) {
	t, ok := ParseThread(postURL)
	if !ok {
		return "", false
	}
	return CommentsURL(baseURL, t), true
}

// FeedURL resolves a subreddit name ("golang", "r/golang") or an explicit feed
// URL to the URL that should be fetched.
func FeedURL(baseURL, subredditOrURL string) string {
	s := strings.TrimSpace(subredditOrURL)
	if strings.Contains(s, "://") {
		return s
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "/"), "r/")
	s = strings.Trim(s, "/")
	return fmt.Sprintf("%s/r/%s/.rss", strings.TrimRight(baseURL, "/"), url.PathEscape(s))
}
