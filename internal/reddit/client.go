package reddit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// DefaultUserAgent identifies the overlay to the site.
const DefaultUserAgent = "reddit-overlay-app/1.0"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 16 << 20

// HTTPClient is the subset of *http.Client used by Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchError reports a failed feed or page fetch. Status is 0 when the request
// never produced a response.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("reddit: fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("reddit: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the transport used for requests.
func WithHTTPClient(hc HTTPClient) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithBaseURL overrides the site root used for subreddit names.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if strings.TrimSpace(u) != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// WithRetries sets how many times a failed request is retried with
// exponential backoff. Zero means a single attempt.
func WithRetries(n int) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithRateLimit paces outgoing requests. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// Client fetches subreddit feeds and HTML pages.
type Client struct {
	http      HTTPClient
	baseURL   string
	userAgent string
	retries   int
	limiter   *rate.Limiter
}

// NewClient creates a client with a 15s timeout, one attempt per request and
// at most one request per second.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 15 * time.Second},
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		limiter:   rate.NewLimiter(rate.Limit(1), 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the site root the client resolves names against.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchFeedXML returns the raw feed for a subreddit name or explicit feed URL.
func (c *Client) FetchFeedXML(ctx context.Context, subredditOrURL string) (string, error) {
	if strings.TrimSpace(subredditOrURL) == "" {
		return "", errors.New("reddit: empty subreddit")
	}
	u := FeedURL(c.baseURL, subredditOrURL)
	slog.Info("reddit: fetching feed", "url", u)
	return c.get(ctx, u, "application/atom+xml, application/rss+xml, application/xml;q=0.9, */*;q=0.8")
}

// FetchHTMLPage returns the raw HTML served at u.
func (c *Client) FetchHTMLPage(ctx context.Context, u string) (string, error) {
	slog.Debug("reddit: fetching page", "url", u)
	return c.get(ctx, u, "text/html, */*;q=0.8")
}

func (c *Client) get(ctx context.Context, u, accept string) (string, error) {
	var body string
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(&FetchError{URL: u, Err: err})
		}
		b, err := c.once(ctx, u, accept)
		if err != nil {
			var fe *FetchError
			if errors.As(err, &fe) && fe.Status >= 400 && fe.Status < 500 && fe.Status != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.retries)), ctx)
	notify := func(err error, d time.Duration) {
		slog.Warn("reddit: retrying request", "url", u, "error", err, "after", d)
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return "", err
	}
	return body, nil
}

func (c *Client) once(ctx context.Context, u, accept string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", &FetchError{URL: u, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &FetchError{URL: u, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{URL: u, Status: resp.StatusCode}
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &FetchError{URL: u, Err: err}
	}
	return string(b), nil
}
