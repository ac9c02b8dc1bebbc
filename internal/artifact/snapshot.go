package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"reddit-overlay/internal/model"
)

// Well-known artifact names.
const (
	MainContentName = "last_main_content"
	RedditViewName  = "last_reddit_view"
)

// MainContent is a snapshot of a loaded feed session.
type MainContent struct {
	Subreddit    string       `json:"subreddit"`
	CurrentIndex int          `json:"current_index"`
	Posts        []model.Post `json:"posts"`
	FeedXML      string       `json:"rss_data,omitempty"`
}

// RedditView is a snapshot of the last fetched post page.
type RedditView struct {
	URL       string
	PostTitle string
	HTML      string
}

// SaveMainContent stores mc under name (MainContentName when empty).
func SaveMainContent(ctx context.Context, s Store, name string, mc MainContent, now time.Time) (string, error) {
	if s == nil {
		return "", ErrUnavailable
	}
	if name == "" {
		name = MainContentName
	}
	body, err := json.MarshalIndent(mc, "", "  ")
	if err != nil {
		return "", err
	}
	return s.Save(ctx, name, Document{
		Meta: map[string]any{
			"kind":      "main_content",
			"saved_at":  now.UTC().Format(time.RFC3339),
			"subreddit": mc.Subreddit,
			"posts":     len(mc.Posts),
		},
		Body: string(body),
	})
}

// LoadMainContent restores a snapshot written by SaveMainContent.
func LoadMainContent(ctx context.Context, s Store, name string) (MainContent, error) {
	var mc MainContent
	if s == nil {
		return mc, ErrUnavailable
	}
	if name == "" {
		name = MainContentName
	}
	d, err := s.Load(ctx, name)
	if err != nil {
		return mc, err
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(d.Body)), &mc); err != nil {
		return mc, fmt.Errorf("artifact: decode %s: %w", name, err)
	}
	if mc.CurrentIndex < 0 || mc.CurrentIndex >= len(mc.Posts) {
		mc.CurrentIndex = 0
	}
	return mc, nil
}

// SaveRedditView stores the post page snapshot.
func SaveRedditView(ctx context.Context, s Store, v RedditView, now time.Time) (string, error) {
	if s == nil {
		return "", ErrUnavailable
	}
	return s.Save(ctx, RedditViewName, Document{
		Meta: map[string]any{
			"kind":           "reddit_view",
			"saved_at":       now.UTC().Format(time.RFC3339),
			"post_title":     v.PostTitle,
			"url":            v.URL,
			"content_length": len(v.HTML),
		},
		Body: v.HTML,
	})
}

// LoadRedditView restores the post page snapshot.
func LoadRedditView(ctx context.Context, s Store) (RedditView, error) {
	if s == nil {
		return RedditView{}, ErrUnavailable
	}
	d, err := s.Load(ctx, RedditViewName)
	if err != nil {
		return RedditView{}, err
	}
	return RedditView{
		URL:       d.String("url"),
		PostTitle: d.String("post_title"),
		HTML:      d.Body,
	}, nil
}
