package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"reddit-overlay/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// Summarizer condenses a discussion thread into a short digest.
type Summarizer interface {
	// SummarizeThread describes what the post is about and what commenters said, in the given language.
	SummarizeThread(ctx context.Context, post model.Post, comments []model.Comment, language string) (string, error)
}

// OpenAIClient implements Summarizer using OpenAI Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

const (
	maxPostRunes    = 1500
	maxComments     = 30
	maxCommentRunes = 400
)

func NewOpenAI(cfg Config) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai: model must be specified")
	}
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	return &OpenAIClient{client: c, model: cfg.Model}, nil
}

func (o *OpenAIClient) SummarizeThread(ctx context.Context, post model.Post, comments []model.Comment, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	sys := fmt.Sprintf(`
		You summarize Reddit discussions. Write in %s.
		Return one short paragraph about the post, then up to five bullet points with the main opinions from the comments.
		Plain text only, no links, no usernames.
		`, langOrDefault(language))
	out, err := o.create(ctx, sys, threadPrompt(post, comments))
	if err != nil {
		slog.Error("openai: summarize thread error", "err", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func threadPrompt(post model.Post, comments []model.Comment) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Title: %s\n", post.Title)
	if body := strings.TrimSpace(post.ContentHTML); body != "" && body != model.NoContent {
		fmt.Fprintf(b, "Post: %s\n", truncate(body, maxPostRunes))
	}
	b.WriteString("Comments:\n")
	n := 0
	for _, c := range comments {
		if c.ContentHTML == model.NoContent {
			continue
		}
		if n >= maxComments {
			break
		}
		fmt.Fprintf(b, "- %s\n", truncate(c.ContentHTML, maxCommentRunes))
		n++
	}
	if n == 0 {
		b.WriteString("(none)\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (o *OpenAIClient) create(ctx context.Context, system, user string) (string, error) {
	// Default timeout guard, if caller didn't set one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func langOrDefault(lang string) string {
	l := strings.TrimSpace(lang)
	if l == "" {
		return "English"
	}
	return l
}
