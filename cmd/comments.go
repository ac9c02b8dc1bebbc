package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"reddit-overlay/internal/model"
	"reddit-overlay/internal/reddit"
	"reddit-overlay/internal/render"
	"reddit-overlay/internal/session"

	"github.com/spf13/cobra"
)

var (
	commentsDiscovery string
	commentsSummarize bool
)

var commentsCmd = &cobra.Command{
	Use:   "comments <post-url>",
	Short: "Fetch and extract the comments of a discussion thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		link := args[0]
		thread, ok := reddit.ParseThread(link)
		if !ok {
			return fmt.Errorf("not a discussion thread url: %s", link)
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		loader, closeStore, err := newLoader(ctx, cfg, commentsDiscovery)
		if err != nil {
			return err
		}
		defer closeStore()

		req := session.ThreadRequest{Link: link, CommentsURL: reddit.CommentsURL(cfg.Reddit.BaseURL, thread)}
		title := fmt.Sprintf("r/%s · %s", thread.Subreddit, thread.PostID)
		res := loader.LoadThread(ctx, req, title)
		if res.Err != nil {
			return res.Err
		}

		post := model.Post{Title: title, Link: link}
		data := render.ThreadData{Post: &post, Comments: res.Comments, Candidates: res.Candidates}
		if commentsSummarize {
			sum, err := newSummarizer(cfg)
			switch {
			case err != nil:
				return err
			case sum == nil:
				slog.Warn("comments: --summarize needs openai.api_key")
			default:
				text, err := sum.SummarizeThread(ctx, post, res.Comments, cfg.OpenAI.Language)
				if err != nil {
					slog.Warn("comments: summary failed", "error", err)
				}
				data.Summary = text
			}
		}
		out, err := render.Thread(data)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	commentsCmd.Flags().StringVar(&commentsDiscovery, "discovery", "", "candidate discovery: union or cascade (default from config)")
	commentsCmd.Flags().BoolVar(&commentsSummarize, "summarize", false, "add an AI summary of the thread")
	rootCmd.AddCommand(commentsCmd)
}
