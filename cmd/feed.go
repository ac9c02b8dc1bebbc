package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"reddit-overlay/internal/render"
	"reddit-overlay/internal/session"

	"github.com/spf13/cobra"
)

var (
	feedLimit int
	feedSave  bool
)

var feedCmd = &cobra.Command{
	Use:   "feed [subreddit|url]",
	Short: "Fetch a subreddit feed and list its posts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		source := cfg.Reddit.Subreddit
		if len(args) == 1 {
			source = args[0]
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		loader, closeStore, err := newLoader(ctx, cfg, "")
		if err != nil {
			return err
		}
		defer closeStore()

		raw, err := loader.LoadFeed(ctx, source)
		if err != nil {
			return err
		}
		s := session.New(session.WithCommentsBaseURL(cfg.Reddit.BaseURL))
		s.LoadFeed(raw)
		v := s.View()

		posts, hidden := v.Posts, 0
		if feedLimit > 0 && len(posts) > feedLimit {
			posts, hidden = posts[:feedLimit], len(posts)-feedLimit
		}
		out, err := render.Feed(render.FeedData{Source: source, Posts: posts, Hidden: hidden})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)

		if feedSave {
			at, err := loader.SaveSession(ctx, source, v, raw)
			if err != nil {
				slog.Warn("feed: snapshot not saved", "error", err)
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "saved to %s\n", at)
		}
		return nil
	},
}

func init() {
	feedCmd.Flags().IntVarP(&feedLimit, "limit", "n", 0, "show at most n posts (0 = all)")
	feedCmd.Flags().BoolVar(&feedSave, "save", false, "snapshot the session to the debug store")
	rootCmd.AddCommand(feedCmd)
}
