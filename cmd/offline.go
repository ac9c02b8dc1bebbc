package cmd

import (
	"fmt"
	"os"

	"reddit-overlay/internal/feed"
	"reddit-overlay/internal/model"
	"reddit-overlay/internal/render"

	"github.com/spf13/cobra"
)

var extractDiscovery string

var parseFeedCmd = &cobra.Command{
	Use:   "parse-feed <file>",
	Short: "Debug: parse a saved feed file and list its posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		format, derr := feed.Detect(string(b))
		posts, err := feed.Parse(string(b))
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "parse error: %v\n", err)
		}
		if derr == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "format: %s, posts: %d\n", format, len(posts))
		}
		out, err := render.Feed(render.FeedData{Source: args[0], Posts: posts})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <html-file> <source-url>",
	Short: "Debug: extract comments from a saved comments partial",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		ex, err := newExtractor(GetConfig(), extractDiscovery)
		if err != nil {
			return err
		}
		res := ex.Extract(string(b), args[1])
		fmt.Fprintf(cmd.ErrOrStderr(), "stage: %s, candidates: %d, kept: %d, dropped: %d\n",
			res.Stage, res.Candidates, len(res.Comments), res.Dropped())
		for _, e := range res.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %v\n", e)
		}
		post := model.Post{Title: args[0], Link: args[1]}
		out, err := render.Thread(render.ThreadData{Post: &post, Comments: res.Comments, Candidates: res.Candidates})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractDiscovery, "discovery", "", "candidate discovery: union or cascade (default from config)")
	rootCmd.AddCommand(parseFeedCmd, extractCmd)
}
