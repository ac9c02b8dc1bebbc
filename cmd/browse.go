package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"reddit-overlay/internal/session"
	"reddit-overlay/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var browseRestore bool

var browseCmd = &cobra.Command{
	Use:   "browse [subreddit|url]",
	Short: "Browse a subreddit feed and its comments in a terminal UI",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		source := cfg.Reddit.Subreddit
		if len(args) == 1 {
			source = args[0]
		}

		closeLog, err := logToFile(cfg.App, cfg.Debug.Dir)
		if err != nil {
			return err
		}
		defer closeLog()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		loader, closeStore, err := newLoader(ctx, cfg, "")
		if err != nil {
			return err
		}
		defer closeStore()

		sess := session.New(session.WithCommentsBaseURL(cfg.Reddit.BaseURL))
		model := ui.New(ctx, loader, sess, source)
		if browseRestore {
			model = model.RestoreOnStart()
		}
		slog.Info("browse: starting", "source", source)
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("run ui: %w", err)
		}
		return nil
	},
}

func init() {
	browseCmd.Flags().BoolVar(&browseRestore, "restore", false, "start from the last saved session")
	rootCmd.AddCommand(browseCmd)
}
