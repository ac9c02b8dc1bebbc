package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"reddit-overlay/worker"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the configured subreddits and snapshot each feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store, closeStore, err := openArtifacts(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		watcher := &worker.FeedWatcher{
			Fetcher:    newRedditClient(cfg),
			Store:      store,
			Subreddits: cfg.Watch.Subreddits,
			Interval:   cfg.Watch.IntervalDuration(),
		}
		slog.Info("starting feed watcher", "subreddits", watcher.Subreddits, "interval", watcher.Interval)
		mgr := worker.NewManager(watcher)

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			log.Printf("received signal: %s, shutting down", s)
			cancel()
		}()

		return mgr.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
