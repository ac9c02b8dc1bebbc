package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "Inspect debug snapshots",
}

var artifactsShowBody bool

var artifactsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a stored snapshot's metadata (and body with --body)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store, closeStore, err := openArtifacts(ctx, GetConfig())
		if err != nil {
			return err
		}
		defer closeStore()
		if store == nil {
			return errors.New("debug store is disabled (debug.backend)")
		}
		doc, err := store.Load(ctx, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		keys := lo.Keys(doc.Meta)
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "%s: %s\n", k, doc.String(k))
		}
		fmt.Fprintf(out, "body bytes: %d\n", len(doc.Body))
		if artifactsShowBody {
			fmt.Fprintln(out)
			fmt.Fprintln(out, doc.Body)
		}
		return nil
	},
}

func init() {
	artifactsShowCmd.Flags().BoolVar(&artifactsShowBody, "body", false, "also print the body")
	artifactsCmd.AddCommand(artifactsShowCmd)
	rootCmd.AddCommand(artifactsCmd)
}
