package cmd

import "github.com/spf13/cobra"

// redisCmd groups utilities for the Redis debug backend.
var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis utilities",
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
