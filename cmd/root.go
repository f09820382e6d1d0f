// Package cmd defines the CLI surface: serve, migrate and sweep.
package cmd

import (
    "os"

    "github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
    Use:   "poker-signup",
    Short: "Poker game signup service",
    Long:  "API server for poker game signups: accounts, venues, games and seat lists.",
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
    if err := rootCmd.Execute(); err != nil {
        os.Exit(1)
    }
}
