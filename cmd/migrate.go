package cmd

import (
    "github.com/spf13/cobra"

    "github.com/fullhouse/poker-signup/internal/config"
    "github.com/fullhouse/poker-signup/internal/database"
)

var migrateCmd = &cobra.Command{
    Use:   "migrate",
    Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
    Use:   "up",
    Short: "Apply all pending migrations",
    RunE: func(cmd *cobra.Command, args []string) error {
        cfg := config.Load()
        return database.MigrateUp(cfg.MigrationsPath,
            database.MigrateURL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
    },
}

var migrateDownCmd = &cobra.Command{
    Use:   "down",
    Short: "Roll back the most recent migration",
    RunE: func(cmd *cobra.Command, args []string) error {
        cfg := config.Load()
        return database.MigrateDown(cfg.MigrationsPath,
            database.MigrateURL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
    },
}

func init() {
    rootCmd.AddCommand(migrateCmd)
    migrateCmd.AddCommand(migrateUpCmd)
    migrateCmd.AddCommand(migrateDownCmd)
}
