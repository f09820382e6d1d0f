package cmd

import (
    "context"
    "log"
    "time"

    "github.com/spf13/cobra"

    "github.com/fullhouse/poker-signup/internal/config"
    "github.com/fullhouse/poker-signup/internal/database"
    "github.com/fullhouse/poker-signup/internal/repository"
)

// sweepCmd deletes password-reset tokens that can never validate again.
// Intended for cron; the request path works correctly without it since
// expiry is checked at validation time.
var sweepCmd = &cobra.Command{
    Use:   "sweep",
    Short: "Delete expired and consumed password reset tokens",
    RunE: func(cmd *cobra.Command, args []string) error {
        cfg := config.Load()
        db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
        if err != nil {
            return err
        }
        defer func() { _ = db.Close() }()

        ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
        defer cancel()

        n, err := repository.NewResetTokenRepo(db).SweepExpired(ctx)
        if err != nil {
            return err
        }
        log.Printf("sweep: removed %d reset token(s)", n)
        return nil
    },
}

func init() {
    rootCmd.AddCommand(sweepCmd)
}
