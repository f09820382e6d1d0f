package cmd

import (
    "context"
    "log"
    "os/signal"
    "syscall"
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/spf13/cobra"

    "github.com/fullhouse/poker-signup/internal/config"
    "github.com/fullhouse/poker-signup/internal/database"
    "github.com/fullhouse/poker-signup/internal/handler"
    "github.com/fullhouse/poker-signup/internal/mailer"
    "github.com/fullhouse/poker-signup/internal/middleware"
    "github.com/fullhouse/poker-signup/internal/queue"
    "github.com/fullhouse/poker-signup/internal/repository"
    "github.com/fullhouse/poker-signup/internal/router"
)

var serveCmd = &cobra.Command{
    Use:   "serve",
    Short: "Start the API server",
    RunE: func(cmd *cobra.Command, args []string) error {
        return serve()
    },
}

func init() {
    rootCmd.AddCommand(serveCmd)
}

func serve() error {
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        return err
    }
    defer func() { _ = db.Close() }()

    rdb := config.NewRedisClient() // nil when Redis is not configured

    users := repository.NewUserRepo(db)
    resets := repository.NewResetTokenRepo(db)
    roles := repository.NewRoleRepo(db)
    venues := repository.NewVenueRepo(db)
    games := repository.NewGameRepo(db)
    signups := repository.NewSignupRepo(db)

    mail := mailer.New(cfg.ResendAPIKey, cfg.EmailFrom, cfg.FrontendURL, cfg.Env != "prod")

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    // With a broker the request path only enqueues; without one mail is sent
    // inline so single-process deployments still work.
    var publisher queue.EmailPublisher
    if cfg.RabbitURL != "" {
        publisher = queue.NewAMQPPublisher(cfg.RabbitURL)
        go func() {
            if err := queue.StartEmailConsumer(ctx, cfg.RabbitURL, mail); err != nil && ctx.Err() == nil {
                log.Printf("email consumer stopped: %v", err)
            }
        }()
    } else {
        publisher = queue.NewDirectPublisher(mail)
    }

    h := router.Handlers{
        Health:       handler.NewHealthHandler(db),
        Auth:         handler.NewAuthHandler(cfg, users, resets, publisher),
        Reset:        handler.NewPasswordResetHandler(cfg, users, resets, publisher),
        Verification: handler.NewVerificationHandler(cfg, users, publisher),
        Profile:      handler.NewProfileHandler(cfg, users, resets),
        Venues:       handler.NewVenueHandler(venues, games),
        Games:        handler.NewGameHandler(games, venues),
        Signups:      handler.NewSignupHandler(signups, games),
        Admin:        handler.NewAdminHandler(cfg, users, roles, games, venues, signups),
        Roles:        handler.NewRoleHandler(roles),
    }
    mw := router.Middleware{
        JWTSecret:     cfg.JWTSecret,
        ResetThrottle: middleware.ResetThrottle(config.LoadResetRateLimitConfig(), rdb),
        BrowseCache:   middleware.BrowseCache(config.LoadCacheConfig(), rdb),
    }

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(echomw.Logger())
    e.Use(echomw.CORS())
    router.Register(e, h, mw)

    go func() {
        <-ctx.Done()
        shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        _ = e.Shutdown(shutCtx)
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil && ctx.Err() == nil {
        return err
    }
    return nil
}
