package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/fullhouse/poker-signup/internal/handler"
    "github.com/fullhouse/poker-signup/internal/middleware"
)

// Handlers bundles every handler the router wires up.  The caller constructs
// them once in main and hands them over together.
type Handlers struct {
    Health       *handler.HealthHandler
    Auth         *handler.AuthHandler
    Reset        *handler.PasswordResetHandler
    Verification *handler.VerificationHandler
    Profile      *handler.ProfileHandler
    Venues       *handler.VenueHandler
    Games        *handler.GameHandler
    Signups      *handler.SignupHandler
    Admin        *handler.AdminHandler
    Roles        *handler.RoleHandler
}

// Middleware carries the route-level middleware built from config; any field
// may be a passthrough when its backing service is disabled.
type Middleware struct {
    JWTSecret     string
    ResetThrottle echo.MiddlewareFunc
    BrowseCache   echo.MiddlewareFunc
}

// Register wires all routes onto the Echo instance.
//
// Route map:
//   - public:        /healthz, venue/game browsing
//   - /v1/auth:      registration, login, refresh, verification, password reset
//   - authenticated: profile, signups
//   - dealer+:       rosters
//   - admin:         user/role/venue/game management, dashboard
func Register(e *echo.Echo, h Handlers, mw Middleware) {
    e.GET("/healthz", h.Health.Check)

    // Public browse endpoints.  Responses are cacheable: the schedule only
    // changes when an admin edits it.
    browse := e.Group("/v1", mw.BrowseCache)
    browse.GET("/venues", h.Venues.List)
    browse.GET("/venues/:id", h.Venues.Get)
    browse.GET("/venues/:id/games", h.Venues.GamesAt)
    browse.GET("/games", h.Games.List)
    browse.GET("/games/:id", h.Games.Get)
    browse.GET("/games/day/:day", h.Games.ByDay)

    // Account lifecycle.  The email-sending endpoints sit behind the reset
    // throttle so a single caller cannot flood a mailbox.
    auth := e.Group("/v1/auth")
    auth.POST("/register", h.Auth.Register)
    auth.POST("/login", h.Auth.Login)
    auth.POST("/refresh", h.Auth.Refresh)
    auth.GET("/verify-email/:token", h.Verification.VerifyEmail)
    auth.POST("/verify-email", h.Verification.VerifyEmail)
    auth.POST("/check-verification-status", h.Verification.CheckStatus)
    auth.POST("/resend-verification", h.Verification.ResendVerification, mw.ResetThrottle)
    auth.POST("/forgot-password", h.Reset.ForgotPassword, mw.ResetThrottle)
    auth.GET("/verify-reset-token/:token", h.Reset.VerifyResetToken)
    auth.POST("/verify-reset-token", h.Reset.VerifyResetToken)
    auth.POST("/reset-password", h.Reset.ResetPassword)

    // Everything below requires a valid access token.
    api := e.Group("/v1", middleware.JWTAuth(mw.JWTSecret))
    api.GET("/me", h.Auth.Me)
    api.GET("/profile", h.Profile.Get)
    api.PUT("/profile", h.Profile.Update)
    api.POST("/change-password", h.Profile.ChangePassword)
    api.POST("/signups", h.Signups.Create)
    api.GET("/signups/me", h.Signups.Mine)
    api.DELETE("/signups/:gameID", h.Signups.Delete)

    // Dealers (and admins) read rosters.
    dealer := api.Group("", middleware.RequireDealer())
    dealer.GET("/signups", h.Signups.RosterAll)
    dealer.GET("/games/:id/signups", h.Signups.Roster)

    // Admin management surface.
    admin := api.Group("/admin", middleware.RequireAdmin())
    admin.GET("/dashboard", h.Admin.Dashboard)
    admin.GET("/stats", h.Admin.Stats)
    admin.GET("/system", h.Admin.System)
    admin.GET("/users", h.Admin.ListUsers)
    admin.POST("/users", h.Admin.CreateUser)
    admin.GET("/users/:id", h.Admin.GetUser)
    admin.PUT("/users/:id", h.Admin.UpdateUser)
    admin.PUT("/users/:id/role", h.Admin.SetUserRole)
    admin.DELETE("/users/:id", h.Admin.DeleteUser)
    admin.GET("/roles", h.Roles.List)
    admin.POST("/roles", h.Roles.Create)
    admin.PUT("/roles/:id", h.Roles.Update)
    admin.DELETE("/roles/:id", h.Roles.Delete)
    admin.POST("/venues", h.Venues.Create)
    admin.PUT("/venues/:id", h.Venues.Update)
    admin.DELETE("/venues/:id", h.Venues.Delete)
    admin.POST("/games", h.Games.Create)
    admin.PUT("/games/:id", h.Games.Update)
    admin.DELETE("/games/:id", h.Games.Delete)
}
