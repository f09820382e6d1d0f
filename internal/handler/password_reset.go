package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/fullhouse/poker-signup/internal/config"
    "github.com/fullhouse/poker-signup/internal/queue"
    "github.com/fullhouse/poker-signup/internal/repository"
    "github.com/fullhouse/poker-signup/internal/utils"
)

// PasswordResetHandler drives the forgot/verify/reset token lifecycle.
type PasswordResetHandler struct {
    Cfg    config.Config
    Users  *repository.UserRepo
    Resets *repository.ResetTokenRepo
    Mail   queue.EmailPublisher
}

func NewPasswordResetHandler(cfg config.Config, u *repository.UserRepo, rt *repository.ResetTokenRepo, mail queue.EmailPublisher) *PasswordResetHandler {
    return &PasswordResetHandler{Cfg: cfg, Users: u, Resets: rt, Mail: mail}
}

type forgotPasswordReq struct {
    Email string `json:"email"`
}
type verifyResetReq struct {
    Token string `json:"token"`
}
type resetPasswordReq struct {
    Token       string `json:"token"`
    NewPassword string `json:"new_password"`
}

const forgotPasswordMsg = "If an account with that email exists, a password reset link has been sent."

// ForgotPassword issues a reset token and queues the email.  The response is
// identical whether or not the address has an account, so the endpoint
// cannot be used to enumerate users.  Token creation supersedes any earlier
// active token for the same user.
func (h *PasswordResetHandler) ForgotPassword(c echo.Context) error {
    var req forgotPasswordReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    user, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        // Unknown address or transient failure: same answer either way.
        return c.JSON(http.StatusOK, echo.Map{"message": forgotPasswordMsg})
    }

    token, err := h.Resets.Create(ctx, user.ID, time.Duration(h.Cfg.ResetTTLMin)*time.Minute)
    if err != nil {
        c.Logger().Errorf("create reset token for user %d: %v", user.ID, err)
        return c.JSON(http.StatusOK, echo.Map{"message": forgotPasswordMsg})
    }
    _ = h.Mail.PublishEmail(ctx, queue.EmailKindPasswordReset, user.Email, user.Username, token)

    return c.JSON(http.StatusOK, echo.Map{"message": forgotPasswordMsg})
}

// VerifyResetToken reports whether a token would be accepted, so the reset
// form can reject dead links before asking for a new password.  Missing,
// used and expired tokens are indistinguishable in the response.
func (h *PasswordResetHandler) VerifyResetToken(c echo.Context) error {
    var req verifyResetReq
    req.Token = c.Param("token")
    if req.Token == "" {
        if err := c.Bind(&req); err != nil || req.Token == "" {
            return c.JSON(http.StatusBadRequest, echo.Map{"valid": false, "error": "token required"})
        }
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Resets.Validate(ctx, req.Token); err != nil {
        if err == repository.ErrTokenInvalid {
            return c.JSON(http.StatusBadRequest, echo.Map{"valid": false, "error": "Invalid or expired reset token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validate token failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"valid": true})
}

// ResetPassword consumes an active token and replaces the user's password.
// On success the token is marked used and every other active token for the
// user is invalidated, so a reset link works exactly once.
func (h *PasswordResetHandler) ResetPassword(c echo.Context) error {
    var req resetPasswordReq
    if err := c.Bind(&req); err != nil || req.Token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
    }
    if msg := utils.PasswordPolicyError(req.NewPassword); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    rec, err := h.Resets.Validate(ctx, req.Token)
    if err != nil {
        if err == repository.ErrTokenInvalid {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired reset token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validate token failed"})
    }

    hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
    }
    if err := h.Users.UpdatePassword(ctx, rec.UserID, hash); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
    }
    if err := h.Resets.MarkUsed(ctx, req.Token); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "consume token failed"})
    }
    // Kill any other outstanding links for this user.
    _ = h.Resets.InvalidateAllForUser(ctx, rec.UserID)

    return c.JSON(http.StatusOK, echo.Map{"message": "Password has been reset successfully. You can now log in with your new password."})
}
