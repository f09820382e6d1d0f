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

// VerificationHandler drives the email confirmation flow for new accounts.
type VerificationHandler struct {
    Cfg   config.Config
    Users *repository.UserRepo
    Mail  queue.EmailPublisher
}

func NewVerificationHandler(cfg config.Config, u *repository.UserRepo, mail queue.EmailPublisher) *VerificationHandler {
    return &VerificationHandler{Cfg: cfg, Users: u, Mail: mail}
}

type verifyEmailReq struct {
    Token string `json:"token"`
}
type resendVerificationReq struct {
    Email string `json:"email"`
}

// VerifyEmail confirms an address using the token from the verification
// email.  A welcome email is queued on success.
func (h *VerificationHandler) VerifyEmail(c echo.Context) error {
    var req verifyEmailReq
    req.Token = c.Param("token")
    if req.Token == "" {
        if err := c.Bind(&req); err != nil || req.Token == "" {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
        }
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    user, err := h.Users.GetByVerificationToken(ctx, req.Token)
    if err == repository.ErrNotFound {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired verification token"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup token failed"})
    }
    if err := h.Users.MarkVerified(ctx, user.ID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verify email failed"})
    }
    _ = h.Mail.PublishEmail(ctx, queue.EmailKindWelcome, user.Email, user.Username, "")

    return c.JSON(http.StatusOK, echo.Map{"message": "Email verified successfully. You can now log in."})
}

const resendVerificationMsg = "If an unverified account with that email exists, a new verification email has been sent."

// ResendVerification reissues the verification token.  Reissuing overwrites
// the previous token, so only the newest link works.  The response never
// reveals whether the address has an account or whether it is verified.
func (h *VerificationHandler) ResendVerification(c echo.Context) error {
    var req resendVerificationReq
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
    if err != nil || user.EmailVerified {
        return c.JSON(http.StatusOK, echo.Map{"message": resendVerificationMsg})
    }

    token, err := utils.NewOpaqueToken()
    if err != nil {
        return c.JSON(http.StatusOK, echo.Map{"message": resendVerificationMsg})
    }
    expires := time.Now().UTC().Add(time.Duration(h.Cfg.VerifyTTLMin) * time.Minute)
    if err := h.Users.SetVerificationToken(ctx, user.ID, token, expires); err != nil {
        c.Logger().Errorf("reissue verification token for user %d: %v", user.ID, err)
        return c.JSON(http.StatusOK, echo.Map{"message": resendVerificationMsg})
    }
    _ = h.Mail.PublishEmail(ctx, queue.EmailKindVerification, user.Email, user.Username, token)

    return c.JSON(http.StatusOK, echo.Map{"message": resendVerificationMsg})
}

// CheckStatus reports whether an email address has been verified.  Used by
// the login form after a 403 to poll for the user clicking the link.
func (h *VerificationHandler) CheckStatus(c echo.Context) error {
    var req resendVerificationReq
    _ = c.Bind(&req)
    email := strings.ToLower(strings.TrimSpace(req.Email))
    if email == "" {
        email = strings.ToLower(strings.TrimSpace(c.QueryParam("email")))
    }
    if email == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    user, err := h.Users.GetByEmail(ctx, email)
    if err == repository.ErrNotFound {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup user failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"verified": user.EmailVerified})
}
