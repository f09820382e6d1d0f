package handler

import (
    "context"  // context with cancellation for DB calls
    "net/http" // HTTP status codes and primitives
    "regexp"   // email and username shape checks
    "strings"  // string manipulation utilities
    "time"     // timeouts for DB calls and token TTLs

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/fullhouse/poker-signup/internal/config"
    "github.com/fullhouse/poker-signup/internal/model"
    "github.com/fullhouse/poker-signup/internal/queue"
    "github.com/fullhouse/poker-signup/internal/repository"
    "github.com/fullhouse/poker-signup/internal/utils"
)

var (
    emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
    usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)
)

// AuthHandler bundles dependencies for registration, login and token refresh.
type AuthHandler struct {
    Cfg    config.Config
    Users  *repository.UserRepo
    Resets *repository.ResetTokenRepo
    Mail   queue.EmailPublisher
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, rt *repository.ResetTokenRepo, mail queue.EmailPublisher) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Resets: rt, Mail: mail}
}

// ----- DTOs -----

type registerReq struct {
    Email    string `json:"email"`
    Username string `json:"username"`
    Password string `json:"password"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type authResp struct {
    User    model.Profile `json:"user"`
    Access  tokenPart     `json:"access"`
    Refresh tokenPart     `json:"refresh"`
}

// Register creates an unverified account and queues the verification email.
// No tokens are issued here: the account cannot log in until the address is
// confirmed.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    req.Username = strings.TrimSpace(req.Username)

    if !emailRe.MatchString(req.Email) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "a valid email is required"})
    }
    if !usernameRe.MatchString(req.Username) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be 3-30 characters (letters, digits, underscore)"})
    }
    if msg := utils.PasswordPolicyError(req.Password); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
    }
    verifyToken, err := utils.NewOpaqueToken()
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue verification token failed"})
    }
    verifyExp := time.Now().UTC().Add(time.Duration(h.Cfg.VerifyTTLMin) * time.Minute)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    _, err = h.Users.Create(ctx, req.Email, req.Username, hash, verifyToken, verifyExp)
    if err != nil {
        switch err {
        case repository.ErrEmailExists:
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
        case repository.ErrUsernameExists:
            return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    // Best effort: a lost email can be recovered through resend-verification.
    _ = h.Mail.PublishEmail(ctx, queue.EmailKindVerification, req.Email, req.Username, verifyToken)

    return c.JSON(http.StatusCreated, echo.Map{
        "message": "Registration successful. Please check your email to verify your account.",
    })
}

// Login verifies credentials and returns an access/refresh token pair.  The
// same 401 covers unknown email and wrong password so responses cannot be
// used to probe which addresses have accounts.  Unverified accounts get a
// distinct 403 telling the client to surface the verification flow.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    user, err := h.Users.GetByEmail(ctx, req.Email)
    if err == repository.ErrNotFound {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup user failed"})
    }
    if !utils.VerifyPassword(user.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password"})
    }
    if !user.EmailVerified {
        return c.JSON(http.StatusForbidden, echo.Map{
            "error":                 "Please verify your email before logging in",
            "requires_verification": true,
            "email":                 user.Email,
        })
    }

    // The response carries the full profile (names, phone, role), so clients
    // do not need a follow-up /profile call after logging in.
    profile, err := h.Users.GetProfile(ctx, user.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup profile failed"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, user.ID, user.Email, profile.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.JWTSecret, user.ID, h.Cfg.RefreshTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
    }

    return c.JSON(http.StatusOK, authResp{
        User:    profile,
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Token, Expires: refresh.Exp},
    })
}

// Refresh exchanges a valid refresh token for a fresh access token.  The
// refresh token itself is not rotated.  Role is re-read from the database so
// a role change takes effect on the next refresh rather than living in the
// old claims for the token's full lifetime.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }

    claims, err := utils.VerifyToken(h.Cfg.JWTSecret, req.RefreshToken)
    if err != nil {
        if err == utils.ErrTokenExpired {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refresh token expired"})
        }
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
    }
    if claims.Type != utils.TokenTypeRefresh {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token type"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    // The account must still exist; a deleted user's refresh token dies here.
    user, err := h.Users.GetByID(ctx, claims.UserID)
    if err == repository.ErrNotFound {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup user failed"})
    }
    role, err := h.Users.RoleName(ctx, user.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup role failed"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, user.ID, user.Email, role, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "access": tokenPart{Token: access.Token, Expires: access.Exp},
    })
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
    userID, ok := userIDFrom(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    profile, err := h.Users.GetProfile(ctx, userID)
    if err == repository.ErrNotFound {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup profile failed"})
    }
    return c.JSON(http.StatusOK, profile)
}
