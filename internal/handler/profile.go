package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/fullhouse/poker-signup/internal/config"
    "github.com/fullhouse/poker-signup/internal/repository"
    "github.com/fullhouse/poker-signup/internal/utils"
)

// ProfileHandler serves the authenticated user's own profile.
type ProfileHandler struct {
    Cfg    config.Config
    Users  *repository.UserRepo
    Resets *repository.ResetTokenRepo
}

func NewProfileHandler(cfg config.Config, u *repository.UserRepo, rt *repository.ResetTokenRepo) *ProfileHandler {
    return &ProfileHandler{Cfg: cfg, Users: u, Resets: rt}
}

type updateProfileReq struct {
    Email     *string `json:"email"`
    Username  *string `json:"username"`
    FirstName *string `json:"first_name"`
    LastName  *string `json:"last_name"`
    Phone     *string `json:"phone"`
}
type changePasswordReq struct {
    CurrentPassword string `json:"current_password"`
    NewPassword     string `json:"new_password"`
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(c echo.Context) error {
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

// Update applies a partial edit to the caller's profile.  Email and username
// collisions are reported as 409 before any write happens.  Role cannot be
// changed here; that is an admin operation.
func (h *ProfileHandler) Update(c echo.Context) error {
    userID, ok := userIDFrom(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
    }
    var req updateProfileReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if req.Email != nil {
        email := strings.ToLower(strings.TrimSpace(*req.Email))
        if !emailRe.MatchString(email) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "a valid email is required"})
        }
        req.Email = &email
        taken, err := h.Users.EmailInUseByOther(ctx, email, userID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check email failed"})
        }
        if taken {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
        }
    }
    if req.Username != nil {
        username := strings.TrimSpace(*req.Username)
        if !usernameRe.MatchString(username) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be 3-30 characters (letters, digits, underscore)"})
        }
        req.Username = &username
        taken, err := h.Users.UsernameInUseByOther(ctx, username, userID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check username failed"})
        }
        if taken {
            return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
        }
    }

    err := h.Users.UpdateProfile(ctx, userID, repository.ProfileUpdate{
        Email:     req.Email,
        Username:  req.Username,
        FirstName: req.FirstName,
        LastName:  req.LastName,
        Phone:     req.Phone,
    })
    if err != nil {
        switch err {
        case repository.ErrEmailExists:
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
        case repository.ErrUsernameExists:
            return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
    }

    profile, err := h.Users.GetProfile(ctx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup profile failed"})
    }
    return c.JSON(http.StatusOK, profile)
}

// ChangePassword replaces the caller's password after checking the current
// one.  Outstanding reset links die with the old password.
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
    userID, ok := userIDFrom(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
    }
    var req changePasswordReq
    if err := c.Bind(&req); err != nil || req.CurrentPassword == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "current_password required"})
    }
    if msg := utils.PasswordPolicyError(req.NewPassword); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    user, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup user failed"})
    }
    if !utils.VerifyPassword(user.PasswordHash, req.CurrentPassword) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Current password is incorrect"})
    }

    hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
    }
    if err := h.Users.UpdatePassword(ctx, userID, hash); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
    }
    _ = h.Resets.InvalidateAllForUser(ctx, userID)

    return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}
