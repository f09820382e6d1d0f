package handler

import (
    "context"
    "net/http"
    "runtime"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/fullhouse/poker-signup/internal/config"
    "github.com/fullhouse/poker-signup/internal/repository"
    "github.com/fullhouse/poker-signup/internal/utils"
)

// AdminHandler serves user management and the dashboard.  Every route is
// behind the admin role gate.
type AdminHandler struct {
    Cfg     config.Config
    Users   *repository.UserRepo
    Roles   *repository.RoleRepo
    Games   *repository.GameRepo
    Venues  *repository.VenueRepo
    Signups *repository.SignupRepo
}

func NewAdminHandler(cfg config.Config, u *repository.UserRepo, r *repository.RoleRepo,
    g *repository.GameRepo, v *repository.VenueRepo, s *repository.SignupRepo) *AdminHandler {
    return &AdminHandler{Cfg: cfg, Users: u, Roles: r, Games: g, Venues: v, Signups: s}
}

type adminCreateUserReq struct {
    Email     string  `json:"email"`
    Username  string  `json:"username"`
    Password  string  `json:"password"`
    FirstName *string `json:"first_name"`
    LastName  *string `json:"last_name"`
    Role      string  `json:"role"`
}
type adminUpdateUserReq struct {
    Email     *string `json:"email"`
    Username  *string `json:"username"`
    Password  *string `json:"password"`
    FirstName *string `json:"first_name"`
    LastName  *string `json:"last_name"`
    Phone     *string `json:"phone"`
    Role      *string `json:"role"`
}

// Dashboard aggregates the counters shown on the admin landing page.
func (h *AdminHandler) Dashboard(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    users, err := h.Users.CountByRole(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count users failed"})
    }
    games, err := h.Games.Count(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count games failed"})
    }
    signups, err := h.Signups.Count(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count signups failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "users":        users,
        "totalGames":   games,
        "totalSignups": signups,
    })
}

// Stats returns the per-role user breakdown.
func (h *AdminHandler) Stats(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    counts, err := h.Users.CountByRole(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count users failed"})
    }
    return c.JSON(http.StatusOK, counts)
}

// System reports runtime information for the operations page.
func (h *AdminHandler) System(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
    defer cancel()

    dbStatus := "ok"
    if err := h.Users.DB.PingContext(ctx); err != nil {
        dbStatus = "unreachable"
    }
    return c.JSON(http.StatusOK, echo.Map{
        "go_version": runtime.Version(),
        "goroutines": runtime.NumGoroutine(),
        "uptime":     time.Since(startedAt).Round(time.Second).String(),
        "database":   dbStatus,
        "env":        h.Cfg.Env,
    })
}

var startedAt = time.Now()

// ListUsers returns one page of users with profile data.
func (h *AdminHandler) ListUsers(c echo.Context) error {
    limit, _ := strconv.Atoi(c.QueryParam("limit"))
    if limit < 1 || limit > 100 {
        limit = 20
    }
    page, _ := strconv.Atoi(c.QueryParam("page"))
    if page < 1 {
        page = 1
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    users, total, err := h.Users.List(ctx, limit, (page-1)*limit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "users": users,
        "total": total,
        "page":  page,
        "limit": limit,
    })
}

// GetUser returns one user's profile.
func (h *AdminHandler) GetUser(c echo.Context) error {
    id, ok := paramUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    profile, err := h.Users.GetProfile(ctx, id)
    if err == repository.ErrNotFound {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup user failed"})
    }
    return c.JSON(http.StatusOK, profile)
}

// CreateUser provisions an account directly.  Admin-created accounts are
// verified from the start; no confirmation email is sent.
func (h *AdminHandler) CreateUser(c echo.Context) error {
    var req adminCreateUserReq
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
    if req.Role == "" {
        req.Role = "player"
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    role, err := h.Roles.GetByName(ctx, req.Role)
    if err == repository.ErrNotFound {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup role failed"})
    }

    hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
    }

    id, err := h.Users.CreateWithFeatures(ctx, req.Email, req.Username, hash, req.FirstName, req.LastName, role.ID)
    if err != nil {
        switch err {
        case repository.ErrEmailExists:
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
        case repository.ErrUsernameExists:
            return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    profile, err := h.Users.GetProfile(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup profile failed"})
    }
    return c.JSON(http.StatusCreated, profile)
}

// UpdateUser applies a partial edit to any account, including role changes.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
    id, ok := paramUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    var req adminUpdateUserReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Users.GetByID(ctx, id); err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup user failed"})
    }

    upd := repository.ProfileUpdate{
        FirstName: req.FirstName,
        LastName:  req.LastName,
        Phone:     req.Phone,
    }
    if req.Email != nil {
        email := strings.ToLower(strings.TrimSpace(*req.Email))
        if !emailRe.MatchString(email) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "a valid email is required"})
        }
        upd.Email = &email
    }
    if req.Username != nil {
        username := strings.TrimSpace(*req.Username)
        if !usernameRe.MatchString(username) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be 3-30 characters (letters, digits, underscore)"})
        }
        upd.Username = &username
    }
    if req.Password != nil {
        if msg := utils.PasswordPolicyError(*req.Password); msg != "" {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
        }
        hash, err := utils.HashPassword(*req.Password, h.Cfg.BcryptCost)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
        }
        upd.PasswordHash = &hash
    }
    if req.Role != nil {
        role, err := h.Roles.GetByName(ctx, *req.Role)
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
        }
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup role failed"})
        }
        upd.RoleID = &role.ID
    }

    if err := h.Users.UpdateProfile(ctx, id, upd); err != nil {
        switch err {
        case repository.ErrEmailExists:
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
        case repository.ErrUsernameExists:
            return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
    }

    profile, err := h.Users.GetProfile(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup profile failed"})
    }
    return c.JSON(http.StatusOK, profile)
}

type setRoleReq struct {
    Role string `json:"role"`
}

// SetUserRole points a user at a different role without touching the rest of
// the profile.
func (h *AdminHandler) SetUserRole(c echo.Context) error {
    id, ok := paramUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    var req setRoleReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Role) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "role required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Users.GetByID(ctx, id); err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup user failed"})
    }
    role, err := h.Roles.GetByName(ctx, strings.TrimSpace(req.Role))
    if err == repository.ErrNotFound {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup role failed"})
    }
    if err := h.Users.UpdateRole(ctx, id, role.ID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update role failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "role updated", "role": role.Name})
}

// DeleteUser removes an account.  Blocked while the user still holds a game
// signup, and admins cannot delete themselves.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
    id, ok := paramUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    if self, _ := userIDFrom(c); self == id {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "you cannot delete your own account"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    signups, err := h.Signups.CountForUser(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count signups failed"})
    }
    if signups > 0 {
        return c.JSON(http.StatusConflict, echo.Map{
            "error":        "user still has game signups",
            "signup_count": signups,
        })
    }

    err = h.Users.Delete(ctx, id)
    if err == repository.ErrNotFound {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
