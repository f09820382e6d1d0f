package handler

import (
    "context"
    "errors"
    "net/http"
    "regexp"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/fullhouse/poker-signup/internal/repository"
)

// RoleHandler serves role management (admin).
type RoleHandler struct {
    Roles *repository.RoleRepo
}

func NewRoleHandler(r *repository.RoleRepo) *RoleHandler { return &RoleHandler{Roles: r} }

// Role names are machine-facing identifiers, kept to a safe character set.
var roleNameRe = regexp.MustCompile(`^[A-Za-z0-9_]{2,30}$`)

type createRoleReq struct {
    Name        string  `json:"name"`
    Description *string `json:"description"`
}
type updateRoleReq struct {
    Name        *string `json:"name"`
    Description *string `json:"description"`
}

// List returns all roles.
func (h *RoleHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    roles, err := h.Roles.List(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list roles failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"roles": roles})
}

// Create adds a role.
func (h *RoleHandler) Create(c echo.Context) error {
    var req createRoleReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if !roleNameRe.MatchString(req.Name) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "role name must be 2-30 characters (letters, digits, underscore)"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    id, err := h.Roles.Create(ctx, req.Name, req.Description)
    if err == repository.ErrConflict {
        return c.JSON(http.StatusConflict, echo.Map{"error": "a role with that name already exists"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create role failed"})
    }
    role, err := h.Roles.GetByID(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup role failed"})
    }
    return c.JSON(http.StatusCreated, role)
}

// Update renames a role and/or changes its description.
func (h *RoleHandler) Update(c echo.Context) error {
    id, ok := paramUint(c, "id")
    if !ok || id > 255 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role id"})
    }
    var req updateRoleReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Name != nil {
        name := strings.TrimSpace(*req.Name)
        if !roleNameRe.MatchString(name) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "role name must be 2-30 characters (letters, digits, underscore)"})
        }
        req.Name = &name
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    err := h.Roles.Update(ctx, uint8(id), req.Name, req.Description)
    switch err {
    case nil:
        role, err := h.Roles.GetByID(ctx, uint8(id))
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup role failed"})
        }
        return c.JSON(http.StatusOK, role)
    case repository.ErrNotFound:
        return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
    case repository.ErrConflict:
        return c.JSON(http.StatusConflict, echo.Map{"error": "a role with that name already exists"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update role failed"})
    }
}

// Delete removes a role.  Rejected with 409 while users still hold it; the
// body carries the blocking user count.
func (h *RoleHandler) Delete(c echo.Context) error {
    id, ok := paramUint(c, "id")
    if !ok || id > 255 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    err := h.Roles.Delete(ctx, uint8(id))
    var inUse repository.ErrRoleInUse
    switch {
    case err == nil:
        return c.JSON(http.StatusOK, echo.Map{"message": "role deleted"})
    case errors.As(err, &inUse):
        return c.JSON(http.StatusConflict, echo.Map{
            "error":      "role is still assigned to users",
            "user_count": inUse.Count,
        })
    case err == repository.ErrNotFound:
        return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete role failed"})
    }
}
