package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/fullhouse/poker-signup/internal/repository"
)

// SignupHandler serves game signups: players manage their own seat, dealers
// and admins read rosters.
type SignupHandler struct {
    Signups *repository.SignupRepo
    Games   *repository.GameRepo
}

func NewSignupHandler(s *repository.SignupRepo, g *repository.GameRepo) *SignupHandler {
    return &SignupHandler{Signups: s, Games: g}
}

type createSignupReq struct {
    GameID uint64 `json:"game_id"`
}

// Create signs the caller up for a game.  A player holds at most one signup;
// signing up while one exists answers 409 with the blocking game so the
// client can offer to switch.
func (h *SignupHandler) Create(c echo.Context) error {
    userID, ok := userIDFrom(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
    }
    var req createSignupReq
    if err := c.Bind(&req); err != nil || req.GameID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "game_id required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    existing, err := h.Signups.CreateIfFree(ctx, userID, req.GameID)
    switch err {
    case nil:
        return c.JSON(http.StatusCreated, echo.Map{"message": "signed up", "game_id": req.GameID})
    case repository.ErrNotFound:
        return c.JSON(http.StatusNotFound, echo.Map{"error": "game not found"})
    case repository.ErrConflict:
        return c.JSON(http.StatusConflict, echo.Map{
            "error":        "You are already signed up for a game",
            "current_game": existing,
        })
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create signup failed"})
    }
}

// Mine returns the caller's current signup, if any.
func (h *SignupHandler) Mine(c echo.Context) error {
    userID, ok := userIDFrom(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    current, err := h.Signups.Current(ctx, userID)
    if err == repository.ErrNotFound {
        return c.JSON(http.StatusOK, echo.Map{"current_game": nil})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup signup failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"current_game": current})
}

// Delete cancels the caller's signup for a game.
func (h *SignupHandler) Delete(c echo.Context) error {
    userID, ok := userIDFrom(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
    }
    gameID, ok := paramUint(c, "gameID")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid game id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    err := h.Signups.Delete(ctx, userID, gameID)
    if err == repository.ErrNotFound {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "signup not found"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete signup failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "signup cancelled"})
}

// Roster returns one game's signup list in signup order (dealer/admin).
func (h *SignupHandler) Roster(c echo.Context) error {
    gameID, ok := paramUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid game id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    game, err := h.Games.GetByID(ctx, gameID)
    if err == repository.ErrNotFound {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "game not found"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup game failed"})
    }
    roster, err := h.Signups.Roster(ctx, gameID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list roster failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"game": game, "roster": roster})
}

// RosterAll returns every signup with game and venue context (dealer/admin).
func (h *SignupHandler) RosterAll(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    roster, err := h.Signups.RosterAll(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list signups failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"signups": roster})
}
