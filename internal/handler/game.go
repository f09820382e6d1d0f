package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/fullhouse/poker-signup/internal/model"
    "github.com/fullhouse/poker-signup/internal/repository"
)

// GameHandler serves game browsing (public) and game management (admin).
type GameHandler struct {
    Games  *repository.GameRepo
    Venues *repository.VenueRepo
}

func NewGameHandler(g *repository.GameRepo, v *repository.VenueRepo) *GameHandler {
    return &GameHandler{Games: g, Venues: v}
}

type gameReq struct {
    VenueID   uint64  `json:"location_id"`
    GameDay   string  `json:"game_day"`
    StartTime string  `json:"start_time"`
    Notes     *string `json:"notes"`
}

var weekdays = map[string]bool{
    "Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
    "Friday": true, "Saturday": true, "Sunday": true,
}

func normalizeDay(day string) (string, bool) {
    day = strings.TrimSpace(day)
    if len(day) < 2 {
        return "", false
    }
    day = strings.ToUpper(day[:1]) + strings.ToLower(day[1:])
    return day, weekdays[day]
}

// List returns every game with venue info.
func (h *GameHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    games, err := h.Games.List(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list games failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"games": games})
}

// Get returns one game with venue info.
func (h *GameHandler) Get(c echo.Context) error {
    id, ok := paramUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid game id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    game, err := h.Games.GetByID(ctx, id)
    if err == repository.ErrNotFound {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "game not found"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup game failed"})
    }
    return c.JSON(http.StatusOK, game)
}

// ByDay returns a weekday's games grouped by venue, in venue-name order.
func (h *GameHandler) ByDay(c echo.Context) error {
    day, ok := normalizeDay(c.Param("day"))
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid weekday"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    games, err := h.Games.ListByDay(ctx, day)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list games failed"})
    }

    // Rows arrive ordered by venue name then start time, so grouping is a
    // single pass.
    type venueGroup struct {
        VenueID   uint64       `json:"location_id"`
        VenueName string       `json:"location_name"`
        Address   string       `json:"address"`
        Games     []model.Game `json:"games"`
    }
    groups := []venueGroup{}
    for _, g := range games {
        if len(groups) == 0 || groups[len(groups)-1].VenueID != g.VenueID {
            groups = append(groups, venueGroup{VenueID: g.VenueID, VenueName: g.VenueName, Address: g.VenueAddr})
        }
        groups[len(groups)-1].Games = append(groups[len(groups)-1].Games, g)
    }
    return c.JSON(http.StatusOK, echo.Map{"day": day, "locations": groups})
}

// Create schedules a game at a venue (admin).
func (h *GameHandler) Create(c echo.Context) error {
    var req gameReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    day, ok := normalizeDay(req.GameDay)
    if !ok || req.VenueID == 0 || strings.TrimSpace(req.StartTime) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "location_id, game_day and start_time required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Venues.GetByID(ctx, req.VenueID); err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup venue failed"})
    }

    id, err := h.Games.Create(ctx, req.VenueID, day, strings.TrimSpace(req.StartTime), req.Notes)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create game failed"})
    }
    game, err := h.Games.GetByID(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup game failed"})
    }
    return c.JSON(http.StatusCreated, game)
}

// Update replaces a game's schedule (admin).
func (h *GameHandler) Update(c echo.Context) error {
    id, ok := paramUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid game id"})
    }
    var req gameReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    day, okDay := normalizeDay(req.GameDay)
    if !okDay || req.VenueID == 0 || strings.TrimSpace(req.StartTime) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "location_id, game_day and start_time required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Venues.GetByID(ctx, req.VenueID); err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup venue failed"})
    }

    err := h.Games.Update(ctx, id, req.VenueID, day, strings.TrimSpace(req.StartTime), req.Notes)
    if err == repository.ErrNotFound {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "game not found"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update game failed"})
    }
    game, err := h.Games.GetByID(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup game failed"})
    }
    return c.JSON(http.StatusOK, game)
}

// Delete removes a game (admin).  Blocked while players are signed up.
func (h *GameHandler) Delete(c echo.Context) error {
    id, ok := paramUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid game id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    err := h.Games.Delete(ctx, id)
    switch err {
    case nil:
        return c.JSON(http.StatusOK, echo.Map{"message": "game deleted"})
    case repository.ErrNotFound:
        return c.JSON(http.StatusNotFound, echo.Map{"error": "game not found"})
    case repository.ErrConflict:
        return c.JSON(http.StatusConflict, echo.Map{"error": "game still has signups"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete game failed"})
    }
}
