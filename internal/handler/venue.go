package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/fullhouse/poker-signup/internal/repository"
)

// VenueHandler serves venue browsing (public) and venue management (admin).
type VenueHandler struct {
    Venues *repository.VenueRepo
    Games  *repository.GameRepo
}

func NewVenueHandler(v *repository.VenueRepo, g *repository.GameRepo) *VenueHandler {
    return &VenueHandler{Venues: v, Games: g}
}

type venueReq struct {
    Name    string `json:"name"`
    Address string `json:"address"`
}

// List returns all venues.
func (h *VenueHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    venues, err := h.Venues.List(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list venues failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"locations": venues})
}

// Get returns one venue with its scheduled games.
func (h *VenueHandler) Get(c echo.Context) error {
    id, ok := paramUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    venue, err := h.Venues.GetByID(ctx, id)
    if err == repository.ErrNotFound {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup venue failed"})
    }
    games, err := h.Games.ListByVenue(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list games failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"location": venue, "games": games})
}

// GamesAt returns only a venue's games, without the venue envelope.
func (h *VenueHandler) GamesAt(c echo.Context) error {
    id, ok := paramUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Venues.GetByID(ctx, id); err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup venue failed"})
    }
    games, err := h.Games.ListByVenue(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list games failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"games": games})
}

// Create adds a venue (admin).
func (h *VenueHandler) Create(c echo.Context) error {
    var req venueReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Address = strings.TrimSpace(req.Address)
    if req.Name == "" || req.Address == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and address required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    id, err := h.Venues.Create(ctx, req.Name, req.Address)
    if err == repository.ErrConflict {
        return c.JSON(http.StatusConflict, echo.Map{"error": "a venue with that name already exists"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create venue failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": id, "name": req.Name, "address": req.Address})
}

// Update replaces a venue's name and address (admin).
func (h *VenueHandler) Update(c echo.Context) error {
    id, ok := paramUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
    }
    var req venueReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Address = strings.TrimSpace(req.Address)
    if req.Name == "" || req.Address == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and address required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    err := h.Venues.Update(ctx, id, req.Name, req.Address)
    switch err {
    case nil:
        return c.JSON(http.StatusOK, echo.Map{"id": id, "name": req.Name, "address": req.Address})
    case repository.ErrNotFound:
        return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
    case repository.ErrConflict:
        return c.JSON(http.StatusConflict, echo.Map{"error": "a venue with that name already exists"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update venue failed"})
    }
}

// Delete removes a venue (admin).  Blocked while games are scheduled there.
func (h *VenueHandler) Delete(c echo.Context) error {
    id, ok := paramUint(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    err := h.Venues.Delete(ctx, id)
    switch err {
    case nil:
        return c.JSON(http.StatusOK, echo.Map{"message": "venue deleted"})
    case repository.ErrNotFound:
        return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
    case repository.ErrConflict:
        return c.JSON(http.StatusConflict, echo.Map{"error": "venue still has scheduled games"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete venue failed"})
    }
}
