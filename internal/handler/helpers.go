package handler

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/fullhouse/poker-signup/internal/middleware"
)

// userIDFrom reads the authenticated user's id set by the JWT middleware.
func userIDFrom(c echo.Context) (uint64, bool) {
    return middleware.UserID(c)
}

// paramUint parses a numeric path parameter; ok is false when missing or not
// a positive integer.
func paramUint(c echo.Context, name string) (uint64, bool) {
    v, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || v == 0 {
        return 0, false
    }
    return v, true
}
