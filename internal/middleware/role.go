package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  It must run after
// JWTAuth: if no identity was attached the request is rejected with 401
// (gate ordering violation), while a known identity with an unlisted role
// gets 403.  Role names correspond to the values stored in the JWT's "role"
// claim.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    // Build a set of allowed roles for constant-time lookups.
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if _, ok := UserID(c); !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
            }
            role, ok := c.Get(CtxRole).(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}

// RequireAdmin gates admin-only routes.
func RequireAdmin() echo.MiddlewareFunc { return RequireRole("admin") }

// RequireDealer gates routes available to dealers and admins.
func RequireDealer() echo.MiddlewareFunc { return RequireRole("dealer", "admin") }
