package middleware

import (
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/fullhouse/poker-signup/internal/utils"
)

const testSecret = "unit-test-secret"

func runProtected(t *testing.T, authorization string) (*httptest.ResponseRecorder, echo.Context) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
    if authorization != "" {
        req.Header.Set("Authorization", authorization)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    handler := JWTAuth(testSecret)(func(c echo.Context) error {
        return c.NoContent(http.StatusOK)
    })
    if err := handler(c); err != nil {
        t.Fatalf("handler returned error: %v", err)
    }
    return rec, c
}

func TestJWTAuthMissingHeader(t *testing.T) {
    rec, _ := runProtected(t, "")
    if rec.Code != http.StatusUnauthorized {
        t.Errorf("status = %d, want 401", rec.Code)
    }
}

func TestJWTAuthValidToken(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 42, "p@example.com", "player", 5)
    if err != nil {
        t.Fatalf("NewAccessToken failed: %v", err)
    }
    rec, c := runProtected(t, "Bearer "+tok.Token)
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
    }
    if id, ok := UserID(c); !ok || id != 42 {
        t.Errorf("UserID = %d/%v, want 42/true", id, ok)
    }
    if role, _ := c.Get(CtxRole).(string); role != "player" {
        t.Errorf("role = %q, want player", role)
    }
}

func TestJWTAuthRejectsRefreshToken(t *testing.T) {
    tok, err := utils.NewRefreshToken(testSecret, 42, 1)
    if err != nil {
        t.Fatalf("NewRefreshToken failed: %v", err)
    }
    rec, _ := runProtected(t, "Bearer "+tok.Token)
    if rec.Code != http.StatusUnauthorized {
        t.Errorf("status = %d, want 401 for refresh token on protected route", rec.Code)
    }
}

func TestJWTAuthExpiredToken(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 42, "p@example.com", "player", -1)
    if err != nil {
        t.Fatalf("NewAccessToken failed: %v", err)
    }
    rec, _ := runProtected(t, "Bearer "+tok.Token)
    if rec.Code != http.StatusUnauthorized {
        t.Errorf("status = %d, want 401", rec.Code)
    }
    if body := rec.Body.String(); !strings.Contains(body, "token expired") {
        t.Errorf("body %q should name the expiry so clients refresh", body)
    }
}
