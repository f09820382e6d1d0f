package middleware

import (
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/fullhouse/poker-signup/internal/config"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
    t.Helper()
    mr, err := miniredis.Run()
    if err != nil {
        t.Fatalf("miniredis.Run failed: %v", err)
    }
    return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func throttleRequest(t *testing.T, mw echo.MiddlewareFunc, body string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/auth/forgot-password", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    req.RemoteAddr = "10.0.0.1:12345"
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/v1/auth/forgot-password")

    handler := mw(func(c echo.Context) error {
        return c.NoContent(http.StatusOK)
    })
    if err := handler(c); err != nil {
        t.Fatalf("handler returned error: %v", err)
    }
    return rec
}

func TestResetThrottleExhaustsBucket(t *testing.T) {
    mr, rdb := newTestRedis(t)
    defer mr.Close()

    cfg := config.ResetRateLimitConfig{
        Enabled:        true,
        Capacity:       2,
        RefillInterval: time.Hour,
        TTL:            2 * time.Hour,
        Prefix:         "rl:test",
    }
    mw := ResetThrottle(cfg, rdb)

    body := `{"email":"target@example.com"}`
    for i := 0; i < 2; i++ {
        if rec := throttleRequest(t, mw, body); rec.Code != http.StatusOK {
            t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
        }
    }
    rec := throttleRequest(t, mw, body)
    if rec.Code != http.StatusTooManyRequests {
        t.Fatalf("status = %d, want 429", rec.Code)
    }
    if rec.Header().Get("Retry-After") == "" {
        t.Error("429 response should carry Retry-After")
    }
}

func TestResetThrottleIPBucketSharedAcrossEmails(t *testing.T) {
    mr, rdb := newTestRedis(t)
    defer mr.Close()

    cfg := config.ResetRateLimitConfig{
        Enabled:        true,
        Capacity:       1,
        RefillInterval: time.Hour,
        TTL:            2 * time.Hour,
        Prefix:         "rl:test",
    }
    mw := ResetThrottle(cfg, rdb)

    if rec := throttleRequest(t, mw, `{"email":"one@example.com"}`); rec.Code != http.StatusOK {
        t.Fatalf("first email: status = %d, want 200", rec.Code)
    }
    // Same IP bucket is now empty, so a different email is still denied;
    // the IP dimension is checked first.
    if rec := throttleRequest(t, mw, `{"email":"two@example.com"}`); rec.Code != http.StatusTooManyRequests {
        t.Fatalf("second request: status = %d, want 429 (IP bucket drained)", rec.Code)
    }
}

func TestResetThrottleRestoresOversizedBody(t *testing.T) {
    mr, rdb := newTestRedis(t)
    defer mr.Close()

    cfg := config.ResetRateLimitConfig{
        Enabled:        true,
        Capacity:       5,
        RefillInterval: time.Hour,
        TTL:            2 * time.Hour,
        Prefix:         "rl:test",
    }
    mw := ResetThrottle(cfg, rdb)

    // The email field sits past the 4KB peek window, so the email bucket is
    // skipped, but the handler must still receive the body in full.
    body := `{"pad":"` + strings.Repeat("a", 8192) + `","email":"big@example.com"}`

    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/auth/forgot-password", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    req.RemoteAddr = "10.0.0.1:12345"
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/v1/auth/forgot-password")

    var got struct {
        Email string `json:"email"`
    }
    handler := mw(func(c echo.Context) error {
        if err := c.Bind(&got); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
        }
        return c.NoContent(http.StatusOK)
    })
    if err := handler(c); err != nil {
        t.Fatalf("handler returned error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
    }
    if got.Email != "big@example.com" {
        t.Errorf("bound email = %q, want big@example.com", got.Email)
    }
}

func TestResetThrottleFailsOpenWithoutRedis(t *testing.T) {
    mr, rdb := newTestRedis(t)
    mr.Close() // server gone: every script call errors

    cfg := config.ResetRateLimitConfig{
        Enabled:        true,
        Capacity:       1,
        RefillInterval: time.Hour,
        TTL:            2 * time.Hour,
        Prefix:         "rl:test",
    }
    mw := ResetThrottle(cfg, rdb)

    for i := 0; i < 3; i++ {
        if rec := throttleRequest(t, mw, `{"email":"x@example.com"}`); rec.Code != http.StatusOK {
            t.Fatalf("request %d: status = %d, want 200 (fail open)", i+1, rec.Code)
        }
    }
}

func TestResetThrottleDisabledPassthrough(t *testing.T) {
    mw := ResetThrottle(config.ResetRateLimitConfig{Enabled: false}, nil)
    if rec := throttleRequest(t, mw, `{"email":"x@example.com"}`); rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200", rec.Code)
    }
}
