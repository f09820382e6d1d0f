package middleware

import (
    "net/http"
    "net/http/httptest"
    "sync"
    "sync/atomic"
    "testing"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/fullhouse/poker-signup/internal/config"
)

func TestBrowseCacheServesSecondRequestFromRedis(t *testing.T) {
    mr, rdb := newTestRedis(t)
    defer mr.Close()

    cfg := config.CacheConfig{
        Enabled:      true,
        TTL:          time.Minute,
        Prefix:       "cache:test",
        MaxBodyBytes: 1 << 20,
    }
    mw := BrowseCache(cfg, rdb)

    calls := 0
    handler := mw(func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusOK, echo.Map{"games": []int{1, 2, 3}})
    })

    e := echo.New()
    run := func() *httptest.ResponseRecorder {
        req := httptest.NewRequest(http.MethodGet, "/v1/games", nil)
        rec := httptest.NewRecorder()
        if err := handler(e.NewContext(req, rec)); err != nil {
            t.Fatalf("handler returned error: %v", err)
        }
        return rec
    }

    first := run()
    if first.Code != http.StatusOK || calls != 1 {
        t.Fatalf("first: code=%d calls=%d", first.Code, calls)
    }

    second := run()
    if second.Code != http.StatusOK {
        t.Fatalf("second: code=%d", second.Code)
    }
    if calls != 1 {
        t.Errorf("handler ran %d times, want 1 (second request should hit cache)", calls)
    }
    if second.Header().Get("X-Cache") != "HIT" {
        t.Errorf("X-Cache = %q, want HIT", second.Header().Get("X-Cache"))
    }
    if first.Body.String() != second.Body.String() {
        t.Errorf("cached body differs: %q vs %q", first.Body.String(), second.Body.String())
    }
}

// browseCacheRace drives two requests for the same key through mw so the
// second joins the first's in-flight fill: the first request's handler blocks
// until the second has had time to attach.
func browseCacheRace(t *testing.T, mw echo.MiddlewareFunc, inner echo.HandlerFunc) (calls int32, recs [2]*httptest.ResponseRecorder) {
    t.Helper()

    entered := make(chan struct{})
    release := make(chan struct{})
    var once sync.Once
    handler := mw(func(c echo.Context) error {
        atomic.AddInt32(&calls, 1)
        once.Do(func() { close(entered) })
        <-release
        return inner(c)
    })

    e := echo.New()
    var wg sync.WaitGroup
    run := func(i int) {
        defer wg.Done()
        req := httptest.NewRequest(http.MethodGet, "/v1/games", nil)
        rec := httptest.NewRecorder()
        recs[i] = rec
        if err := handler(e.NewContext(req, rec)); err != nil {
            t.Errorf("request %d returned error: %v", i, err)
        }
    }

    wg.Add(1)
    go run(0)
    <-entered
    wg.Add(1)
    go run(1)
    time.Sleep(50 * time.Millisecond)
    close(release)
    wg.Wait()
    return atomic.LoadInt32(&calls), recs
}

func TestBrowseCacheConcurrentMissWritesEachBodyOnce(t *testing.T) {
    mr, rdb := newTestRedis(t)
    defer mr.Close()

    mw := BrowseCache(config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "cache:test", MaxBodyBytes: 1 << 20}, rdb)
    calls, recs := browseCacheRace(t, mw, func(c echo.Context) error {
        return c.JSON(http.StatusOK, echo.Map{"games": []int{1, 2, 3}})
    })

    if calls != 1 {
        t.Errorf("handler ran %d times, want 1 (second request should share the fill)", calls)
    }
    want := "{\"games\":[1,2,3]}\n"
    for i, rec := range recs {
        if rec.Code != http.StatusOK {
            t.Fatalf("request %d: code=%d", i, rec.Code)
        }
        if rec.Body.String() != want {
            t.Errorf("request %d body = %q, want %q (payload must not repeat)", i, rec.Body.String(), want)
        }
    }
}

func TestBrowseCacheConcurrentUncacheableRunsHandlerPerRequest(t *testing.T) {
    mr, rdb := newTestRedis(t)
    defer mr.Close()

    mw := BrowseCache(config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "cache:test", MaxBodyBytes: 1 << 20}, rdb)
    calls, recs := browseCacheRace(t, mw, func(c echo.Context) error {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "no such game"})
    })

    // Non-200 responses never enter the cache: the follower falls back to its
    // own handler run, and the first request must not run the handler twice.
    if calls != 2 {
        t.Errorf("handler ran %d times, want 2", calls)
    }
    want := "{\"error\":\"no such game\"}\n"
    for i, rec := range recs {
        if rec.Code != http.StatusNotFound {
            t.Fatalf("request %d: code=%d, want 404", i, rec.Code)
        }
        if rec.Body.String() != want {
            t.Errorf("request %d body = %q, want %q", i, rec.Body.String(), want)
        }
    }
}

func TestBrowseCacheSkipsNonGET(t *testing.T) {
    mr, rdb := newTestRedis(t)
    defer mr.Close()

    mw := BrowseCache(config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "c", MaxBodyBytes: 1 << 20}, rdb)

    calls := 0
    handler := mw(func(c echo.Context) error {
        calls++
        return c.NoContent(http.StatusCreated)
    })

    e := echo.New()
    for i := 0; i < 2; i++ {
        req := httptest.NewRequest(http.MethodPost, "/v1/games", nil)
        rec := httptest.NewRecorder()
        if err := handler(e.NewContext(req, rec)); err != nil {
            t.Fatalf("handler returned error: %v", err)
        }
    }
    if calls != 2 {
        t.Errorf("handler ran %d times, want 2 (POST must never be cached)", calls)
    }
}
