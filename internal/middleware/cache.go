package middleware

import (
    "bytes"
    "encoding/json"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "golang.org/x/sync/singleflight"

    "github.com/fullhouse/poker-signup/internal/config"
)

// cachedResponse is the JSON envelope stored in Redis for a cached page.
type cachedResponse struct {
    Status      int    `json:"status"`
    ContentType string `json:"content_type"`
    Body        []byte `json:"body"`
}

// bodyRecorder buffers the handler's response body (up to limit) while it is
// written to the client, so a successful response can be stored afterwards.
type bodyRecorder struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    limit  int
}

func (w *bodyRecorder) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
    if w.buf.Len()+len(b) <= w.limit {
        w.buf.Write(b)
    } else {
        w.buf.Reset()
        w.limit = 0 // oversized: stop buffering, response will not be cached
    }
    return w.ResponseWriter.Write(b)
}

// BrowseCache caches successful GET responses of the public venue/game
// listings in Redis.  Concurrent misses for the same key are collapsed
// through a singleflight group: only the first request executes the handler
// and fills the cache, the rest wait on its result instead of each running
// the same queries.  When Redis is unavailable the middleware is a no-op.
func BrowseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    var group singleflight.Group

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }
            key := cfg.Prefix + ":" + c.Request().URL.RequestURI()
            ctx := c.Request().Context()

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var cached cachedResponse
                if json.Unmarshal(raw, &cached) == nil {
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(cached.Status, cached.ContentType, cached.Body)
                }
            }

            // Miss: one caller per key runs the handler, fills the cache and
            // shares the envelope; followers replay it.  Do reports shared=true
            // to the leader too once followers attach, so leadership is tracked
            // with a per-request flag instead.
            leader := false
            out, err, _ := group.Do(key, func() (interface{}, error) {
                leader = true
                rec := &bodyRecorder{
                    ResponseWriter: c.Response().Writer,
                    status:         http.StatusOK,
                    limit:          cfg.MaxBodyBytes,
                }
                c.Response().Writer = rec
                if err := next(c); err != nil {
                    return nil, err
                }
                if rec.status != http.StatusOK || rec.buf.Len() == 0 {
                    return nil, nil
                }
                cached := cachedResponse{
                    Status:      rec.status,
                    ContentType: c.Response().Header().Get(echo.HeaderContentType),
                    Body:        rec.buf.Bytes(),
                }
                if raw, err := json.Marshal(cached); err == nil {
                    _ = rdb.Set(ctx, key, raw, ttl).Err()
                }
                return &cached, nil
            })
            if err != nil {
                return err
            }
            if leader {
                // The handler already wrote this request's response.
                return nil
            }
            if cached, ok := out.(*cachedResponse); ok && cached != nil {
                c.Response().Header().Set("X-Cache", "SHARED")
                return c.Blob(cached.Status, cached.ContentType, cached.Body)
            }
            // Leader's response was not cacheable; run the handler normally.
            return next(c)
        }
    }
}
