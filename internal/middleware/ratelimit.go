package middleware

import (
    "bytes"
    "encoding/json"
    "io"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/fullhouse/poker-signup/internal/config"
)

// bucketScript implements a token bucket in Redis.  State lives in a hash
// per key and refills lazily on access; the script returns whether the
// request is allowed, the remaining tokens, and how long until the next
// token when denied.
var bucketScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local interval_ms = tonumber(ARGV[3])
    local ttl_seconds = tonumber(ARGV[4])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])

    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 then
        local elapsed = math.max(0, now_ms - last_refill)
        local intervals = math.floor(elapsed / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + intervals)
            last_refill = last_refill + (intervals * interval_ms)
        end
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        local until_next = interval_ms - (now_ms - last_refill)
        if until_next < 0 then until_next = 0 end
        retry_after_ms = until_next
    end

    redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)

    return { allowed, tokens, retry_after_ms }
`)

// ResetThrottle limits the password-reset and resend-verification endpoints.
// Each request consumes a token from two buckets: one keyed by client IP and
// one keyed by the target email from the JSON body, so neither a single
// machine nor a single mailbox can be hammered.  When Redis is unavailable
// the middleware lets requests through; throttling is a shield, not a
// dependency.
func ResetThrottle(cfg config.ResetRateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            keys := []string{cfg.Prefix + ":ip:" + c.RealIP() + ":" + c.Path()}
            if email := peekEmail(c); email != "" {
                keys = append(keys, cfg.Prefix+":email:"+email+":"+c.Path())
            }

            ctx := c.Request().Context()
            now := time.Now().UnixMilli()
            args := []interface{}{
                now,
                cfg.Capacity,
                cfg.RefillInterval.Milliseconds(),
                int64(cfg.TTL / time.Second),
            }

            for _, key := range keys {
                vals, err := bucketScript.Run(ctx, rdb, []string{key}, args...).Result()
                if err != nil {
                    if cfg.Debug {
                        c.Logger().Warnf("[throttle] redis error for key=%s: %v", key, err)
                    }
                    return next(c)
                }
                allowed, remaining, retryMs := parseBucketResult(vals)

                c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
                c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

                if !allowed {
                    secs := int(math.Ceil(float64(retryMs) / 1000.0))
                    if secs < 0 {
                        secs = 0
                    }
                    c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                    return c.JSON(http.StatusTooManyRequests, echo.Map{
                        "error": "Too many requests. Please try again later.",
                    })
                }
            }
            return next(c)
        }
    }
}

func parseBucketResult(vals interface{}) (allowed bool, remaining, retryMs int64) {
    arr, ok := vals.([]interface{})
    if !ok || len(arr) != 3 {
        return true, 0, 0
    }
    if i, ok := arr[0].(int64); ok {
        allowed = i == 1
    }
    remaining = asInt64(arr[1])
    retryMs = asInt64(arr[2])
    return allowed, remaining, retryMs
}

func asInt64(v interface{}) int64 {
    switch n := v.(type) {
    case int64:
        return n
    case string:
        parsed, _ := strconv.ParseInt(n, 10, 64)
        return parsed
    default:
        return 0
    }
}

// peekEmail reads the request body looking for an "email" field and restores
// the body so the handler can still bind it.  Only the first 4KB is parsed
// for the email; the unread remainder is stitched back behind the peeked
// prefix so larger payloads still reach the handler intact.
func peekEmail(c echo.Context) string {
    req := c.Request()
    if req.Body == nil {
        return ""
    }
    peeked, err := io.ReadAll(io.LimitReader(req.Body, 4096))
    req.Body = io.NopCloser(io.MultiReader(bytes.NewReader(peeked), req.Body))
    if err != nil {
        return ""
    }
    var payload struct {
        Email string `json:"email"`
    }
    if json.Unmarshal(peeked, &payload) != nil {
        return ""
    }
    return strings.ToLower(strings.TrimSpace(payload.Email))
}
