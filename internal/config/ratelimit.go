package config

import (
    "os"
    "strconv"
    "time"
)

// ResetRateLimitConfig controls throttling for the password-reset and
// resend-verification endpoints.  These are the only routes the application
// rate limits: each client IP and each target email address gets a small
// bucket that refills slowly, so a caller cannot farm reset links or probe
// for accounts.  The defaults match the upstream policy of 3 requests per
// hour per key.
type ResetRateLimitConfig struct {
    Enabled        bool
    Capacity       int           // bucket size (requests allowed per window)
    RefillInterval time.Duration // time for one token to come back
    TTL            time.Duration // idle expiry of bucket state in Redis
    Prefix         string        // Redis key namespace
    Debug          bool
}

// LoadResetRateLimitConfig reads the RESET_RATE_* environment variables and
// applies sane floors so a misconfigured value cannot disable refills.
func LoadResetRateLimitConfig() ResetRateLimitConfig {
    cfg := ResetRateLimitConfig{
        Enabled:        envBool("RESET_RATE_ENABLED", true),
        Capacity:       envInt("RESET_RATE_CAPACITY", 3),
        RefillInterval: envDur("RESET_RATE_REFILL_EVERY", 20*time.Minute),
        TTL:            envDur("RESET_RATE_TTL", 2*time.Hour),
        Prefix:         envStr("RESET_RATE_PREFIX", "rl:reset"),
        Debug:          envBool("RESET_RATE_DEBUG", false),
    }
    if cfg.Capacity < 1 {
        cfg.Capacity = 1
    }
    if cfg.RefillInterval <= 0 {
        cfg.RefillInterval = time.Minute
    }
    minTTL := 2 * cfg.RefillInterval
    if cfg.TTL < minTTL {
        cfg.TTL = minTTL
    }
    return cfg
}

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    switch v {
    case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
        return true
    case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
        return false
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if dur, err := time.ParseDuration(v); err == nil {
        return dur
    }
    return d
}

// CacheConfig defines settings for the response cache middleware applied to
// the public venue and game listings.  When Enabled is false or no Redis
// client is configured, caching is disabled.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        Prefix:       envStr("CACHE_PREFIX", "cache"),
        MaxBodyBytes: atoiDefault(os.Getenv("CACHE_MAX_BODY_BYTES"), 1<<20),
    }
}

func atoiDefault(s string, d int) int {
    if s == "" {
        return d
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        return d
    }
    return n
}
