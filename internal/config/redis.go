package config

import (
    "context"
    "crypto/tls"
    "os"
    "time"

    "github.com/redis/go-redis/v9"
)

// redisAddr resolves the server address from the environment.  REDIS_HOST +
// REDIS_PORT win over the REDIS_ADDR shorthand when both are set.
func redisAddr() string {
    if host := os.Getenv("REDIS_HOST"); host != "" {
        return host + ":" + envStr("REDIS_PORT", "6379")
    }
    return envStr("REDIS_ADDR", "localhost:6379")
}

// NewRedisClient connects to Redis using the REDIS_* environment variables
// and verifies the connection with a short ping.  Redis backs only the reset
// throttle and the browse cache, so a failed connection returns nil and both
// features switch themselves off rather than taking the server down.
func NewRedisClient() *redis.Client {
    opts := &redis.Options{
        Addr:     redisAddr(),
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       envInt("REDIS_DB", 0),
    }
    if envBool("REDIS_TLS", false) {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(opts)

    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        return nil
    }
    return client
}
