package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types

    "github.com/joho/godotenv" // optional .env file support for local development
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time-to-live in minutes
    RefreshTTLDays int    // refresh token time-to-live in days
    BcryptCost     int    // bcrypt cost for password hashing
    ResetTTLMin    int    // password reset token time-to-live in minutes
    VerifyTTLMin   int    // email verification token time-to-live in minutes
    FrontendURL    string // base URL used when building email links
    EmailFrom      string // From address for outbound mail
    ResendAPIKey   string // resend.com API key (empty disables real sending)
    RabbitURL      string // AMQP broker URL for the email queue
    MigrationsPath string // source path for schema migrations
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file is applied first when present so local development
// does not need exported variables.  Required variables are enforced by
// must() and missing values cause the program to exit with a fatal log
// message.
func Load() Config {
    _ = godotenv.Load() // the file is optional

    return Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty allowed
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 30),
        RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),
        BcryptCost:     envInt("BCRYPT_COST", 10),
        ResetTTLMin:    envInt("RESET_TOKEN_TTL_MIN", 60),
        VerifyTTLMin:   envInt("VERIFY_TOKEN_TTL_MIN", 15),
        FrontendURL:    envStr("FRONTEND_URL", "http://localhost:4200"),
        EmailFrom:      envStr("EMAIL_FROM", "Poker Signup <noreply@localhost>"),
        ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
        RabbitURL:      os.Getenv("RABBITMQ_URL"),
        MigrationsPath: envStr("MIGRATIONS_PATH", "file://migrations"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// envStr returns the variable's value or a default when unset.
func envStr(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// envInt is like envStr but converts the value to an integer.  Invalid
// numbers fall back to the default rather than aborting startup.
func envInt(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        log.Printf("invalid int for %s: %q, using %d", key, v, def)
        return def
    }
    return n
}
