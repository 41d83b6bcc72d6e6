package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Auth (token verification for the external auth provider)
	AuthSecret string // HS256 signing secret shared with the auth provider
	AuthIssuer string // expected token issuer (optional, empty = skip check)

	// Change feed
	FeedInitialWait time.Duration // first wait between subscribe attempts
	FeedMaxWait     time.Duration // backoff cap between subscribe attempts
	FeedMaxAttempts int           // subscribe attempts before degrading to snapshot-only

	// Live sessions
	SessionIdleTTL     time.Duration // reap live sessions idle longer than this
	SessionReapEvery   time.Duration // interval between reaper sweeps
	StreamWriteTimeout time.Duration // per-message websocket write deadline

	// Seed import (optional, empty file = disabled)
	SeedFile           string        // path to the bookmarks seed YAML
	SeedReloadInterval time.Duration // interval to re-import the seed file

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedCIDRS   []string // optional, restrict /infra and /reload to specific IPs
	AllowedOrigins []string // browser origins allowed for CORS and websocket upgrades ("*" = any)
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	// Local dev convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("BOOKMARKD_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("BOOKMARKD_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("BOOKMARKD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("BOOKMARKD_PRETTY_LOG", true),

		// Auth
		AuthSecret: requireEnv("BOOKMARKD_AUTH_SECRET"),
		AuthIssuer: getenv("BOOKMARKD_AUTH_ISSUER", ""),

		// Change feed
		FeedInitialWait: mustDuration("BOOKMARKD_FEED_INITIAL_WAIT", 500*time.Millisecond),
		FeedMaxWait:     mustDuration("BOOKMARKD_FEED_MAX_WAIT", 5*time.Second),
		FeedMaxAttempts: getenvInt("BOOKMARKD_FEED_MAX_ATTEMPTS", 5),

		// Live sessions
		SessionIdleTTL:     mustDuration("BOOKMARKD_SESSION_IDLE_TTL", 30*time.Minute),
		SessionReapEvery:   mustDuration("BOOKMARKD_SESSION_REAP_INTERVAL", time.Minute),
		StreamWriteTimeout: mustDuration("BOOKMARKD_STREAM_WRITE_TIMEOUT", 10*time.Second),

		// Seed import
		SeedFile:           getenv("BOOKMARKD_SEED_FILE", ""), // Optional, empty = seed import disabled
		SeedReloadInterval: mustDuration("BOOKMARKD_SEED_RELOAD_INTERVAL", 24*time.Hour),

		// Redis settings
		RedisAddr:             requireEnv("BOOKMARKD_REDIS_ADDR"),
		RedisUser:             getenv("BOOKMARKD_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("BOOKMARKD_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("BOOKMARKD_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("BOOKMARKD_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts:   splitAndTrim(getenv("BOOKMARKD_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   splitAndTrim(getenv("BOOKMARKD_ALLOWED_CIDRS", "")),
		AllowedOrigins: splitAndTrim(getenv("BOOKMARKD_ALLOWED_ORIGINS", "*")),
		TrustProxy:     mustBool("BOOKMARKD_TRUST_PROXY", true),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: BOOKMARKD_REDIS_PASSWORD is required when BOOKMARKD_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		cfgCopy.AuthSecret = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
