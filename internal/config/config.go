package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	ServerAddr      string
	LogLevel        slog.Level
	PermCacheTTL    time.Duration
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SnowflakeNode   int64
}

// Load reads configuration from the environment. DATABASE_URL and
// JWT_SECRET are mandatory; everything else has a default.
func Load() *Config {
	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        envOrDefault("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		ServerAddr:      envOrDefault("SERVER_ADDR", ":8080"),
		LogLevel:        parseLogLevel(os.Getenv("LOG_LEVEL")),
		PermCacheTTL:    envDuration("PERM_CACHE_TTL", 60*time.Second),
		AccessTokenTTL:  envDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: envDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		SnowflakeNode:   envInt64("SNOWFLAKE_NODE_ID", 0),
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		panic(fmt.Sprintf("required environment variables not set: %s", strings.Join(missing, ", ")))
	}

	return cfg
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		panic(fmt.Sprintf("invalid duration in %s: %q", key, v))
	}
	return d
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var n int64
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		panic(fmt.Sprintf("invalid integer in %s: %q", key, v))
	}
	return n
}
