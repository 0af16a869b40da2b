// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr            string
	DatabaseURL     string
	RedisURL        string
	JWTSigningKey   string
	DefaultAgeGap   int
	ShutdownTimeout time.Duration
}

const defaultAgeGapYears = 5

// FromEnv reads QUARTERS_* variables, applying development defaults where
// unset. DatabaseURL empty means "run on the in-memory stores".
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("QUARTERS_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("QUARTERS_DATABASE_URL"),
		RedisURL:        os.Getenv("QUARTERS_REDIS_URL"),
		JWTSigningKey:   envOr("QUARTERS_JWT_SIGNING_KEY", "dev-secret-change-in-production"),
		DefaultAgeGap:   defaultAgeGapYears,
		ShutdownTimeout: 10 * time.Second,
	}

	if raw := os.Getenv("QUARTERS_DEFAULT_AGE_GAP"); raw != "" {
		if years, err := strconv.Atoi(raw); err == nil && years >= 1 && years <= 20 {
			cfg.DefaultAgeGap = years
		}
	}
	if raw := os.Getenv("QUARTERS_SHUTDOWN_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.ShutdownTimeout = d
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
