package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Auth deployment profiles. Exactly one is active per process.
const (
	AuthModeToken = "token"
	AuthModeBasic = "basic"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Authentication
	AuthMode   string
	BCryptCost int
	SessionTTL time.Duration

	// Rate limiting
	RateLimitPerMinute int
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintech.db"),

		AuthMode:   getEnv("AUTH_MODE", AuthModeToken),
		BCryptCost: getEnvInt("BCRYPT_COST", 10),
		SessionTTL: getEnvDuration("SESSION_TTL", 8*time.Hour),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
	}

	return cfg
}

// Validate reports every invalid setting at once. It also creates the
// database directory, so a bad path surfaces here rather than at first
// write.
func (c *Config) Validate() error {
	var problems []error

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Errorf("port %q is not a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Errorf("port %d is out of range 1..65535", port))
	}

	if c.AuthMode != AuthModeToken && c.AuthMode != AuthModeBasic {
		problems = append(problems, fmt.Errorf("auth mode %q is not %q or %q", c.AuthMode, AuthModeToken, AuthModeBasic))
	}

	// bcrypt accepts costs 4..31
	if c.BCryptCost < 4 || c.BCryptCost > 31 {
		problems = append(problems, fmt.Errorf("bcrypt cost %d is out of range 4..31", c.BCryptCost))
	}

	if c.SessionTTL < time.Minute || c.SessionTTL > 30*24*time.Hour {
		problems = append(problems, fmt.Errorf("session TTL %v is out of range 1m..720h", c.SessionTTL))
	}

	if c.RateLimitPerMinute < 1 {
		problems = append(problems, fmt.Errorf("rate limit %d must allow at least 1 request per minute", c.RateLimitPerMinute))
	}

	if c.SQLiteDBPath == "" {
		problems = append(problems, fmt.Errorf("SQLite database path is empty"))
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			problems = append(problems, fmt.Errorf("create database directory %q: %w", dir, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(problems...))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
