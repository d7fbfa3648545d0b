package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	// Optional Redis URL; enables the cross-request title catalog cache
	RedisURL        string
	CatalogCacheTTL time.Duration

	// Congress session used for title catalog lookups
	Congress int

	// Upper bound for a single castVote transaction
	CastTimeout time.Duration

	// Points action awarded on a brand-new poll vote
	PollVoteAction string

	// Allowed browser origins; empty allows none
	CORSOrigins []string
}

// Load reads configuration from environment variables.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	congress := getInt("CONGRESS", 119)
	if congress <= 0 {
		return nil, fmt.Errorf("CONGRESS must be positive, got %d", congress)
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: dbURL,

		RedisURL:        os.Getenv("REDIS_URL"),
		CatalogCacheTTL: getDuration("CATALOG_CACHE_TTL", 24*time.Hour),

		Congress:       congress,
		CastTimeout:    getDuration("CAST_TIMEOUT", 5*time.Second),
		PollVoteAction: getEnv("POLL_VOTE_ACTION", "poll_voted"),
		CORSOrigins:    getList("CORS_ORIGINS"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getList splits a comma-separated variable, dropping blanks
func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
