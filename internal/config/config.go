// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the catalog service.
type Config struct {
	// HTTP
	ListenAddr string

	// Remote product service
	APIBaseURL  string
	HTTPTimeout time.Duration

	// Local storage
	DataDir string

	// Sync scheduling
	SyncInterval time.Duration
	SyncFlex     time.Duration

	// Logging
	LogLevel string
}

// Load reads configuration from the environment. Every setting has a default
// so a bare process starts with a usable local configuration.
func Load() *Config {
	if os.Getenv("ENV") != "production" {
		_ = godotenv.Load() // optional .env for local
	}

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8090"),

		APIBaseURL:  getEnv("API_BASE_URL", "https://app.getswipe.in"),
		HTTPTimeout: getDuration("HTTP_TIMEOUT", 30*time.Second),

		DataDir: getEnv("DATA_DIR", "./data"),

		SyncInterval: getDuration("SYNC_INTERVAL", 15*time.Minute),
		SyncFlex:     getDuration("SYNC_FLEX", 5*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
