package config

import (
	"testing"
	"time"
)

// TestLoad_defaults verifies every setting falls back to a usable default.
func TestLoad_defaults(t *testing.T) {
	cfg := Load()

	if cfg.ListenAddr != ":8090" {
		t.Errorf("Expected default listen addr :8090, got %s", cfg.ListenAddr)
	}
	if cfg.APIBaseURL == "" {
		t.Error("Expected a default API base URL")
	}
	if cfg.SyncInterval != 15*time.Minute {
		t.Errorf("Expected default sync interval 15m, got %v", cfg.SyncInterval)
	}
	if cfg.SyncFlex != 5*time.Minute {
		t.Errorf("Expected default sync flex 5m, got %v", cfg.SyncFlex)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("Expected default HTTP timeout 30s, got %v", cfg.HTTPTimeout)
	}
}

// TestLoad_envOverrides verifies environment variables take precedence.
func TestLoad_envOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("API_BASE_URL", "http://localhost:3000")
	t.Setenv("DATA_DIR", "/tmp/catalog-test")
	t.Setenv("SYNC_INTERVAL", "1m")
	t.Setenv("SYNC_FLEX", "10s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.ListenAddr != ":9999" {
		t.Errorf("Expected listen addr :9999, got %s", cfg.ListenAddr)
	}
	if cfg.APIBaseURL != "http://localhost:3000" {
		t.Errorf("Expected overridden API base URL, got %s", cfg.APIBaseURL)
	}
	if cfg.DataDir != "/tmp/catalog-test" {
		t.Errorf("Expected overridden data dir, got %s", cfg.DataDir)
	}
	if cfg.SyncInterval != time.Minute {
		t.Errorf("Expected sync interval 1m, got %v", cfg.SyncInterval)
	}
	if cfg.SyncFlex != 10*time.Second {
		t.Errorf("Expected sync flex 10s, got %v", cfg.SyncFlex)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
}

// TestLoad_badDuration verifies malformed durations fall back rather than fail.
func TestLoad_badDuration(t *testing.T) {
	t.Setenv("SYNC_INTERVAL", "not-a-duration")
	t.Setenv("SYNC_FLEX", "-5m")

	cfg := Load()

	if cfg.SyncInterval != 15*time.Minute {
		t.Errorf("Expected fallback interval for malformed value, got %v", cfg.SyncInterval)
	}
	if cfg.SyncFlex != 5*time.Minute {
		t.Errorf("Expected fallback flex for negative value, got %v", cfg.SyncFlex)
	}
}
