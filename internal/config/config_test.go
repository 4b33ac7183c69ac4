package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("SESSION_BACKEND", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("SESSION_FILE", "")
	t.Setenv("API_REQUEST_TIMEOUT_SECONDS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != DefaultAPIBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.API.BaseURL, DefaultAPIBaseURL)
	}
	if cfg.Session.Backend != SessionBackendFile {
		t.Errorf("Backend = %q, want file", cfg.Session.Backend)
	}
	want := filepath.Join("/tmp/xdg", "duty-attendance", "session.json")
	if cfg.Session.FilePath != want {
		t.Errorf("FilePath = %q, want %q", cfg.Session.FilePath, want)
	}
	if cfg.API.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.API.RequestTimeout())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "REDIS")
	t.Setenv("API_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("CONSOLE_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.Backend != SessionBackendRedis {
		t.Errorf("Backend = %q, want redis", cfg.Session.Backend)
	}
	if cfg.API.RequestTimeout() != 0 {
		t.Errorf("RequestTimeout = %v, want 0", cfg.API.RequestTimeout())
	}
	if cfg.API.RateLimitRPS != 2.5 {
		t.Errorf("RateLimitRPS = %v, want 2.5", cfg.API.RateLimitRPS)
	}
	if cfg.Console.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr = %q", cfg.Console.Addr())
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "sqlite")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
