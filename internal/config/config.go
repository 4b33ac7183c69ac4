package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIBaseURL is the hosted duty-attendance backend.
const DefaultAPIBaseURL = "https://teachersdutyattendancemanager.onrender.com/"

// Session storage backends.
const (
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// Config aggregates runtime configuration for the client.
type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Console ConsoleConfig
	Logger  LoggerConfig
	Report  ReportConfig
}

// AppConfig identifies the running binary.
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// APIConfig controls how the remote system of record is reached.
type APIConfig struct {
	BaseURL               string
	RequestTimeoutSeconds int
	RateLimitRPS          float64
	RateLimitBurst        int
}

// SessionConfig selects where the token pair is persisted.
type SessionConfig struct {
	Backend              string
	FilePath             string
	Passphrase           string
	RedisKey             string
	RefreshWindowSeconds int
	KeepAliveSeconds     int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ConsoleConfig controls the local dashboard server.
type ConsoleConfig struct {
	Host string
	Port string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Output string
}

// ReportConfig controls where downloaded reports land.
type ReportConfig struct {
	OutputDir string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	rps, err := strconv.ParseFloat(getEnv("API_RATE_LIMIT_RPS", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid API_RATE_LIMIT_RPS: %w", err)
	}

	backend := strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendFile))
	switch backend {
	case SessionBackendFile, SessionBackendRedis, SessionBackendMemory:
	default:
		return nil, fmt.Errorf("invalid SESSION_BACKEND %q", backend)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "duty-attendance"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		API: APIConfig{
			BaseURL:               getEnv("API_BASE_URL", DefaultAPIBaseURL),
			RequestTimeoutSeconds: getEnvAsInt("API_REQUEST_TIMEOUT_SECONDS", 30),
			RateLimitRPS:          rps,
			RateLimitBurst:        getEnvAsInt("API_RATE_LIMIT_BURST", 20),
		},
		Session: SessionConfig{
			Backend:    backend,
			FilePath:   getEnv("SESSION_FILE", defaultSessionFile()),
			Passphrase: os.Getenv("SESSION_PASSPHRASE"),
			RedisKey:   getEnv("SESSION_REDIS_KEY", "duty-attendance:session"),

			RefreshWindowSeconds: getEnvAsInt("SESSION_REFRESH_WINDOW_SECONDS", 60),
			KeepAliveSeconds:     getEnvAsInt("SESSION_KEEPALIVE_SECONDS", 30),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Console: ConsoleConfig{
			Host: getEnv("CONSOLE_HOST", "127.0.0.1"),
			Port: getEnv("CONSOLE_PORT", "8080"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Output: getEnv("LOG_OUTPUT", "stderr"),
		},
		Report: ReportConfig{
			OutputDir: getEnv("REPORT_OUTPUT_DIR", "."),
		},
	}

	return cfg, nil
}

// Addr returns the console bind address.
func (c ConsoleConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// RefreshWindow is how long before expiry the console refreshes ahead.
func (s SessionConfig) RefreshWindow() time.Duration {
	return time.Duration(s.RefreshWindowSeconds) * time.Second
}

// KeepAliveInterval is how often the console checks the token's expiry.
// Zero disables the check.
func (s SessionConfig) KeepAliveInterval() time.Duration {
	if s.KeepAliveSeconds <= 0 {
		return 0
	}
	return time.Duration(s.KeepAliveSeconds) * time.Second
}

// RequestTimeout returns the configured request timeout duration.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// defaultSessionFile follows the XDG layout: $XDG_CONFIG_HOME/duty-attendance/session.json.
func defaultSessionFile() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "duty-attendance-session.json")
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "duty-attendance", "session.json")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
