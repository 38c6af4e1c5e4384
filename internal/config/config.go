package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"kanban_board/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	AppVersion    string
	DatabaseURL   string
	JWTSecret     string
	AllowedOrigin string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	AuthRateLimit  int
	AuthRateWindow time.Duration

	WriteRateLimit  int
	WriteRateWindow time.Duration

	LogLevel string
	LogJSON  bool
}

// Load reads the server configuration from env (and .env when present).
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "dev"
	}

	return &Config{
		AppPort:         port,
		AppVersion:      version,
		DatabaseURL:     dbURL,
		JWTSecret:       jwtSecret,
		AllowedOrigin:   os.Getenv("ALLOWED_ORIGIN"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         envInt("REDIS_DB", 0),
		AccessTokenTTL:  envDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: envDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		AuthRateLimit:   envInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow:  time.Duration(envInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,
		WriteRateLimit:  envInt("WRITE_RATE_LIMIT", 120),
		WriteRateWindow: time.Duration(envInt("WRITE_RATE_WINDOW_SECONDS", 60)) * time.Second,
		LogLevel:        envString("LOG_LEVEL", "info"),
		LogJSON:         os.Getenv("LOG_JSON") == "true",
	}
}

// ClientConfig drives the kanban CLI.
type ClientConfig struct {
	BaseURL           string
	SessionFile       string
	Timeout           time.Duration
	ProfileRetries    int
	ProfileRetryDelay time.Duration
	LogLevel          string
}

// LoadClient reads the CLI configuration. Nothing is required; defaults target a local server.
func LoadClient() *ClientConfig {
	_ = godotenv.Load()

	sessionFile := os.Getenv("KANBAN_SESSION_FILE")
	if sessionFile == "" {
		sessionFile = filepath.Join(DefaultConfigDir(), "session.yaml")
	}

	return &ClientConfig{
		BaseURL:           envString("KANBAN_URL", "http://127.0.0.1:8080"),
		SessionFile:       sessionFile,
		Timeout:           envDuration("KANBAN_TIMEOUT", 15*time.Second),
		ProfileRetries:    envInt("KANBAN_PROFILE_RETRIES", 3),
		ProfileRetryDelay: envDuration("KANBAN_PROFILE_RETRY_DELAY", 500*time.Millisecond),
		LogLevel:          envString("LOG_LEVEL", "warn"),
	}
}

// DefaultConfigDir uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kanban")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "kanban"
	}
	return filepath.Join(home, ".config", "kanban")
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		logger.Warn("ignoring invalid integer", "key", key, "value", v)
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		logger.Warn("ignoring invalid duration", "key", key, "value", v)
	}
	return def
}
