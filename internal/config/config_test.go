package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kanban")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_PORT", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("AUTH_RATE_LIMIT", "")

	cfg := Load()
	if cfg.AppPort != "8080" {
		t.Fatalf("expected default port, got %q", cfg.AppPort)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Fatalf("expected 1h access ttl, got %v", cfg.AccessTokenTTL)
	}
	if cfg.AuthRateLimit != 5 || cfg.AuthRateWindow != time.Minute {
		t.Fatalf("unexpected auth rate limit %d/%v", cfg.AuthRateLimit, cfg.AuthRateWindow)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kanban")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REFRESH_TOKEN_TTL", "garbage")

	cfg := Load()
	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Fatalf("expected 5m, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RedisDB != 2 {
		t.Fatalf("expected redis db 2, got %d", cfg.RedisDB)
	}
	if cfg.RefreshTokenTTL != 30*24*time.Hour {
		t.Fatalf("invalid duration should fall back to default, got %v", cfg.RefreshTokenTTL)
	}
}

func TestLoadClientSessionFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KANBAN_SESSION_FILE", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("KANBAN_PROFILE_RETRIES", "7")

	cfg := LoadClient()
	if want := filepath.Join(dir, "kanban", "session.yaml"); cfg.SessionFile != want {
		t.Fatalf("session file = %q; want %q", cfg.SessionFile, want)
	}
	if cfg.ProfileRetries != 7 {
		t.Fatalf("expected 7 retries, got %d", cfg.ProfileRetries)
	}
}
