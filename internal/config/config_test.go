package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "SESSION_BACKEND", "JWT_TTL", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_RPS", "SEED_DEFAULT_USERS"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8000" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.SessionBackend != SessionBackendMemory {
		t.Fatalf("expected memory session backend by default, got %s", cfg.SessionBackend)
	}
	if cfg.JWTTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day token ttl, got %s", cfg.JWTTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard cors default, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRPS != 10 || cfg.RateLimitBurst != 20 {
		t.Fatalf("unexpected rate limit defaults %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if !cfg.SeedDefaultUsers {
		t.Fatalf("expected default user seeding enabled")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("SESSION_BACKEND", " Redis ")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SEED_DEFAULT_USERS", "false")
	cfg := Load()
	if cfg.Port != "9090" || cfg.Env != "production" {
		t.Fatalf("expected overrides, got port=%s env=%s", cfg.Port, cfg.Env)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.SessionBackend != SessionBackendRedis {
		t.Fatalf("expected normalized redis backend, got %q", cfg.SessionBackend)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Fatalf("expected session ttl override, got %s", cfg.SessionTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRPS != 2.5 || cfg.RedisDB != 3 {
		t.Fatalf("unexpected numeric overrides %v %d", cfg.RateLimitRPS, cfg.RedisDB)
	}
	if cfg.SeedDefaultUsers {
		t.Fatalf("expected seeding disabled")
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_TTL", "soon")
	t.Setenv("RATE_LIMIT_BURST", "many")
	cfg := Load()
	if cfg.JWTTTL != 7*24*time.Hour {
		t.Fatalf("expected default ttl on parse failure, got %s", cfg.JWTTTL)
	}
	if cfg.RateLimitBurst != 20 {
		t.Fatalf("expected default burst on parse failure, got %d", cfg.RateLimitBurst)
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "Asia/Manila"}
	if got := cfg.Location().String(); got != "Asia/Manila" {
		t.Fatalf("expected Asia/Manila, got %s", got)
	}
	cfg.Timezone = "Not/AZone"
	if cfg.Location() != time.Local {
		t.Fatalf("expected local fallback for unknown zone")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("CLINIC_DOTENV_PROBE=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("CLINIC_DOTENV_PROBE") })

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("CLINIC_DOTENV_PROBE"); got != "from-file" {
		t.Fatalf("expected value from env file, got %q", got)
	}
}
