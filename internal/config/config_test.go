package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdir moves into an empty directory so no ./config/config.yaml is picked up.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "5175" || cfg.Env != "local" || cfg.DatabasePath != "./data/app.db" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.Auth.JWTExpiresDays != 14 || cfg.Auth.CookieName != "flagquiz_token" {
		t.Errorf("unexpected auth defaults %+v", cfg.Auth)
	}
	if cfg.Production() {
		t.Error("default env should not be production")
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("JWT_EXPIRES_DAYS", "3")
	t.Setenv("COUNTRIES_FILE", "/etc/flags.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9000" || cfg.RedisURL != "redis://localhost:6379/1" || cfg.CountriesFile != "/etc/flags.yaml" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.SessionTTL != 90*time.Minute || cfg.Auth.JWTExpiresDays != 3 {
		t.Errorf("typed env not applied: ttl=%v days=%d", cfg.SessionTTL, cfg.Auth.JWTExpiresDays)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	doc := "port: \"7000\"\ndaily_salt: file_salt\nauth:\n  cookie_name: from_file\n"
	if err := os.WriteFile(filepath.Join(dir, "config", "config.yaml"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	t.Setenv("PORT", "7100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "7100" {
		t.Errorf("env should win over file, got port %s", cfg.Port)
	}
	if cfg.DailySalt != "file_salt" || cfg.Auth.CookieName != "from_file" {
		t.Errorf("file values not applied: %+v", cfg)
	}
}

func TestProductionNeedsSecret(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "production")
	if _, err := Load(); !errors.Is(err, ErrInsecureSecret) {
		t.Fatalf("expected ErrInsecureSecret, got %v", err)
	}

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Production() {
		t.Error("expected production")
	}
}
