package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tournaments")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != 5200 {
		t.Fatalf("expected default port 5200, got %d", cfg.Port)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.StatusSyncInterval != time.Minute {
		t.Fatalf("expected 1m sync interval, got %s", cfg.StatusSyncInterval)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("default env must not be development")
	}
	if cfg.R2.Enabled() {
		t.Fatalf("R2 must be disabled without credentials")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tournaments")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "development")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_ACCESS_KEY_SECRET", "secret")
	t.Setenv("R2_BUCKET_NAME", "media")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Addr())
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env")
	}
	if !cfg.R2.Enabled() || cfg.R2.Bucket != "media" {
		t.Fatalf("unexpected r2 config: %+v", cfg.R2)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.AllowedOrigins)
	}
}

func TestParseRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := Parse(); err == nil {
		t.Fatalf("expected error when required variables are missing")
	}
}

func TestParseRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tournaments")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TOKEN_TTL", "0s")

	if _, err := Parse(); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}
