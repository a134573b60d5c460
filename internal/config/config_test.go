package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/homefolio/realtorsites/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Addr)
	}
	if cfg.DatabasePath != "realtors.db" {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath)
	}
	if cfg.ClaimTTL != 7*24*time.Hour {
		t.Fatalf("unexpected claim ttl %v", cfg.ClaimTTL)
	}
	if cfg.TokenDuration != time.Hour {
		t.Fatalf("unexpected token duration %v", cfg.TokenDuration)
	}
	if cfg.WorkerCount != 2 {
		t.Fatalf("unexpected worker count %d", cfg.WorkerCount)
	}
	if cfg.SMTP.Host != "" || cfg.SMTP.Port != 587 {
		t.Fatalf("unexpected smtp defaults %+v", cfg.SMTP)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("REALTOR_ADDR", ":9999")
	t.Setenv("REALTOR_JWT_SECRET", "env-secret")
	t.Setenv("REALTOR_SMTP_HOST", "smtp.example.com")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.JWTSecret != "env-secret" || cfg.SMTP.Host != "smtp.example.com" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadConfigFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
addr: ":7070"
jwt_secret: file-secret
worker_count: 4
public_base_url: https://homefolio.example
smtp:
  host: mail.example.com
  port: 2525
  from: noreply@example.com
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.JWTSecret != "file-secret" {
		t.Fatalf("file overrides not applied: %+v", cfg)
	}
	if cfg.WorkerCount != 4 {
		t.Fatalf("unexpected worker count %d", cfg.WorkerCount)
	}
	// fields absent from the file keep their defaults
	if cfg.ClaimTTL != 7*24*time.Hour {
		t.Fatalf("unexpected claim ttl %v", cfg.ClaimTTL)
	}
	if cfg.PublicBaseURL != "https://homefolio.example" {
		t.Fatalf("unexpected public base url %q", cfg.PublicBaseURL)
	}
	if cfg.SMTP.Host != "mail.example.com" || cfg.SMTP.Port != 2525 || cfg.SMTP.From != "noreply@example.com" {
		t.Fatalf("smtp overrides not applied: %+v", cfg.SMTP)
	}
	if cfg.DatabasePath != "realtors.db" {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath)
	}

	if _, err := config.LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
