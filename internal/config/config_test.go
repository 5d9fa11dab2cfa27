package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected default driver sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Auth.AdminEmail != "" {
		t.Errorf("expected no default primary admin, got %q", cfg.Auth.AdminEmail)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("expected telemetry enabled by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestTokenTTLOrDefault(t *testing.T) {
	tests := []struct {
		ttl  string
		want time.Duration
	}{
		{"", 24 * time.Hour},
		{"1h", time.Hour},
		{"90m", 90 * time.Minute},
		{"not-a-duration", 24 * time.Hour},
	}
	for _, tt := range tests {
		cfg := AuthConfig{TokenTTL: tt.ttl}
		if got := cfg.TokenTTLOrDefault(); got != tt.want {
			t.Errorf("TokenTTLOrDefault(%q) = %v, want %v", tt.ttl, got, tt.want)
		}
	}
}

func TestShutdownTimeoutOrDefault(t *testing.T) {
	if got := (ServerConfig{}).ShutdownTimeoutOrDefault(); got != 30*time.Second {
		t.Errorf("expected 30s default, got %v", got)
	}
	if got := (ServerConfig{ShutdownTimeout: "5s"}).ShutdownTimeoutOrDefault(); got != 5*time.Second {
		t.Errorf("expected 5s, got %v", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vitrine.yaml")

	content := `
server:
  port: 9000
  cors_origins:
    - https://example.com
auth:
  admin_email: owner@example.com
  admin_password: hunter22
  token_secret: s3cret
database:
  driver: postgres
  dsn: postgres://localhost/vitrine
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://example.com" {
		t.Errorf("unexpected cors_origins: %v", cfg.Server.CORSOrigins)
	}
	if cfg.Auth.AdminEmail != "owner@example.com" {
		t.Errorf("unexpected admin_email %q", cfg.Auth.AdminEmail)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("unexpected driver %q", cfg.Database.Driver)
	}
	// Unset fields keep their defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected default host preserved, got %q", cfg.Server.Host)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level preserved, got %q", cfg.Logging.Level)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("VITRINE_TEST_SECRET", "from-env")

	dir := t.TempDir()
	path := filepath.Join(dir, "vitrine.yaml")
	content := "auth:\n  token_secret: ${VITRINE_TEST_SECRET}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.TokenSecret != "from-env" {
		t.Errorf("expected env expansion, got %q", cfg.Auth.TokenSecret)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for a missing config file")
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vitrine.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Database.Driver != "sqlite" {
		t.Errorf("round-tripped defaults differ: %+v", cfg)
	}
}
