package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is Vitrine's immutable startup configuration. It is built once in
// the CLI from the YAML file plus environment overrides and passed by value
// into the components that need it; nothing reads ambient process state at
// request time.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig controls the HTTP server behavior.
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	BaseURL         string   `yaml:"base_url"` // public URL used in mail links
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// AuthConfig controls the admin access gate. AdminEmail/AdminPassword define
// the primary (super) admin; leaving them empty makes every guarded request
// fail with a server-misconfigured error rather than silently denying.
type AuthConfig struct {
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
	TokenSecret   string `yaml:"token_secret"`
	TokenTTL      string `yaml:"token_ttl"`
}

// DatabaseConfig selects the relational backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, postgres, mysql
	DSN    string `yaml:"dsn"`
}

// SMTPConfig controls outbound mail. An empty Host disables the mailer.
type SMTPConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	From      string `yaml:"from"`
	ContactTo string `yaml:"contact_to"` // recipient of contact-form mail
}

// UploadsConfig controls the local asset store.
type UploadsConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// TelemetryConfig controls anonymous usage reporting.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TokenTTLOrDefault parses the configured token TTL, defaulting to 24h.
func (a AuthConfig) TokenTTLOrDefault() time.Duration {
	if a.TokenTTL == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(a.TokenTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// ShutdownTimeoutOrDefault parses the shutdown timeout, defaulting to 30s.
func (s ServerConfig) ShutdownTimeoutOrDefault() time.Duration {
	if s.ShutdownTimeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(s.ShutdownTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Load reads and parses a YAML configuration file. Environment variables
// referenced as ${VAR_NAME} in the file are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	content := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// Default returns a Config pre-filled with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			BaseURL:         "http://localhost:8080",
			ShutdownTimeout: "30s",
			CORSOrigins:     []string{"*"},
		},
		Auth: AuthConfig{
			TokenTTL: "24h",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		Uploads: UploadsConfig{
			Dir: "uploads",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
		},
	}
}

// WriteDefault writes the default configuration to a YAML file.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
