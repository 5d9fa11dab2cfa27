package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/vitrinehq/vitrine/internal/config"
	"github.com/vitrinehq/vitrine/internal/store"
)

// loadConfig builds the effective configuration: the YAML file named by
// --config (or ./vitrine.yaml when present), with ${VAR} expansion, on top
// of defaults. VITRINE_* environment variables picked up by viper override
// the auth secrets so they can stay out of the file.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("vitrine.yaml"); err == nil {
			path = "vitrine.yaml"
		}
	}

	var cfg *config.Config
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if v := viper.GetString("auth.admin_email"); v != "" {
		cfg.Auth.AdminEmail = v
	}
	if v := viper.GetString("auth.admin_password"); v != "" {
		cfg.Auth.AdminPassword = v
	}
	if v := viper.GetString("auth.token_secret"); v != "" {
		cfg.Auth.TokenSecret = v
	}
	if v := viper.GetString("database.dsn"); v != "" {
		cfg.Database.DSN = v
	}

	return cfg, nil
}

// openStore opens the configured database and runs migrations.
func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(store.Options{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
	})
}

// newLogger builds the process logger from the logging configuration.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
