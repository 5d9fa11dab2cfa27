package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vitrinehq/vitrine/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage Vitrine configuration",
		Long:  "Initialize a default configuration file or display the current effective configuration.",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

// ---------- config init ----------

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default vitrine.yaml configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config file")

	return cmd
}

func runConfigInit(force bool) error {
	path := "vitrine.yaml"

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created %s\n", path)
	fmt.Println("Set auth.admin_email, auth.admin_password, and auth.token_secret, then run 'vitrine serve'.")
	return nil
}

// ---------- config show ----------

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	return cmd
}

func runConfigShow() error {
	// Ensure config is loaded
	initConfig()

	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		fmt.Printf("Config file: %s\n", configFile)
	} else {
		fmt.Println("Config file: (none found, using defaults)")
	}
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  server.host: %s\n", cfg.Server.Host)
	fmt.Printf("  server.port: %d\n", cfg.Server.Port)
	fmt.Printf("  server.base_url: %s\n", cfg.Server.BaseURL)
	fmt.Printf("  database.driver: %s\n", cfg.Database.Driver)
	fmt.Printf("  auth.admin_email: %s\n", cfg.Auth.AdminEmail)
	fmt.Printf("  auth.admin_password: %s\n", mask(cfg.Auth.AdminPassword))
	fmt.Printf("  auth.token_secret: %s\n", mask(cfg.Auth.TokenSecret))
	fmt.Printf("  smtp.host: %s\n", cfg.SMTP.Host)
	fmt.Printf("  uploads.dir: %s\n", cfg.Uploads.Dir)
	fmt.Printf("  logging.level: %s\n", cfg.Logging.Level)
	fmt.Printf("  telemetry.enabled: %t\n", cfg.Telemetry.Enabled)

	return nil
}

func mask(s string) string {
	if s == "" {
		return "(unset)"
	}
	return "********"
}
