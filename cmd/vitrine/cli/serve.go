package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vitrinehq/vitrine/internal/assets"
	"github.com/vitrinehq/vitrine/internal/mailer"
	"github.com/vitrinehq/vitrine/internal/server"
	"github.com/vitrinehq/vitrine/internal/service"
	"github.com/vitrinehq/vitrine/internal/store"
	"github.com/vitrinehq/vitrine/internal/telemetry"
)

const banner = `
__   _____ _____ ___ ___ _  _ ___
\ \ / /_ _|_   _| _ \_ _| \| | __|
 \ V / | |  | | |   /| || .' | _|
  \_/ |___| |_| |_|_\___|_|\_|___|
`

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Vitrine API server",
		Long:  "Start the HTTP server that exposes the public site API and the admin API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP listen port (overrides config)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP listen host (overrides config)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(host string, port int) error {
	fmt.Print(banner)
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	logger := newLogger(cfg.Logging)

	// 1. Open the store and run migrations.
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	logger.Info("store ready", "driver", st.Driver())

	// 2. Auth service and the primary admin check.
	authSvc := service.NewAuthService(st, cfg.Auth)
	if !authSvc.Configured() {
		logger.Warn("no primary admin configured - set auth.admin_email and auth.admin_password; every admin request will fail with 500 until then")
	}
	if cfg.Auth.TokenSecret == "" {
		logger.Warn("auth.token_secret is empty - tokens will not survive restarts securely")
	}

	// 3. Outbound mail. An empty SMTP host disables it; the contact form
	// then answers 502 and welcome mail is skipped.
	m, err := mailer.New(cfg.SMTP, cfg.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}
	if m == nil {
		logger.Warn("smtp not configured - contact form and welcome mail disabled")
	}

	// 4. Local asset store for uploaded images.
	var as *assets.Store
	if cfg.Uploads.Dir != "" {
		as, err = assets.NewStore(cfg.Uploads.Dir)
		if err != nil {
			return fmt.Errorf("init uploads dir: %w", err)
		}
	}

	// 5. Telemetry.
	ctx := context.Background()
	var tracker *telemetry.Tracker
	if cfg.Telemetry.Enabled {
		tracker = telemetry.New(ctx, st, func() telemetry.Properties {
			return gatherTelemetry(ctx, st, m != nil)
		})
		if tracker != nil {
			telemetry.PrintNotice()
			tracker.Start()
			defer tracker.Shutdown()
		}
	}

	// 6. Build and start the HTTP server.
	srvCfg := server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		BaseURL:         cfg.Server.BaseURL,
		ShutdownTimeout: cfg.Server.ShutdownTimeoutOrDefault(),
		CORSOrigins:     cfg.Server.CORSOrigins,
		Version:         appVersion,
	}

	srv := server.New(srvCfg, st, authSvc, m, as, cfg.Auth.AdminEmail, logger)

	fmt.Printf("→ Vitrine %s\n", appVersion)
	fmt.Printf("→ Listening on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("→ OpenAPI:    http://%s:%d/openapi.json\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("→ Health:     http://%s:%d/healthz\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()

	return srv.ListenAndServe()
}

// gatherTelemetry snapshots anonymous usage counts for the heartbeat event.
func gatherTelemetry(ctx context.Context, st *store.Store, mailEnabled bool) telemetry.Properties {
	props := telemetry.Properties{
		Version:     appVersion,
		GoVersion:   runtime.Version(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		DBDriver:    st.Driver(),
		MailEnabled: mailEnabled,
	}

	if n, err := st.CountPosts(ctx, false); err == nil {
		props.Posts = n
	}
	if n, err := st.CountSubscribers(ctx); err == nil {
		props.Subscribers = n
	}
	if products, err := st.ListProducts(ctx, false); err == nil {
		props.Products = int64(len(products))
	}
	if banners, err := st.ListBanners(ctx); err == nil {
		props.Banners = len(banners)
	}
	if admins, err := st.ListAdmins(ctx); err == nil {
		props.Admins = len(admins)
	}
	return props
}
