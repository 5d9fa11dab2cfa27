package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vitrinehq/vitrine/internal/assets"
	"github.com/vitrinehq/vitrine/internal/handler"
	"github.com/vitrinehq/vitrine/internal/mailer"
	"github.com/vitrinehq/vitrine/internal/openapi"
	"github.com/vitrinehq/vitrine/internal/server/middleware"
	"github.com/vitrinehq/vitrine/internal/service"
	"github.com/vitrinehq/vitrine/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	BaseURL         string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	Version         string
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		BaseURL:         "http://localhost:8080",
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		Version:         "dev",
	}
}

// Server is the top-level HTTP server for Vitrine. It owns the Chi router,
// the store, the auth service, and the mailer.
type Server struct {
	cfg        Config
	router     chi.Router
	store      *store.Store
	authSvc    *service.AuthService
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
// The mailer and asset store may be nil; the corresponding endpoints degrade
// rather than the server refusing to start.
func New(cfg Config, st *store.Store, authSvc *service.AuthService, m *mailer.Mailer, as *assets.Store, primaryEmail string, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		authSvc: authSvc,
		logger:  logger,
	}
	s.setupRouter(m, as, primaryEmail)
	return s
}

func (s *Server) setupRouter(m *mailer.Mailer, as *assets.Store, primaryEmail string) {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))

	// --- Health checks (no auth required) ---
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	// --- OpenAPI spec (no auth required) ---
	spec := openapi.Generate(s.cfg.BaseURL, s.cfg.Version)
	r.Get("/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(spec)
	})

	publicHandler := handler.NewPublicHandler(s.store, m, s.logger)
	adminHandler := handler.NewAdminHandler(s.store, s.authSvc, as, primaryEmail, s.logger)

	r.Route("/api", func(r chi.Router) {

		// --- Public site surface ---
		r.Get("/posts", publicHandler.ListPosts)
		r.Get("/posts/{slug}", publicHandler.GetPost)
		r.Get("/products", publicHandler.ListProducts)
		r.Get("/products/{id}", publicHandler.GetProduct)
		r.Get("/banners/active", publicHandler.ActiveBanner)
		r.Post("/contact", publicHandler.Contact)
		r.Post("/subscribe", publicHandler.Subscribe)
		r.Get("/unsubscribe/{token}", publicHandler.Unsubscribe)

		// --- Admin surface ---
		r.Route("/admin", func(r chi.Router) {
			// Login is the only unauthenticated admin endpoint.
			r.Post("/login", adminHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(s.authSvc))

				// Banners
				r.Get("/banners", adminHandler.ListBanners)
				r.Post("/banners", adminHandler.CreateBanner)
				r.Get("/banners/{id}", adminHandler.GetBanner)
				r.Put("/banners/{id}", adminHandler.UpdateBanner)
				r.Delete("/banners/{id}", adminHandler.DeleteBanner)
				r.Post("/banners/{id}/activate", adminHandler.ActivateBanner)
				r.Post("/banners/{id}/deactivate", adminHandler.DeactivateBanner)

				// Blog posts
				r.Get("/posts", adminHandler.ListPosts)
				r.Post("/posts", adminHandler.CreatePost)
				r.Get("/posts/{id}", adminHandler.GetPost)
				r.Put("/posts/{id}", adminHandler.UpdatePost)
				r.Delete("/posts/{id}", adminHandler.DeletePost)

				// Products
				r.Get("/products", adminHandler.ListProducts)
				r.Post("/products", adminHandler.CreateProduct)
				r.Get("/products/{id}", adminHandler.GetProduct)
				r.Put("/products/{id}", adminHandler.UpdateProduct)
				r.Delete("/products/{id}", adminHandler.DeleteProduct)

				// Subscribers
				r.Get("/subscribers", adminHandler.ListSubscribers)

				// Uploads
				if as != nil {
					r.Post("/uploads", adminHandler.Upload)
				}

				// Account management is reserved for the super admin.
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireSuperAdmin())

					r.Get("/users", adminHandler.ListUsers)
					r.Post("/users", adminHandler.CreateUser)
					r.Delete("/users/{id}", adminHandler.DeleteUser)
				})
			})
		})
	})

	// --- Uploaded assets ---
	if as != nil {
		r.Handle("/uploads/*", as.Handler())
	}

	s.router = r
}

// handleHealthz is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe. Returns 200 when the database is
// reachable, or 503 otherwise.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if err := s.store.Ping(r.Context()); err != nil {
		checks["database"] = "error: " + err.Error()
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before closing the database.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Listen for shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in background goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing store", "error", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
