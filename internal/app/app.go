package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"emiscli/internal/config"
	apierrors "emiscli/internal/errors"
	"emiscli/internal/infrastructure"
	customMiddleware "emiscli/internal/middleware"
	"emiscli/internal/services"
	handlers "emiscli/internal/transport/http"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Application wires the dashboard API server: configuration, logging,
// the dashboard data service and the HTTP surface.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Router  chi.Router
	Server  *http.Server
	Service *services.DashboardService
}

// NewApplication builds a ready-to-run application from configuration.
// The dataset is loaded eagerly so a bad path fails at startup, not on
// the first request.
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	datasetPath := cfg.Pipeline.ResolveOutputPath()
	service, err := services.NewDashboardService(logger, datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load prepared dataset: %w", err)
	}

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Service: service,
	}
	app.setupRouter()
	app.createServer()

	return app, nil
}

// setupRouter configures the HTTP router with all routes.
// Middleware ordering: RequestID → RealIP → Logger → Recoverer → the rest.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.Compress(5))

	if a.Config.Server.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.Service, a.Logger, Version)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)

		errorHandler := apierrors.NewErrorHandler(a.Logger)
		dashboardHandler := handlers.NewDashboardHandler(a.Service, a.Logger, errorHandler)
		r.Mount("/dashboard", dashboardHandler.Routes())
	})

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Run starts the server and blocks until SIGINT/SIGTERM or a listener
// failure, then shuts down gracefully within the configured timeout.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("server starting",
			slog.String("addr", a.Server.Addr),
			slog.String("dataset", a.Service.DatasetPath()),
			slog.Int("rows", a.Service.RowCount()),
			slog.String("version", Version))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return a.Stop()
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.Logger.Info("server stopped")
	return nil
}

// Stop shuts the server down gracefully.
func (a *Application) Stop() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.Info("shutting down server",
		slog.Duration("timeout", a.Config.Server.ShutdownTimeout))

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	infrastructure.CloseLogFile()
	return nil
}
