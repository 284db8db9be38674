// Package main is the entry point for the quote proxy service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsamuelsen/daily-inspiration/internal/adapters/clients"
	"github.com/jsamuelsen/daily-inspiration/internal/adapters/clients/acl"
	"github.com/jsamuelsen/daily-inspiration/internal/adapters/http"
	"github.com/jsamuelsen/daily-inspiration/internal/adapters/http/handlers"
	"github.com/jsamuelsen/daily-inspiration/internal/app"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/config"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/logging"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/telemetry"
	"github.com/jsamuelsen/daily-inspiration/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"
)

// Upstream host names used in logs, metrics and readiness checks.
const (
	primarySourceName  = "quotable-primary"
	fallbackSourceName = "quotable-fallback"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("primary", cfg.Services.Quote.PrimaryURL),
		slog.String("fallback", cfg.Services.Quote.FallbackURL),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	metrics := telemetry.NewQuoteMetrics("daily_inspiration")

	// 5. Create one upstream source per host (ACL pattern)
	healthRegistry := ports.NewHealthRegistry(cfg.Server.HealthCheckTimeout)

	primary, err := newUpstreamSource(cfg, primarySourceName, cfg.Services.Quote.PrimaryURL, metrics, logger)
	if err != nil {
		return err
	}

	fallback, err := newUpstreamSource(cfg, fallbackSourceName, cfg.Services.Quote.FallbackURL, metrics, logger)
	if err != nil {
		return err
	}

	for _, source := range []*acl.UpstreamSource{primary, fallback} {
		if err := healthRegistry.Register(source); err != nil {
			return fmt.Errorf("registering %s health check: %w", source.Name(), err)
		}
	}

	// 6. Create quote service (application layer)
	quoteService := app.NewQuoteService(app.QuoteServiceConfig{
		Sources: []ports.QuoteSource{primary, fallback},
		Metrics: metrics,
		Logger:  logger,
	})

	// 7. Create handlers
	buildInfo := handlers.NewBuildInfo(cfg.App.Name, Version, cfg.App.Environment, Commit)
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo, metrics.Handler())
	quoteHandler := handlers.NewQuoteHandler(quoteService)

	// 8. Create HTTP server and routes
	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.NewRouterConfig(cfg, healthHandler, quoteHandler))

	// 9. Start server (non-blocking)
	serverErr := server.Start()

	// 10. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

func newUpstreamSource(
	cfg *config.Config,
	name, baseURL string,
	metrics *telemetry.QuoteMetrics,
	logger *slog.Logger,
) (*acl.UpstreamSource, error) {
	client, err := clients.New(&clients.Config{
		BaseURL:     baseURL,
		ServiceName: name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Headers:     acl.UpstreamHeaders(),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", name, err)
	}

	return acl.NewUpstreamSource(acl.UpstreamSourceConfig{
		Client:  client,
		Path:    cfg.Services.Quote.Path,
		Metrics: metrics,
		Logger:  logger,
	}), nil
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
