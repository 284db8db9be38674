package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/daily-inspiration/internal/adapters/http/handlers"
	"github.com/jsamuelsen/daily-inspiration/internal/adapters/http/middleware"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/config"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/telemetry"
)

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// ServiceName names the server spans.
	ServiceName string

	// HealthHandler serves the /-/ endpoints. Optional.
	HealthHandler *handlers.HealthHandler

	// QuoteHandler serves GET /api/quote. Optional.
	QuoteHandler *handlers.QuoteHandler

	// Timeout is the deadline put on /api requests. Zero disables it.
	Timeout time.Duration

	// RateLimit throttles /api/quote.
	RateLimit config.RateLimitConfig
}

// NewRouterConfig builds a RouterConfig from the loaded configuration.
func NewRouterConfig(cfg *config.Config, health *handlers.HealthHandler, quote *handlers.QuoteHandler) RouterConfig {
	return RouterConfig{
		ServiceName:   cfg.App.Name,
		HealthHandler: health,
		QuoteHandler:  quote,
		Timeout:       cfg.Server.RequestTimeout,
		RateLimit:     cfg.RateLimit,
	}
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips /-/ endpoints)
//
// Route groups:
//   - /-/ (internal): health, build info and metrics, no timeout
//   - /api/ (public): the quote proxy, with timeout and rate limit
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(middleware.Recovery(), middleware.RequestID(), middleware.CorrelationID())
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(middleware.Logging())

	engine.NoRoute(notFound)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	api := engine.Group("/api")
	api.Use(middleware.Timeout(cfg.Timeout))

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(api, middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
}
