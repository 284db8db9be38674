// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/daily-inspiration/internal/domain"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/telemetry"
	"github.com/jsamuelsen/daily-inspiration/internal/ports"
)

// ProxyServiceName identifies the proxy in the error it returns when every
// upstream host fails.
const ProxyServiceName = "quote-proxy"

// QuoteService serves random quotes by walking an ordered list of upstream
// hosts and returning the first usable payload.
// It depends on port interfaces, not concrete implementations.
type QuoteService struct {
	sources []ports.QuoteSource
	metrics *telemetry.QuoteMetrics
	logger  *slog.Logger
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	// Sources are tried in order; the first is the primary host.
	Sources []ports.QuoteSource

	// Metrics is optional.
	Metrics *telemetry.QuoteMetrics

	Logger *slog.Logger
}

// NewQuoteService creates a new quote service with the provided dependencies.
// Panics if no source is configured or a source is nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if len(cfg.Sources) == 0 {
		panic("QuoteService: at least one source is required")
	}

	for i, s := range cfg.Sources {
		if s == nil {
			panic(fmt.Sprintf("QuoteService: source %d is nil", i))
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sources := make([]ports.QuoteSource, len(cfg.Sources))
	copy(sources, cfg.Sources)

	return &QuoteService{
		sources: sources,
		metrics: cfg.Metrics,
		logger:  logger,
	}
}

// FetchRandom returns the body of the first host that answers with a JSON
// document. Each host is called once. When every host fails the result is a
// domain.UnavailableError and the individual failures are joined into the
// log entry.
func (s *QuoteService) FetchRandom(ctx context.Context) (*domain.RawQuote, error) {
	logger := s.logger

	var errs []error

	for i, source := range s.sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		raw, err := source.FetchRandom(ctx)
		if err == nil {
			if i > 0 {
				logger.WarnContext(ctx, "served quote from fallback host",
					slog.String("source", source.Name()),
				)
			}

			return raw, nil
		}

		logger.WarnContext(ctx, "upstream host failed",
			slog.String("source", source.Name()),
			slog.Int("attempt", i+1),
			slog.Any("error", err),
		)

		errs = append(errs, err)
	}

	s.metrics.ObserveExhausted()

	logger.ErrorContext(ctx, "all upstream hosts failed",
		slog.Int("hosts", len(s.sources)),
		slog.Any("error", errors.Join(errs...)),
	)

	return nil, domain.NewUnavailableError(ProxyServiceName, "all upstream hosts failed")
}
