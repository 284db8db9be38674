package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen/daily-inspiration/internal/adapters/clients"
	"github.com/jsamuelsen/daily-inspiration/internal/domain"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/logging"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/telemetry"
)

// maxQuoteBody bounds an upstream payload. A random quote is well under 1KB.
const maxQuoteBody = 64 << 10

// UpstreamHeaders are sent on every upstream request: JSON only, never cached.
func UpstreamHeaders() http.Header {
	return http.Header{
		"Accept":        {"application/json"},
		"Cache-Control": {"no-cache, no-store"},
		"Pragma":        {"no-cache"},
	}
}

// UpstreamSourceConfig configures an UpstreamSource.
type UpstreamSourceConfig struct {
	// Client is bound to one upstream host; its ServiceName names the source.
	Client *clients.Client

	// Path is the random-quote path, e.g. "/random".
	Path string

	// Metrics is optional.
	Metrics *telemetry.QuoteMetrics

	Logger *slog.Logger
}

// UpstreamSource implements ports.QuoteSource and ports.HealthChecker for
// one quotable.io host.
type UpstreamSource struct {
	client  *clients.Client
	path    string
	metrics *telemetry.QuoteMetrics
	logger  *slog.Logger
}

// NewUpstreamSource creates an UpstreamSource. Panics if Client is nil.
func NewUpstreamSource(cfg UpstreamSourceConfig) *UpstreamSource {
	if cfg.Client == nil {
		panic("UpstreamSource: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &UpstreamSource{
		client:  cfg.Client,
		path:    cfg.Path,
		metrics: cfg.Metrics,
		logger:  logger.With(slog.String("source", cfg.Client.Name())),
	}
}

// Name returns the upstream host's service name.
func (s *UpstreamSource) Name() string {
	return s.client.Name()
}

// FetchRandom performs one GET against the host and returns the body if the
// status is 2xx and the body is a JSON document.
func (s *UpstreamSource) FetchRandom(ctx context.Context) (*domain.RawQuote, error) {
	url := s.client.BaseURL() + s.path
	s.logger.Log(ctx, logging.LevelTrace, "requesting upstream quote", slog.String("url", url))

	resp, err := s.client.Get(ctx, s.path)
	if err != nil {
		s.observe(err)

		var statusErr *clients.StatusError
		attrs := []any{slog.String("url", url), slog.Any("error", err)}

		if errors.As(err, &statusErr) {
			attrs = append(attrs, slog.Int("status", statusErr.StatusCode), slog.String("body", bodyExcerpt([]byte(statusErr.Body))))
		}

		s.logger.WarnContext(ctx, "upstream request failed", attrs...)

		return nil, MapHTTPError(nil, err, s.Name())
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxQuoteBody))
	if err != nil {
		s.observe(err)
		s.logger.WarnContext(ctx, "reading upstream body failed", slog.String("url", url), slog.Any("error", err))

		return nil, domain.NewUnavailableError(s.Name(), fmt.Sprintf("reading body: %v", err))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		s.observe(errNonSuccess)
		s.logger.WarnContext(ctx, "upstream returned non-success status",
			slog.String("url", url),
			slog.Int("status", resp.StatusCode),
			slog.String("status_text", http.StatusText(resp.StatusCode)),
			slog.String("body", bodyExcerpt(body)),
		)

		return nil, domain.NewUnavailableError(s.Name(), statusReason(resp.StatusCode, body))
	}

	if !json.Valid(body) {
		s.observe(errNonSuccess)
		s.logger.WarnContext(ctx, "upstream returned invalid JSON",
			slog.String("url", url),
			slog.Int("status", resp.StatusCode),
			slog.String("content_type", resp.Header.Get("Content-Type")),
			slog.String("body", bodyExcerpt(body)),
		)

		return nil, domain.NewUnavailableError(s.Name(), "response is not valid JSON")
	}

	s.observe(nil)
	s.logger.Log(ctx, logging.LevelTrace, "upstream quote received", slog.Int("bytes", len(body)))

	return &domain.RawQuote{Source: s.Name(), Body: body}, nil
}

var errNonSuccess = errors.New("non-success response")

func (s *UpstreamSource) observe(err error) {
	switch {
	case err == nil:
		s.metrics.ObserveAttempt(s.Name(), telemetry.OutcomeSuccess)
	case errors.Is(err, clients.ErrCircuitOpen):
		s.metrics.ObserveAttempt(s.Name(), telemetry.OutcomeCircuitOpen)
	default:
		s.metrics.ObserveAttempt(s.Name(), telemetry.OutcomeFailure)
	}
}

// Check reports the host unhealthy while its circuit breaker is open.
// It does not call the host.
func (s *UpstreamSource) Check(context.Context) error {
	if state := s.client.CircuitState(); state == clients.StateOpen {
		return fmt.Errorf("circuit breaker %s", state)
	}

	return nil
}
