//go:build integration

package integration

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/daily-inspiration/internal/adapters/clients"
	"github.com/jsamuelsen/daily-inspiration/internal/adapters/clients/acl"
	httpadapter "github.com/jsamuelsen/daily-inspiration/internal/adapters/http"
	"github.com/jsamuelsen/daily-inspiration/internal/adapters/http/handlers"
	"github.com/jsamuelsen/daily-inspiration/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/daily-inspiration/internal/app"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/clock"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/config"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/telemetry"
	"github.com/jsamuelsen/daily-inspiration/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Upstream behaviors.
const (
	modeServe = iota
	modeStatus
	modeInvalidJSON
	modeDrop
)

// fakeHost is a quotable.io host whose behavior can change between requests.
type fakeHost struct {
	*httptest.Server

	mu     sync.Mutex
	mode   int
	status int
	body   string
	hits   atomic.Int32
}

func newFakeHost() *fakeHost {
	h := &fakeHost{mode: modeStatus, status: http.StatusServiceUnavailable}
	h.Server = httptest.NewServer(http.HandlerFunc(h.serve))

	return h
}

func (h *fakeHost) serve(w http.ResponseWriter, _ *http.Request) {
	h.hits.Add(1)

	h.mu.Lock()
	mode, status, body := h.mode, h.status, h.body
	h.mu.Unlock()

	switch mode {
	case modeDrop:
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				_ = conn.Close()
				return
			}
		}

		w.WriteHeader(http.StatusBadGateway)
	case modeInvalidJSON:
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, "<html>not json</html>")
	case modeServe:
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	default:
		w.WriteHeader(status)
	}
}

func (h *fakeHost) set(mode, status int, body string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.mode, h.status, h.body = mode, status, body
}

// steppingClock never returns the same millisecond twice, so favorites saved
// back to back get distinct ids.
type steppingClock struct {
	clock.Real

	mu   sync.Mutex
	last time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.Real.Now()
	if !now.After(c.last.Add(time.Millisecond)) {
		now = c.last.Add(time.Millisecond)
	}

	c.last = now

	return now
}

// stack is an in-process proxy in front of two fake upstream hosts, plus the
// favorites database a quote view uses.
type stack struct {
	primary  *fakeHost
	fallback *fakeHost
	metrics  *telemetry.QuoteMetrics
	engine   *gin.Engine
	proxy    *httptest.Server
	dbPath   string
	stores   []*sqlite.Store
	clock    *steppingClock
}

func newStack(dir string, rl config.RateLimitConfig) (*stack, error) {
	s := &stack{
		primary:  newFakeHost(),
		fallback: newFakeHost(),
		metrics:  telemetry.NewQuoteMetrics("integration"),
		dbPath:   filepath.Join(dir, "favorites.db"),
		clock:    &steppingClock{Real: clock.New()},
	}

	primary, err := newUpstreamSource("quotable-primary", s.primary.URL, s.metrics)
	if err != nil {
		return nil, err
	}

	fallback, err := newUpstreamSource("quotable-fallback", s.fallback.URL, s.metrics)
	if err != nil {
		return nil, err
	}

	registry := ports.NewHealthRegistry(time.Second)
	for _, source := range []*acl.UpstreamSource{primary, fallback} {
		if err := registry.Register(source); err != nil {
			return nil, err
		}
	}

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Sources: []ports.QuoteSource{primary, fallback},
		Metrics: s.metrics,
		Logger:  discardLogger(),
	})

	s.engine = gin.New()
	httpadapter.SetupRouter(s.engine, httpadapter.RouterConfig{
		ServiceName:   "daily-inspiration",
		HealthHandler: handlers.NewHealthHandler(registry, handlers.NewBuildInfo("daily-inspiration", "integration", "test", "abc123"), s.metrics.Handler()),
		QuoteHandler:  handlers.NewQuoteHandler(service),
		Timeout:       5 * time.Second,
		RateLimit:     rl,
	})
	s.proxy = httptest.NewServer(s.engine)

	return s, nil
}

func newUpstreamSource(name, baseURL string, metrics *telemetry.QuoteMetrics) (*acl.UpstreamSource, error) {
	client, err := clients.New(&clients.Config{
		BaseURL:     baseURL,
		ServiceName: name,
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   config.DefaultClientCircuitMaxFailures,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
		Headers: acl.UpstreamHeaders(),
		Logger:  discardLogger(),
	})
	if err != nil {
		return nil, err
	}

	return acl.NewUpstreamSource(acl.UpstreamSourceConfig{
		Client:  client,
		Path:    "/random",
		Metrics: metrics,
		Logger:  discardLogger(),
	}), nil
}

// openView creates a quote view backed by the proxy and the stack's database.
func (s *stack) openView() (*app.QuoteView, *sqlite.Store, error) {
	client, err := clients.New(&clients.Config{
		BaseURL:     s.proxy.URL,
		ServiceName: acl.ProxyServiceName,
		Timeout:     2 * time.Second,
		Circuit: config.CircuitBreakerConfig{
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
		Logger: discardLogger(),
	})
	if err != nil {
		return nil, nil, err
	}

	store, err := sqlite.Open(s.dbPath, time.Now)
	if err != nil {
		return nil, nil, err
	}

	s.stores = append(s.stores, store)

	view := app.NewQuoteView(app.QuoteViewConfig{
		Fetcher:        acl.NewProxyClient(client, discardLogger()),
		Store:          store,
		Clock:          s.clock,
		AttemptTimeout: 2 * time.Second,
		RetryDelay:     10 * time.Millisecond,
		Logger:         discardLogger(),
	})

	return view, store, nil
}

func (s *stack) close() {
	for _, store := range s.stores {
		_ = store.Close()
	}

	s.proxy.Close()
	s.primary.Close()
	s.fallback.Close()
}

// newTestStack builds a stack that is torn down with the test.
func newTestStack(t *testing.T, rl config.RateLimitConfig) *stack {
	t.Helper()

	s, err := newStack(t.TempDir(), rl)
	if err != nil {
		t.Fatalf("building stack: %v", err)
	}

	t.Cleanup(s.close)

	return s
}
