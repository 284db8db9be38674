package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/daily-inspiration/internal/domain"
	"github.com/jsamuelsen/daily-inspiration/internal/mocks"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/telemetry"
	"github.com/jsamuelsen/daily-inspiration/internal/ports"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// exhaustedLine renders the exhausted counter the way /-/metrics exposes it.
func exhaustedLine(t *testing.T, m *telemetry.QuoteMetrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/-/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if strings.HasPrefix(line, "test_upstream_exhausted_total ") {
			return line
		}
	}

	return ""
}

const quoteBody = `{"_id":"abc","content":"Be water.","author":"Bruce Lee"}`

func TestNewQuoteService_PanicsWithoutSources(t *testing.T) {
	assert.Panics(t, func() {
		NewQuoteService(QuoteServiceConfig{Logger: slog.Default()})
	})
}

func TestNewQuoteService_PanicsOnNilSource(t *testing.T) {
	assert.PanicsWithValue(t, "QuoteService: source 1 is nil", func() {
		NewQuoteService(QuoteServiceConfig{
			Sources: []ports.QuoteSource{mocks.NewMockQuoteSource(t), nil},
		})
	})
}

func TestNewQuoteService_DefaultsLogger(t *testing.T) {
	svc := NewQuoteService(QuoteServiceConfig{
		Sources: []ports.QuoteSource{mocks.NewMockQuoteSource(t)},
		Logger:  nil, // Should default to slog.Default()
	})

	require.NotNil(t, svc)
	assert.NotNil(t, svc.logger)
}

func TestQuoteService_FetchRandom(t *testing.T) {
	tests := []struct {
		name          string
		setupPrimary  func(*mocks.MockQuoteSource)
		setupFallback func(*mocks.MockQuoteSource)
		expectedBody  string
		expectedFrom  string
		exhausted     string
	}{
		{
			name: "primary succeeds",
			setupPrimary: func(m *mocks.MockQuoteSource) {
				m.EXPECT().FetchRandom(mock.Anything).
					Return(&domain.RawQuote{Source: "primary", Body: []byte(quoteBody)}, nil)
			},
			setupFallback: func(*mocks.MockQuoteSource) {},
			expectedBody:  quoteBody,
			expectedFrom:  "primary",
			exhausted:     "test_upstream_exhausted_total 0",
		},
		{
			name: "primary fails, fallback succeeds",
			setupPrimary: func(m *mocks.MockQuoteSource) {
				m.EXPECT().FetchRandom(mock.Anything).
					Return(nil, domain.NewUnavailableError("primary", "HTTP 503"))
				m.EXPECT().Name().Return("primary")
			},
			setupFallback: func(m *mocks.MockQuoteSource) {
				m.EXPECT().FetchRandom(mock.Anything).
					Return(&domain.RawQuote{Source: "fallback", Body: []byte(quoteBody)}, nil)
				m.EXPECT().Name().Return("fallback")
			},
			expectedBody: quoteBody,
			expectedFrom: "fallback",
			exhausted:    "test_upstream_exhausted_total 0",
		},
		{
			name: "both fail",
			setupPrimary: func(m *mocks.MockQuoteSource) {
				m.EXPECT().FetchRandom(mock.Anything).
					Return(nil, errors.New("connection refused"))
				m.EXPECT().Name().Return("primary")
			},
			setupFallback: func(m *mocks.MockQuoteSource) {
				m.EXPECT().FetchRandom(mock.Anything).
					Return(nil, domain.NewUnavailableError("fallback", "invalid JSON body"))
				m.EXPECT().Name().Return("fallback")
			},
			exhausted: "test_upstream_exhausted_total 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := mocks.NewMockQuoteSource(t)
			fallback := mocks.NewMockQuoteSource(t)
			tt.setupPrimary(primary)
			tt.setupFallback(fallback)

			metrics := telemetry.NewQuoteMetrics("test")
			svc := NewQuoteService(QuoteServiceConfig{
				Sources: []ports.QuoteSource{primary, fallback},
				Metrics: metrics,
				Logger:  discardLogger(),
			})

			raw, err := svc.FetchRandom(context.Background())

			assert.Equal(t, tt.exhausted, exhaustedLine(t, metrics))

			if tt.expectedBody == "" {
				require.Error(t, err)
				assert.True(t, domain.IsUnavailable(err))
				assert.Nil(t, raw)

				var unavailable *domain.UnavailableError
				require.ErrorAs(t, err, &unavailable)
				assert.Equal(t, ProxyServiceName, unavailable.Service)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedBody, string(raw.Body))
			assert.Equal(t, tt.expectedFrom, raw.Source)
		})
	}
}

func TestQuoteService_FetchRandom_EachHostCalledOnce(t *testing.T) {
	primary := mocks.NewMockQuoteSource(t)
	fallback := mocks.NewMockQuoteSource(t)

	primary.EXPECT().FetchRandom(mock.Anything).Return(nil, errors.New("boom")).Once()
	primary.EXPECT().Name().Return("primary")
	fallback.EXPECT().FetchRandom(mock.Anything).Return(nil, errors.New("boom")).Once()
	fallback.EXPECT().Name().Return("fallback")

	svc := NewQuoteService(QuoteServiceConfig{
		Sources: []ports.QuoteSource{primary, fallback},
		Logger:  discardLogger(),
	})

	_, err := svc.FetchRandom(context.Background())

	require.Error(t, err)
	primary.AssertNumberOfCalls(t, "FetchRandom", 1)
	fallback.AssertNumberOfCalls(t, "FetchRandom", 1)
}

func TestQuoteService_FetchRandom_CanceledContextSkipsHosts(t *testing.T) {
	// No expectations: a canceled request must not reach any host.
	primary := mocks.NewMockQuoteSource(t)

	svc := NewQuoteService(QuoteServiceConfig{
		Sources: []ports.QuoteSource{primary},
		Logger:  discardLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	raw, err := svc.FetchRandom(ctx)

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
	assert.Nil(t, raw)
}

func TestQuoteService_FetchRandom_PassesContext(t *testing.T) {
	type key struct{}

	primary := mocks.NewMockQuoteSource(t)
	primary.EXPECT().FetchRandom(mock.Anything).
		RunAndReturn(func(ctx context.Context) (*domain.RawQuote, error) {
			assert.Equal(t, "req-1", ctx.Value(key{}))
			return &domain.RawQuote{Source: "primary", Body: []byte(quoteBody)}, nil
		})

	svc := NewQuoteService(QuoteServiceConfig{
		Sources: []ports.QuoteSource{primary},
		Logger:  discardLogger(),
	})

	_, err := svc.FetchRandom(context.WithValue(context.Background(), key{}, "req-1"))

	require.NoError(t, err)
}
