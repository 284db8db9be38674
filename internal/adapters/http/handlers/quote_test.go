package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/daily-inspiration/internal/adapters/http/dto"
	"github.com/jsamuelsen/daily-inspiration/internal/app"
	"github.com/jsamuelsen/daily-inspiration/internal/domain"
	"github.com/jsamuelsen/daily-inspiration/internal/mocks"
	"github.com/jsamuelsen/daily-inspiration/internal/ports"
)

const upstreamBody = `{"_id":"abc","content":"Be water.","author":"Bruce Lee","tags":["wisdom"],"length":9}`

// setupQuoteHandler wires a QuoteHandler over a real QuoteService with mock sources.
func setupQuoteHandler(t *testing.T, setupPrimary, setupFallback func(*mocks.MockQuoteSource)) *QuoteHandler {
	t.Helper()

	primary := mocks.NewMockQuoteSource(t)
	fallback := mocks.NewMockQuoteSource(t)

	if setupPrimary != nil {
		setupPrimary(primary)
	}

	if setupFallback != nil {
		setupFallback(fallback)
	}

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Sources: []ports.QuoteSource{primary, fallback},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return NewQuoteHandler(service)
}

func serveQuote(h *QuoteHandler) *httptest.ResponseRecorder {
	router := gin.New()
	h.RegisterQuoteRoutes(router.Group("/api"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quote", nil))

	return w
}

func TestQuoteHandler_GetQuote(t *testing.T) {
	tests := []struct {
		name           string
		setupPrimary   func(*mocks.MockQuoteSource)
		setupFallback  func(*mocks.MockQuoteSource)
		expectedStatus int
		expectedBody   string
		expectedSource string
	}{
		{
			name: "primary answers",
			setupPrimary: func(m *mocks.MockQuoteSource) {
				m.EXPECT().FetchRandom(mock.Anything).
					Return(&domain.RawQuote{Source: "quotable-primary", Body: []byte(upstreamBody)}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   upstreamBody,
			expectedSource: "quotable-primary",
		},
		{
			name: "fallback answers",
			setupPrimary: func(m *mocks.MockQuoteSource) {
				m.EXPECT().FetchRandom(mock.Anything).Return(nil, errors.New("tls handshake timeout"))
				m.EXPECT().Name().Return("quotable-primary")
			},
			setupFallback: func(m *mocks.MockQuoteSource) {
				m.EXPECT().FetchRandom(mock.Anything).
					Return(&domain.RawQuote{Source: "quotable-fallback", Body: []byte(upstreamBody)}, nil)
				m.EXPECT().Name().Return("quotable-fallback")
			},
			expectedStatus: http.StatusOK,
			expectedBody:   upstreamBody,
			expectedSource: "quotable-fallback",
		},
		{
			name: "both fail",
			setupPrimary: func(m *mocks.MockQuoteSource) {
				m.EXPECT().FetchRandom(mock.Anything).Return(nil, errors.New("HTTP 503"))
				m.EXPECT().Name().Return("quotable-primary")
			},
			setupFallback: func(m *mocks.MockQuoteSource) {
				m.EXPECT().FetchRandom(mock.Anything).Return(nil, errors.New("connection refused"))
				m.EXPECT().Name().Return("quotable-fallback")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Failed to fetch quote","details":"Both API endpoints failed to respond"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupQuoteHandler(t, tt.setupPrimary, tt.setupFallback)

			w := serveQuote(h)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			assert.Equal(t, tt.expectedSource, w.Header().Get("X-Quote-Source"))
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestQuoteHandler_GetQuote_ForwardsBodyVerbatim(t *testing.T) {
	// Unusual spacing and key order must survive untouched.
	body := "{ \"author\" : \"A\",\n  \"content\":\"c\" }"

	h := setupQuoteHandler(t, func(m *mocks.MockQuoteSource) {
		m.EXPECT().FetchRandom(mock.Anything).
			Return(&domain.RawQuote{Source: "quotable-primary", Body: []byte(body)}, nil)
	}, nil)

	w := serveQuote(h)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, w.Body.String())
}

func TestQuoteHandler_GetQuote_FailureShape(t *testing.T) {
	h := NewQuoteHandler(stubService(func(context.Context) (*domain.RawQuote, error) {
		return nil, domain.NewUnavailableError(app.ProxyServiceName, "all upstream hosts failed")
	}))

	w := serveQuote(h)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.QuoteFailureResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.NewQuoteFailureResponse(), resp)
}

func TestQuoteHandler_RegisterQuoteRoutes_Middleware(t *testing.T) {
	var called bool

	h := NewQuoteHandler(stubService(func(context.Context) (*domain.RawQuote, error) {
		return &domain.RawQuote{Body: []byte(upstreamBody)}, nil
	}))

	router := gin.New()
	h.RegisterQuoteRoutes(router.Group("/api"), func(c *gin.Context) {
		called = true
		c.Next()
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quote", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

type stubService func(context.Context) (*domain.RawQuote, error)

func (f stubService) FetchRandom(ctx context.Context) (*domain.RawQuote, error) {
	return f(ctx)
}
