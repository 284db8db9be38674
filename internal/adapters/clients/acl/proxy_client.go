package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/jsamuelsen/daily-inspiration/internal/adapters/clients"
	"github.com/jsamuelsen/daily-inspiration/internal/domain"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/logging"
)

// ProxyServiceName labels the proxy in errors and logs.
const ProxyServiceName = "quote-proxy"

// ProxyQuotePath is the proxy route serving random quotes.
const ProxyQuotePath = "/api/quote"

// proxyQuote is the payload served by GET /api/quote: the upstream quotable.io
// document on success, or an error body.
type proxyQuote struct {
	ID      string          `json:"_id"`
	Content string          `json:"content"`
	Author  string          `json:"author"`
	Error   json.RawMessage `json:"error"`
}

// ProxyClient implements ports.QuoteFetcher against the quote proxy.
type ProxyClient struct {
	client *clients.Client
	logger *slog.Logger
}

// NewProxyClient creates a ProxyClient. Panics if client is nil.
func NewProxyClient(client *clients.Client, logger *slog.Logger) *ProxyClient {
	if client == nil {
		panic("ProxyClient: client is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ProxyClient{client: client, logger: logger}
}

// FetchQuote performs one request to the proxy.
func (p *ProxyClient) FetchQuote(ctx context.Context) (*domain.Quote, error) {
	p.logger.Log(ctx, logging.LevelTrace, "requesting quote from proxy", slog.String("path", ProxyQuotePath))

	resp, err := p.client.Get(ctx, ProxyQuotePath)
	if err != nil {
		return nil, MapHTTPError(nil, err, ProxyServiceName)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := MapHTTPError(resp, nil, ProxyServiceName); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxQuoteBody))
	if err != nil {
		return nil, domain.NewUnavailableError(ProxyServiceName, fmt.Sprintf("reading body: %v", err))
	}

	var payload proxyQuote
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, domain.NewUnavailableError(ProxyServiceName, fmt.Sprintf("decoding body: %v", err))
	}

	if hasErrorField(payload.Error) {
		return nil, domain.NewUnavailableError(ProxyServiceName, describeErrorBody(body))
	}

	quote := translateQuote(&payload)
	if err := quote.Validate(); err != nil {
		p.logger.DebugContext(ctx, "proxy returned incomplete quote", slog.String("body", bodyExcerpt(body)))
		return nil, err
	}

	return quote, nil
}

func translateQuote(ext *proxyQuote) *domain.Quote {
	return &domain.Quote{
		ID:      ext.ID,
		Content: ext.Content,
		Author:  ext.Author,
	}
}
