// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// and the quote view to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter for anything that blocks
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrUnavailable, ErrValidation, ...)
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/daily-inspiration/internal/domain"
)

// QuoteSource is one upstream host serving random quotes.
// The proxy tries its sources in order and forwards the first payload verbatim.
type QuoteSource interface {
	// Name identifies the host in logs, metrics and health checks.
	Name() string

	// FetchRandom returns the upstream JSON body for a random quote.
	// Returns domain.ErrUnavailable on transport failure, non-2xx status,
	// or a body that is not a JSON document.
	FetchRandom(ctx context.Context) (*domain.RawQuote, error)
}

// QuoteFetcher performs a single request against the quote proxy.
// Retrying is the caller's concern.
type QuoteFetcher interface {
	// FetchQuote returns the quote served by the proxy.
	// Returns domain.ErrUnavailable for transport errors, non-2xx statuses or
	// an error payload, and domain.ErrValidation when content or author is missing.
	FetchQuote(ctx context.Context) (*domain.Quote, error)
}

// KeyValueStore is a string-keyed persistent store, shaped after browser
// local storage.
type KeyValueStore interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Clock abstracts wall time, sleeps and deadlines so retry loops can be
// driven deterministically in tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error

	// WithTimeout derives a context that is canceled after d.
	WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc)
}
