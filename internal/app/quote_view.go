package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jsamuelsen/daily-inspiration/internal/domain"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/clock"
	"github.com/jsamuelsen/daily-inspiration/internal/ports"
)

// FavoritesKey is the store key holding the JSON-encoded favorites list.
const FavoritesKey = "favoriteQuotes"

// Quote shown after every fetch attempt has failed.
const (
	FallbackContent = "Unable to fetch quote. Please check your internet connection and try again."
	FallbackAuthor  = "System"
	FallbackID      = "error"
)

// Fetch defaults.
const (
	DefaultRetries        = 3
	DefaultAttemptTimeout = 10 * time.Second
	DefaultRetryDelay     = time.Second
)

// ShareBaseURL is prefixed to the encoded quote text to build a share link.
const ShareBaseURL = "https://twitter.com/intent/tweet?text="

// FallbackQuote returns the quote displayed when fetching gives up.
func FallbackQuote() domain.Quote {
	return domain.Quote{ID: FallbackID, Content: FallbackContent, Author: FallbackAuthor}
}

// favoriteRecord is the persisted shape of a favorite.
type favoriteRecord struct {
	Content string `json:"content"`
	Author  string `json:"author"`
	ID      string `json:"id"`
}

// ViewState is a point-in-time copy of the view.
type ViewState struct {
	Quote     *domain.Quote
	Loading   bool
	Favorites []domain.Quote
	CanSave   bool
	ShareURL  string
}

// QuoteViewConfig contains the dependencies of a QuoteView.
type QuoteViewConfig struct {
	Fetcher ports.QuoteFetcher
	Store   ports.KeyValueStore

	// Clock defaults to the system clock.
	Clock ports.Clock

	// AttemptTimeout bounds each proxy request. Zero means DefaultAttemptTimeout.
	AttemptTimeout time.Duration

	// RetryDelay is waited between failed attempts. Zero means DefaultRetryDelay.
	RetryDelay time.Duration

	Logger *slog.Logger
}

// QuoteView holds the displayed quote, the loading flag and the favorites
// list. It is safe for concurrent use; network calls and retry waits run
// without holding the lock.
type QuoteView struct {
	fetcher        ports.QuoteFetcher
	store          ports.KeyValueStore
	clock          ports.Clock
	attemptTimeout time.Duration
	retryDelay     time.Duration
	logger         *slog.Logger

	mu        sync.Mutex
	current   *domain.Quote
	inFlight  int
	favorites []domain.Quote
}

// NewQuoteView creates a view with no quote and no favorites. Call Load to
// read persisted favorites. Panics if Fetcher or Store is nil.
func NewQuoteView(cfg QuoteViewConfig) *QuoteView {
	if cfg.Fetcher == nil {
		panic("QuoteView: Fetcher is required")
	}

	if cfg.Store == nil {
		panic("QuoteView: Store is required")
	}

	v := &QuoteView{
		fetcher:        cfg.Fetcher,
		store:          cfg.Store,
		clock:          cfg.Clock,
		attemptTimeout: cfg.AttemptTimeout,
		retryDelay:     cfg.RetryDelay,
		logger:         cfg.Logger,
	}

	if v.clock == nil {
		v.clock = clock.New()
	}

	if v.attemptTimeout <= 0 {
		v.attemptTimeout = DefaultAttemptTimeout
	}

	if v.retryDelay <= 0 {
		v.retryDelay = DefaultRetryDelay
	}

	if v.logger == nil {
		v.logger = slog.Default()
	}

	return v
}

// Load reads the favorites list from the store. A missing key yields an
// empty list. A value that does not decode is deleted and also yields an
// empty list; only store failures are returned.
func (v *QuoteView) Load(ctx context.Context) error {
	raw, found, err := v.store.Get(ctx, FavoritesKey)
	if err != nil {
		return fmt.Errorf("loading favorites: %w", err)
	}

	var favorites []domain.Quote

	if found {
		decoded, decodeErr := decodeFavorites(raw)
		if decodeErr != nil {
			v.logger.WarnContext(ctx, "discarding unreadable favorites",
				slog.Any("error", domain.NewCorruptedError(FavoritesKey, decodeErr)),
			)

			if err := v.store.Delete(ctx, FavoritesKey); err != nil {
				return fmt.Errorf("clearing corrupted favorites: %w", err)
			}
		}

		favorites = decoded
	}

	v.mu.Lock()
	v.favorites = favorites
	v.mu.Unlock()

	return nil
}

// FetchNewQuote requests a quote through the proxy up to retries times
// (at least once), waiting RetryDelay between failures. The displayed quote
// becomes the fetched quote, or FallbackQuote when every attempt fails or ctx
// ends. The displayed quote is returned.
func (v *QuoteView) FetchNewQuote(ctx context.Context, retries int) domain.Quote {
	if retries < 1 {
		retries = 1
	}

	v.mu.Lock()
	v.inFlight++
	v.mu.Unlock()

	quote, err := v.fetchWithRetry(ctx, retries)
	if err != nil {
		v.logger.ErrorContext(ctx, "giving up on quote fetch",
			slog.Int("attempts", retries),
			slog.Any("error", err),
		)

		quote = FallbackQuote()
	}

	v.mu.Lock()
	v.current = &quote
	v.inFlight--
	v.mu.Unlock()

	return quote
}

func (v *QuoteView) fetchWithRetry(ctx context.Context, retries int) (domain.Quote, error) {
	var lastErr error

	for attempt := 1; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.Quote{}, errors.Join(lastErr, err)
		}

		quote, err := v.attempt(ctx)
		if err == nil {
			return quote, nil
		}

		lastErr = err

		v.logger.WarnContext(ctx, "quote fetch attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("retries", retries),
			slog.Any("error", err),
		)

		if attempt == retries {
			break
		}

		if err := v.clock.Sleep(ctx, v.retryDelay); err != nil {
			return domain.Quote{}, errors.Join(lastErr, err)
		}
	}

	return domain.Quote{}, fmt.Errorf("%d attempts failed: %w", retries, lastErr)
}

func (v *QuoteView) attempt(ctx context.Context) (domain.Quote, error) {
	ctx, cancel := v.clock.WithTimeout(ctx, v.attemptTimeout)
	defer cancel()

	quote, err := v.fetcher.FetchQuote(ctx)
	if err != nil {
		return domain.Quote{}, err
	}

	if quote == nil {
		return domain.Quote{}, domain.NewValidationError("", "empty response")
	}

	if err := quote.Validate(); err != nil {
		return domain.Quote{}, err
	}

	return *quote, nil
}

// SaveQuote appends the displayed quote to the favorites with a fresh ID
// (the clock's Unix milliseconds) and persists the list. It does nothing
// when no quote is displayed. The in-memory list is updated even when
// persisting fails.
func (v *QuoteView) SaveQuote(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.current == nil {
		return nil
	}

	saved := *v.current
	saved.ID = strconv.FormatInt(v.clock.Now().UnixMilli(), 10)

	v.favorites = append(v.favorites, saved)

	return v.persistLocked(ctx)
}

// RemoveFromFavorites drops every favorite whose ID equals id and persists
// the list. The order of the remaining favorites is kept.
func (v *QuoteView) RemoveFromFavorites(ctx context.Context, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.favorites = slices.DeleteFunc(v.favorites, func(q domain.Quote) bool {
		return q.ID == id
	})

	return v.persistLocked(ctx)
}

func (v *QuoteView) persistLocked(ctx context.Context) error {
	records := make([]favoriteRecord, len(v.favorites))
	for i, q := range v.favorites {
		records[i] = favoriteRecord{Content: q.Content, Author: q.Author, ID: q.ID}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding favorites: %w", err)
	}

	if err := v.store.Set(ctx, FavoritesKey, string(data)); err != nil {
		v.logger.ErrorContext(ctx, "failed to persist favorites",
			slog.Int("count", len(records)),
			slog.Any("error", err),
		)

		return fmt.Errorf("persisting favorites: %w", err)
	}

	return nil
}

// CanSave reports whether SaveQuote is offered: a quote is displayed, no
// fetch is running, and no favorite has the same content.
func (v *QuoteView) CanSave() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.canSaveLocked()
}

func (v *QuoteView) canSaveLocked() bool {
	if v.inFlight > 0 || v.current == nil {
		return false
	}

	return !slices.ContainsFunc(v.favorites, func(q domain.Quote) bool {
		return q.Content == v.current.Content
	})
}

// ShareURL returns a tweet link for the displayed quote, or "#" when none is
// displayed.
func (v *QuoteView) ShareURL() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return shareURL(v.current)
}

// ShareURLFor builds the share link for q.
func ShareURLFor(q domain.Quote) string {
	return shareURL(&q)
}

func shareURL(q *domain.Quote) string {
	if q == nil {
		return "#"
	}

	return ShareBaseURL + componentUnescaper.Replace(url.QueryEscape(q.Text()))
}

// componentUnescaper turns url.QueryEscape output into the encodeURIComponent
// form: spaces as %20 and !'()* left literal. A literal + is already %2B.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// Loading reports whether a fetch is running.
func (v *QuoteView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.inFlight > 0
}

// Favorites returns a copy of the favorites list.
func (v *QuoteView) Favorites() []domain.Quote {
	v.mu.Lock()
	defer v.mu.Unlock()

	return slices.Clone(v.favorites)
}

// Snapshot returns a copy of the whole view state.
func (v *QuoteView) Snapshot() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()

	state := ViewState{
		Loading:   v.inFlight > 0,
		Favorites: slices.Clone(v.favorites),
		CanSave:   v.canSaveLocked(),
		ShareURL:  shareURL(v.current),
	}

	if v.current != nil {
		q := *v.current
		state.Quote = &q
	}

	return state
}

// decodeFavorites accepts only a JSON array of records that each carry
// content; anything else is rejected as a whole.
func decodeFavorites(raw string) ([]domain.Quote, error) {
	var records []*favoriteRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, err
	}

	if records == nil {
		return nil, errors.New("favorites value is not an array")
	}

	favorites := make([]domain.Quote, 0, len(records))
	for i, r := range records {
		if r == nil || r.Content == "" {
			return nil, fmt.Errorf("favorite %d has no content", i)
		}

		favorites = append(favorites, domain.Quote{ID: r.ID, Content: r.Content, Author: r.Author})
	}

	return favorites, nil
}
