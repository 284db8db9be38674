package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/daily-inspiration/internal/adapters/http/dto"
	"github.com/jsamuelsen/daily-inspiration/internal/domain"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/logging"
)

// RandomQuoteService is the use case behind GET /api/quote.
type RandomQuoteService interface {
	FetchRandom(ctx context.Context) (*domain.RawQuote, error)
}

// QuoteHandler proxies random quotes from the upstream hosts.
type QuoteHandler struct {
	service RandomQuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service RandomQuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// GetQuote handles GET /api/quote.
// The upstream JSON is forwarded byte-for-byte. When no host answered, the
// fixed QuoteFailureResponse is written with 500.
//
// @Summary Get a random quote
// @Description Fetches a random quote from the primary upstream host, falling back once to the secondary
// @Tags quotes
// @Produce json
// @Success 200 {object} object
// @Failure 500 {object} dto.QuoteFailureResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /api/quote [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	ctx := c.Request.Context()

	raw, err := h.service.FetchRandom(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("failed to fetch quote",
			slog.Any("error", err),
			slog.String("trace_id", dto.TraceID(ctx)),
		)

		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusInternalServerError, dto.NewQuoteFailureResponse())

		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("X-Quote-Source", raw.Source)
	c.Data(http.StatusOK, "application/json", raw.Body)
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	rg.GET("/quote", append(middleware, h.GetQuote)...)
}
