package middleware

import (
	"log/slog"
	"math"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen/daily-inspiration/internal/adapters/http/dto"
	"github.com/jsamuelsen/daily-inspiration/internal/platform/logging"
)

// RateLimit applies a token bucket shared by every caller of the route.
// Exhausted requests are rejected with 429 rather than queued, so a burst of
// clients cannot pile up upstream calls. rps <= 0 disables limiting.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	if burst < 1 {
		burst = int(math.Max(1, math.Ceil(rps)))
	}

	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if limiter.Allow() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		logging.FromContext(ctx).Warn("rate limit exceeded", slog.String("path", c.Request.URL.Path))

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(dto.HTTPStatusFromCode(dto.ErrorCodeRateLimited),
			dto.NewErrorResponse(dto.ErrorCodeRateLimited, "too many requests").WithTraceID(dto.TraceID(ctx)))
	}
}
