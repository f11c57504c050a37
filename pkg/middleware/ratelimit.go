package middleware

import (
	"net/http"
	"time"

	"golang-finance/pkg/ratelimit"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// Response represents the error response structure
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// NewRateLimiterMiddleware applies the standard per-IP budget to every
// endpoint. requestsPerMinute comes from MAX_REQUESTS_PER_MINUTE.
func NewRateLimiterMiddleware(requestsPerMinute int) echo.MiddlewareFunc {
	perSecond := rate.Limit(float64(requestsPerMinute) / 60.0)
	config := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      perSecond,
				Burst:     requestsPerMinute,
				ExpiresIn: 3 * time.Minute,
			},
		),

		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},

		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, Response{
				Status:  http.StatusForbidden,
				Message: "Access forbidden: Rate limiter error occurred",
			})
		},

		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, Response{
				Status:  http.StatusTooManyRequests,
				Message: "Too many requests: Rate limit exceeded. Please try again later",
			})
		},
	}

	return middleware.RateLimiterWithConfig(config)
}

// NewGenerationRateLimiterMiddleware enforces the stricter fixed budget on
// endpoints that can trigger an upstream generation. A rejection here is a
// plain 429 and never reaches the analysis orchestrator.
func NewGenerationRateLimiterMiddleware(requestsPerMinute int) echo.MiddlewareFunc {
	store := ratelimit.NewLimiterStore(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !store.Allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, Response{
					Status:  http.StatusTooManyRequests,
					Message: "Too many analysis requests: generation budget exceeded. Please try again later",
				})
			}
			return next(c)
		}
	}
}
