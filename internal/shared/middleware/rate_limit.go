package middleware

import (
	"net/http"
	"strconv"

	"catalog-api/internal/shared/response"
	"catalog-api/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RateLimit draws one token per request from the caller's bucket (keyed by
// client IP). Limiter errors let the request through.
func RateLimit(limiter cache.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		d, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

		if !d.Allowed {
			secs := int64((d.RetryAfter.Milliseconds() + 999) / 1000)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.FormatInt(secs, 10))
			log.Info().Str("key", key).Str("request_id", c.GetString("request_id")).Msg("rate limited")
			response.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
			c.Abort()
			return
		}

		c.Next()
	}
}
