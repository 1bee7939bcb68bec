package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GinMiddleware throttles API callers by client IP. Redis errors fail
// open: a broken limiter must not take the payment API down with it.
func GinMiddleware(l *Limiter) gin.HandlerFunc {
	if l == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		result, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			l.log.Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}

		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"type":    "rate_limited",
					"message": "too many requests",
				},
			})
			return
		}

		c.Next()
	}
}
