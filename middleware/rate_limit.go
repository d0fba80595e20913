package middleware

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/NomadCrew/neoevents/errors"
	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/services"
	"github.com/gin-gonic/gin"
)

// RateLimiter limits requests per client IP in fixed windows, keyed by scope
// so different routes keep separate budgets. Limiter failures let the request
// through.
func RateLimiter(limiter services.RateLimiter, scope string, requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", scope, getClientIP(c))

		allowed, retryAfter, err := limiter.CheckLimit(c.Request.Context(), key, requests, window)
		if err != nil {
			logger.GetLogger().Warnw("Rate limit check failed, allowing request", "scope", scope, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(requests))
		if !allowed {
			seconds := int(retryAfter.Round(time.Second).Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(retryAfter).Unix(), 10))
			c.Header("Retry-After", strconv.Itoa(seconds))
			_ = c.Error(apperrors.RateLimitExceeded("Too many requests. Please try again later.", seconds))
			c.Abort()
			return
		}

		c.Next()
	}
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP.
func getClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}
	if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.ClientIP()
}
