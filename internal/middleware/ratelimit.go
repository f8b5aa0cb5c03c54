package middleware

import (
	"net/http"
	"strconv"

	"dynamic-qr-platform/internal/config"
	"dynamic-qr-platform/internal/metrics"
	"dynamic-qr-platform/internal/ratelimit"
	"dynamic-qr-platform/internal/scan"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit 按 "<route>:<clientIp>" 做固定窗口限流，需放在认证之前
func RateLimit(limiter *ratelimit.Limiter, route string, rule config.Rule, m *metrics.Metrics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ratelimit.Key(route, scan.ClientIP(c.Request.Header))
		res := limiter.Consume(c.Request.Context(), key, rule.Limit, rule.Window)
		if !res.Allowed {
			m.RateLimitDenied.WithLabelValues(route).Inc()
			logger.Warn(route+".rate_limited",
				zap.String("request_id", GetRequestID(c)),
				zap.Int("retry_after_seconds", res.RetryAfterSeconds),
			)
			c.Header("Retry-After", strconv.Itoa(res.RetryAfterSeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
