package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"wrapchain.backend/pkg/logger"
	"wrapchain.backend/pkg/metrics"
)

// LoggerMiddleware logs HTTP requests using the structured logger and records
// request metrics by route template.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), latency)

		// c.Request may carry the principal set by AuthMiddleware
		logger.LogRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), latency, c.ClientIP())
	}
}
