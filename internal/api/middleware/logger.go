package middleware

import (
	"log"
	"time"

	"flex-valuation/internal/observability/metrics"

	"github.com/gin-gonic/gin"
)

// Logger logs one line per request and counts it in the request metrics.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		metrics.ObserveHTTP(c.FullPath(), status)
		log.Printf("[API] %s %s %d %v (%s)",
			c.Request.Method, c.Request.URL.Path, status, time.Since(start).Round(time.Microsecond), c.ClientIP())
	}
}
