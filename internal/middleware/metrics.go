package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pennywise/internal/metrics"
)

// Metrics records request counts and latency by route template.
func Metrics(rec *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
