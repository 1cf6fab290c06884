package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts and latency by route template. Unmatched
// requests are grouped under "unmatched".
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

//Personal.AI order the ending
