package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/blockflow/observability"
)

// Metrics records request counts, in-flight requests and latency per route.
// A nil metrics set makes it a pass-through.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		start := time.Now()
		m.RecordRequestStart(ctx)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequestEnd(ctx, c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
