package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/blockflow/errors"
	"github.com/kbukum/blockflow/logger"
)

var quietPaths = map[string]bool{
	"/health": true,
	"/info":   true,
}

// RequestLogger logs every request with method, route, status and latency.
// Health and info probes are skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := map[string]interface{}{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"route":              c.FullPath(),
			logger.FieldStatus:   status,
			logger.FieldDuration: latency.Milliseconds(),
		}
		if err := c.Errors.Last(); err != nil {
			if appErr, ok := errors.AsAppError(err.Err); ok {
				fields["code"] = appErr.Code
			}
			fields[logger.FieldError] = err.Error()
		}
		if latency > 500*time.Millisecond {
			fields["slow"] = true
		}
		logByStatus(log.WithContext(c.Request.Context()), fields, status)
	}
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
