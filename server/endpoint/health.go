package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/blockflow/observability"
	"github.com/kbukum/blockflow/version"
)

type healthResponse struct {
	*observability.ServiceHealth
	Timestamp string `json:"timestamp"`
}

// Health aggregates the checkers into one report. The status is 503 when
// any component is down; degraded components still answer 200.
func Health(serviceName string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.Collect(c.Request.Context(), serviceName, version.Version, checkers...)

		status := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, healthResponse{
			ServiceHealth: sh,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
		})
	}
}
