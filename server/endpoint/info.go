package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/blockflow/version"
)

var startTime = time.Now()

type infoResponse struct {
	Service string `json:"service"`
	version.Info
	Release bool   `json:"release"`
	Uptime  string `json:"uptime"`
}

// Info reports build information and process uptime.
func Info(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := version.Get()
		c.JSON(http.StatusOK, infoResponse{
			Service: serviceName,
			Info:    v,
			Release: v.IsRelease(),
			Uptime:  time.Since(startTime).Round(time.Second).String(),
		})
	}
}
