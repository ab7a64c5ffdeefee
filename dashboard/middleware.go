package dashboard

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ramen-dashboard/utils"
)

// requestLogger logs one line per request, at warn or error for failures.
func requestLogger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		latency := time.Since(start)

		switch {
		case status >= 500:
			logger.Error("[dashboard] %s %s %d %v %s", c.Request.Method, path, status, latency,
				strings.TrimSpace(c.Errors.String()))
		case status >= 400:
			logger.Warn("[dashboard] %s %s %d %v", c.Request.Method, path, status, latency)
		default:
			logger.Debug("[dashboard] %s %s %d %v", c.Request.Method, path, status, latency)
		}
	}
}
