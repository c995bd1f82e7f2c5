package middleware

import (
	"fmt"
	"time"

	"learnpath/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger emits one structured line per request with status and timing.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}
		status := c.Writer.Status()

		log.Info(fmt.Sprintf("%s %s", c.Request.Method, path),
			"status", status,
			"total", fmt.Sprintf("%.1fms", float64(latency.Microseconds())/1000),
			"client_ip", c.ClientIP(),
		)

		for _, ginErr := range c.Errors {
			log.Error("request error",
				"status", status,
				"method", c.Request.Method,
				"path", path,
				"error", ginErr.Err,
			)
		}
	}
}
