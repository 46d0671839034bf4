package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"visibility-backend/internal/shared/telemetry"
)

// Logging emits one request.complete line per request. Handlers may set
// "task" and "runId" on the context to enrich it.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
		}
		if task := c.GetString("task"); task != "" {
			fields["task"] = task
		}
		if runID := c.GetString("runId"); runID != "" {
			fields["run_id"] = runID
		}
		telemetry.Info("request.complete", fields)
	}
}
