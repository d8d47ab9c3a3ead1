package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/steeveross-eng/huntiq-telemetry/internal/logging"
)

// RequestID assigns a correlation ID to every request (reused from an
// inbound X-Request-ID header when the caller already has one) and stores
// it on the gin context for ErrorHandler and Logger to pick up.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = logging.NewCorrelationID()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// Logger logs each request through the zerolog root logger, tagging every
// line with the request's correlation ID.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		requestID := c.GetString("request_id")

		event := logging.Base.Info()
		if status >= 500 {
			event = logging.Base.Error()
		} else if status >= 400 {
			event = logging.Base.Warn()
		}
		event.
			Str("method", method).
			Str("path", path).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Dur("duration", duration).
			Str("request_id", requestID).
			Msg("request")
	}
}
