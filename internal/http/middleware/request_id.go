package middleware

import (
	"context"
	"time"

	"tasklists/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates or generates a request id and puts it on the
// request context for logger.WithContext.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}

		c.Header(RequestIDHeader, id)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey{}, id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger writes one line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		log := logger.WithContext(c.Request.Context())
		args := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			log.Error("request", args...)
		case status >= 400:
			log.Warn("request", args...)
		default:
			log.Info("request", args...)
		}
	}
}
