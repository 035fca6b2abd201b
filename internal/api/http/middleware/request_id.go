package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/todosuggest/relay/internal/requestid"
)

// RequestIDMiddleware ensures every request has a stable request ID.
// - Reads X-Request-Id header if present
// - Otherwise generates a new one
// - Stores it in both Gin context and the request context
// - Echoes it back in response header X-Request-Id
// - Logs request details (method, path, status, latency)
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := requestid.Ensure(c.GetHeader(requestid.Header))

		c.Set(requestid.GinKey, rid)
		c.Request = c.Request.WithContext(requestid.WithRequestID(c.Request.Context(), rid))
		c.Writer.Header().Set(requestid.Header, rid)

		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		log.Printf(
			"[req] id=%s method=%s path=%s status=%d latency=%s",
			rid,
			c.Request.Method,
			c.Request.URL.Path,
			status,
			latency,
		)
	}
}
