package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestID tags every request with an id for log correlation. A caller-set
// X-Request-ID is trusted so ids survive hops through upstream proxies.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)
		c.Next()
	}
}

// RequestIDFrom returns the request id RequestID stored on the context, or ""
// when the middleware did not run.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
