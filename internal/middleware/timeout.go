package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Timeout puts a deadline on the request context. Enforcement is cooperative:
// the handler chain runs on the request goroutine and the blocking work
// downstream (remote calls, database queries) honors the context, so there is
// never a second writer racing the response. When the deadline expires and
// the handler produced no response, the client gets a 504.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			log.Warn().
				Str("request_id", RequestIDFrom(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Dur("deadline", d).
				Msg("request deadline exceeded")

			c.AbortWithStatusJSON(http.StatusGatewayTimeout, ErrorResponse{
				Code:    http.StatusGatewayTimeout,
				Message: "request timeout",
				TraceID: RequestIDFrom(c),
			})
		}
	}
}
