package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit caps the request rate across all clients with a shared token
// bucket. rps and burst come straight from the server config; an rps of 0
// disables the limiter at wiring time, not here.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(rps)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Code:    http.StatusTooManyRequests,
				Message: "rate limit exceeded",
				TraceID: RequestIDFrom(c),
			})
			return
		}
		c.Next()
	}
}

// retryAfterSeconds is the whole-second wait for one token, at least 1.
func retryAfterSeconds(rps rate.Limit) int {
	if rps <= 0 {
		return 1
	}
	seconds := int(1 / float64(rps))
	if seconds < 1 {
		return 1
	}
	return seconds
}
