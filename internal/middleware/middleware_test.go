package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cropdoctor/diagnosis-api/pkg/errors"
)

func newEngine(mw gin.HandlerFunc, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID(), mw)
	engine.GET("/t", handler)
	return engine
}

func doGet(engine *gin.Engine) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRequestIDGenerated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())

	var seen string
	engine.GET("/t", func(c *gin.Context) {
		seen = RequestIDFrom(c)
		c.Status(http.StatusNoContent)
	})

	rec := doGet(engine)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderXRequestID))
}

func TestRequestIDTrustsIncomingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/t", func(c *gin.Context) {
		assert.Equal(t, "upstream-id", RequestIDFrom(c))
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(HeaderXRequestID, "upstream-id")
	engine.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-id", rec.Header().Get(HeaderXRequestID))
}

func TestRecoveryConvertsPanic(t *testing.T) {
	engine := newEngine(Recovery(), func(c *gin.Context) {
		panic("bad record")
	})

	rec := doGet(engine)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decodeError(t, rec)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.NotEmpty(t, resp.TraceID)
}

func TestTimeoutReturns504WhenNothingWritten(t *testing.T) {
	engine := newEngine(Timeout(5*time.Millisecond), func(c *gin.Context) {
		// context-honoring handler that gives up without writing
		<-c.Request.Context().Done()
	})

	rec := doGet(engine)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)

	resp := decodeError(t, rec)
	assert.Equal(t, http.StatusGatewayTimeout, resp.Code)
	assert.Equal(t, "request timeout", resp.Message)
}

func TestTimeoutKeepsLateButWrittenResponse(t *testing.T) {
	engine := newEngine(Timeout(5*time.Millisecond), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		<-c.Request.Context().Done()
	})

	rec := doGet(engine)
	assert.Equal(t, http.StatusOK, rec.Code, "a response already written is never replaced")
}

func TestTimeoutLeavesFastRequestsAlone(t *testing.T) {
	engine := newEngine(Timeout(time.Second), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	rec := doGet(engine)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitExhaustsBurst(t *testing.T) {
	engine := newEngine(RateLimit(1, 1), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, doGet(engine).Code)

	rec := doGet(engine)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestErrorHandlerTranslatesTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperrors.NewNotFound("diagnosis", nil), http.StatusNotFound},
		{apperrors.NewValidation("bad input", nil), http.StatusBadRequest},
		{apperrors.NewUnavailable("remote down", nil), http.StatusServiceUnavailable},
		{apperrors.Internal(nil), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		engine := newEngine(ErrorHandler(), func(c *gin.Context) {
			c.Error(tc.err)
		})
		rec := doGet(engine)
		assert.Equal(t, tc.status, rec.Code)
	}
}
