package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/constants"
	"github.com/cyphera/cyphera-agentpay/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger("test")
	gin.SetMode(gin.TestMode)
}

func TestCorrelationIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CorrelationIDMiddleware())

	var fromGin, fromCtx string
	router.GET("/test", func(c *gin.Context) {
		fromGin = GetCorrelationID(c)
		fromCtx = CorrelationIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/test", nil)
		router.ServeHTTP(w, req)

		id := w.Header().Get(constants.CorrelationIDHeader)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, fromGin)
		assert.Equal(t, id, fromCtx)
	})

	t.Run("keeps a caller supplied id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(constants.CorrelationIDHeader, "req-123")
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(constants.CorrelationIDHeader))
		assert.Equal(t, "req-123", fromCtx)
	})

	t.Run("replaces an unsafe caller supplied id", func(t *testing.T) {
		for _, supplied := range []string{"req 123\nlevel=error", strings.Repeat("a", 129), "id/with/slashes"} {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(constants.CorrelationIDHeader, supplied)
			router.ServeHTTP(w, req)

			id := w.Header().Get(constants.CorrelationIDHeader)
			assert.NotEqual(t, supplied, id)
			_, err := uuid.Parse(id)
			assert.NoError(t, err)
			assert.Equal(t, id, fromCtx)
		}
	})
}

func TestLogWithCorrelationID(t *testing.T) {
	assert.NotNil(t, LogWithCorrelationID(context.Background()))
	assert.NotNil(t, LogWithCorrelationID(WithCorrelationID(context.Background(), "abc")))
}

func TestRateLimiter(t *testing.T) {
	newRouter := func(rl *RateLimiter) *gin.Engine {
		router := gin.New()
		router.Use(rl.Middleware())
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
		router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}
	call := func(router *gin.Engine, path, ip string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = ip + ":1234"
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("blocks requests exceeding the burst", func(t *testing.T) {
		rl := NewRateLimiter(1, 2)
		defer rl.Stop()
		router := newRouter(rl)

		assert.Equal(t, http.StatusOK, call(router, "/test", "192.168.1.2").Code)
		assert.Equal(t, http.StatusOK, call(router, "/test", "192.168.1.2").Code)
		w := call(router, "/test", "192.168.1.2")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), constants.RateLimitedError)
	})

	t.Run("different clients have separate limits", func(t *testing.T) {
		rl := NewRateLimiter(1, 1)
		defer rl.Stop()
		router := newRouter(rl)

		assert.Equal(t, http.StatusOK, call(router, "/test", "192.168.1.3").Code)
		assert.Equal(t, http.StatusOK, call(router, "/test", "192.168.1.4").Code)
		assert.Equal(t, http.StatusTooManyRequests, call(router, "/test", "192.168.1.3").Code)
	})

	t.Run("health is never limited", func(t *testing.T) {
		rl := NewRateLimiter(1, 1)
		defer rl.Stop()
		router := newRouter(rl)

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, call(router, "/health", "192.168.1.5").Code)
		}
	})
}

func TestJWTAuth(t *testing.T) {
	auth := NewJWTAuth("test-secret")

	router := gin.New()
	router.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, GetSubject(c))
	})
	call := func(header string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(w, req)
		return w
	}

	valid, err := auth.IssueToken("0xAbC", time.Hour)
	require.NoError(t, err)
	expired, err := auth.IssueToken("0xAbC", -time.Hour)
	require.NoError(t, err)
	otherSecret, err := NewJWTAuth("other").IssueToken("0xAbC", time.Hour)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "0xAbC"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK, wantBody: "0xAbC"},
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + otherSecret, wantStatus: http.StatusUnauthorized},
		{name: "no expiry", header: "Bearer " + noExpiry, wantStatus: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc.def.ghi", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestRequestLoggingMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CorrelationIDMiddleware(), RequestLoggingMiddleware(true))
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(constants.PaymentHeader, "secret")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, redactedHeaders[http.CanonicalHeaderKey(constants.PaymentHeader)])
}
