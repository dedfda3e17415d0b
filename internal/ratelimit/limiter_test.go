package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinBurst(t *testing.T) {
	rl := NewRateLimiter(Config{RequestsPerMin: 60, Burst: 5}, nil)

	for i := 0; i < 5; i++ {
		result := rl.Allow("1.2.3.4")
		assert.True(t, result.Allowed, "request %d should pass", i)
	}

	result := rl.Allow("1.2.3.4")
	assert.False(t, result.Allowed)
	assert.Positive(t, result.RetryAfter)
}

func TestAllowIsPerClient(t *testing.T) {
	rl := NewRateLimiter(Config{RequestsPerMin: 60, Burst: 1}, nil)

	assert.True(t, rl.Allow("1.1.1.1").Allowed)
	assert.False(t, rl.Allow("1.1.1.1").Allowed)

	// A different client has its own bucket.
	assert.True(t, rl.Allow("2.2.2.2").Allowed)
	assert.Equal(t, 2, rl.ClientCount())
}

func TestCleanupDropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(DefaultConfig(), nil)
	rl.Allow("1.1.1.1")
	rl.Allow("2.2.2.2")
	require.Equal(t, 2, rl.ClientCount())

	rl.mu.Lock()
	rl.clients["1.1.1.1"].lastSeen = time.Now().Add(-2 * time.Hour)
	rl.mu.Unlock()

	rl.cleanup(time.Hour)
	assert.Equal(t, 1, rl.ClientCount())
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(Config{RequestsPerMin: 60, Burst: 2}, nil)
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
