package errors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		category ErrorCategory
		status   int
		code     string
	}{
		{"validation", NewValidationError("bad input"), CategoryValidation, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"network", NewNetworkError("unreachable", nil), CategoryNetwork, http.StatusBadGateway, "NETWORK_ERROR"},
		{"timeout", NewTimeoutError("too slow", nil), CategoryTimeout, http.StatusGatewayTimeout, "TIMEOUT_ERROR"},
		{"rate limit", NewRateLimitError("slow down"), CategoryRateLimit, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{"not found", NewNotFoundError("no such team"), CategoryNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"external api", NewExternalAPIError("upstream said no", nil), CategoryExternalAPI, http.StatusBadGateway, "NETWORK_ERROR"},
		{"internal", NewInternalError("boom", nil), CategoryInternal, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"configuration", NewConfigurationError("missing key"), CategoryConfiguration, http.StatusInternalServerError, "CONFIGURATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Contains(t, tt.err.Error(), tt.code)
		})
	}
}

func TestToAppErrorPassesThrough(t *testing.T) {
	original := NewValidationError("bad input")
	converted := ToAppError(original)
	assert.Same(t, original, converted)
}

func TestToAppErrorClassifies(t *testing.T) {
	assert.Equal(t, CategoryTimeout, ToAppError(context.DeadlineExceeded).Category)
	assert.Equal(t, CategoryNetwork, ToAppError(fmt.Errorf("dial tcp: connection refused")).Category)
	assert.Equal(t, CategoryNotFound, ToAppError(fmt.Errorf("team not found")).Category)
	assert.Equal(t, CategoryInternal, ToAppError(fmt.Errorf("something else")).Category)
	assert.Nil(t, ToAppError(nil))
}

func TestErrorHandlerRendersContextErrors(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		c.Error(NewValidationError("bad input"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bad input")
	assert.Contains(t, w.Body.String(), "validation")
}

func TestRecoveryHandlerConvertsPanics(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryHandler())
	r.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestWrapError(t *testing.T) {
	base := fmt.Errorf("disk full")
	wrapped := WrapError(base, "saving record %s", "abc")

	require.Error(t, wrapped)
	assert.Contains(t, wrapped.Error(), "saving record abc")
	assert.ErrorIs(t, wrapped, base)

	assert.NoError(t, WrapError(nil, "ignored"))
}
