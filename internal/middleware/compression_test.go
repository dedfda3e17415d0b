package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompressedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cm := NewCompressionMiddleware(DefaultCompressionConfig())

	router := gin.New()
	router.Use(cm.Handler())
	router.GET("/json", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"payload": strings.Repeat("x", 2048)})
	})
	router.GET("/binary", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/octet-stream", []byte{0x1, 0x2, 0x3})
	})
	return router
}

func TestCompressionForJSON(t *testing.T) {
	router := newCompressedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/json", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	reader, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(body), "payload")
}

func TestNoCompressionWithoutAcceptEncoding(t *testing.T) {
	router := newCompressedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/json", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Contains(t, w.Body.String(), "payload")
}

func TestNoCompressionForOtherContentTypes(t *testing.T) {
	router := newCompressedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/binary", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, []byte{0x1, 0x2, 0x3}, w.Body.Bytes())
}

func TestCompressionStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cm := NewCompressionMiddleware(DefaultCompressionConfig())

	router := gin.New()
	router.Use(cm.Handler())
	router.GET("/json", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/json", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	router.ServeHTTP(httptest.NewRecorder(), req)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/json", nil))

	stats := cm.GetStats()
	assert.Equal(t, int64(2), stats["total_requests"])
	assert.Equal(t, int64(1), stats["compressed_requests"])
}
