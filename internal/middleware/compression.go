package middleware

import (
	"compress/gzip"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	Level        int      // gzip compression level (1-9)
	ContentTypes []string // content types to compress
}

// DefaultCompressionConfig returns the default compression configuration
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		Level: gzip.DefaultCompression,
		ContentTypes: []string{
			"application/json",
			"text/plain",
		},
	}
}

// CompressionMiddleware provides gzip compression for HTTP responses
type CompressionMiddleware struct {
	config CompressionConfig
	pool   sync.Pool

	totalRequests      int64
	compressedRequests int64
}

// NewCompressionMiddleware creates a new compression middleware
func NewCompressionMiddleware(config CompressionConfig) *CompressionMiddleware {
	cm := &CompressionMiddleware{config: config}
	cm.pool.New = func() interface{} {
		gz, _ := gzip.NewWriterLevel(io.Discard, config.Level)
		return gz
	}
	return cm
}

// Handler returns gin middleware that gzips responses for clients that
// accept it. Responses that never negotiate a compressible content type
// pass through untouched.
func (cm *CompressionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		atomic.AddInt64(&cm.totalRequests, 1)

		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		gz := cm.pool.Get().(*gzip.Writer)
		gz.Reset(c.Writer)

		writer := &gzipWriter{ResponseWriter: c.Writer, gz: gz, cm: cm}
		c.Writer = writer

		defer func() {
			writer.finish()
			cm.pool.Put(gz)
		}()

		c.Next()
	}
}

// GetStats returns compression statistics
func (cm *CompressionMiddleware) GetStats() map[string]interface{} {
	total := atomic.LoadInt64(&cm.totalRequests)
	compressed := atomic.LoadInt64(&cm.compressedRequests)

	ratio := float64(0)
	if total > 0 {
		ratio = float64(compressed) / float64(total)
	}

	return map[string]interface{}{
		"total_requests":      total,
		"compressed_requests": compressed,
		"compressed_ratio":    ratio,
	}
}

func (cm *CompressionMiddleware) shouldCompress(contentType string) bool {
	for _, ct := range cm.config.ContentTypes {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return false
}

// gzipWriter wraps gin's ResponseWriter and decides on first write
// whether the response body goes through gzip.
type gzipWriter struct {
	gin.ResponseWriter
	gz *gzip.Writer
	cm *CompressionMiddleware

	decided     bool
	compressing bool
}

func (w *gzipWriter) Write(data []byte) (int, error) {
	if !w.decided {
		w.decided = true
		if w.cm.shouldCompress(w.Header().Get("Content-Type")) {
			w.compressing = true
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Set("Vary", "Accept-Encoding")
			w.Header().Del("Content-Length")
			atomic.AddInt64(&w.cm.compressedRequests, 1)
		}
	}

	if w.compressing {
		return w.gz.Write(data)
	}
	return w.ResponseWriter.Write(data)
}

func (w *gzipWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *gzipWriter) finish() {
	if w.compressing {
		w.gz.Close()
	}
}
