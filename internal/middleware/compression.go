package middleware

import (
	"compress/gzip"
	"io"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	MinSize          int      // Minimum first-write size to compress (bytes)
	CompressionLevel int      // Gzip compression level (1-9)
	ContentTypes     []string // Content types to compress
}

// DefaultCompressionConfig returns the default compression configuration
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:          1024,
		CompressionLevel: 6,
		ContentTypes: []string{
			"application/json",
			"text/plain",
			"text/html",
			"text/css",
			"application/javascript",
			"application/xml",
			"text/xml",
		},
	}
}

// CompressionMiddleware provides gzip compression for HTTP responses
type CompressionMiddleware struct {
	config CompressionConfig
	stats  *CompressionStats
	pool   sync.Pool
}

// NewCompressionMiddleware creates a new compression middleware
func NewCompressionMiddleware(config CompressionConfig) *CompressionMiddleware {
	if config.CompressionLevel < gzip.BestSpeed || config.CompressionLevel > gzip.BestCompression {
		config.CompressionLevel = gzip.DefaultCompression
	}

	level := config.CompressionLevel

	return &CompressionMiddleware{
		config: config,
		stats:  NewCompressionStats(),
		pool: sync.Pool{
			New: func() interface{} {
				gz, _ := gzip.NewWriterLevel(io.Discard, level)
				return gz
			},
		},
	}
}

// Handler returns a Gin middleware that gzips eligible responses. The
// compress-or-not decision is deferred to the first body write, when both
// the Content-Type and the response size are known.
func (cm *CompressionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		gzw := &gzipResponseWriter{
			ResponseWriter: c.Writer,
			cm:             cm,
		}
		c.Writer = gzw

		c.Next()

		gzw.close()

		if gzw.compressing {
			cm.stats.RecordRequest(gzw.originalBytes, gzw.compressedBytes, true)
		} else {
			cm.stats.RecordRequest(gzw.originalBytes, gzw.originalBytes, false)
		}
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

// gzipResponseWriter wraps gin's ResponseWriter. It stays transparent
// until the first write, then either starts a pooled gzip stream or
// passes everything through untouched.
type gzipResponseWriter struct {
	gin.ResponseWriter
	cm              *CompressionMiddleware
	gzipWriter      *gzip.Writer
	decided         bool
	compressing     bool
	originalBytes   int64
	compressedBytes int64
}

// countingWriter counts compressed bytes on their way to the client.
type countingWriter struct {
	w *gzipResponseWriter
}

func (cw countingWriter) Write(data []byte) (int, error) {
	cw.w.compressedBytes += int64(len(data))
	return cw.w.ResponseWriter.Write(data)
}

func (gzw *gzipResponseWriter) decide(firstWriteSize int) {
	gzw.decided = true

	// Once the header is flushed it is too late to add Content-Encoding
	if gzw.ResponseWriter.Written() {
		return
	}

	// Responses whose first write is small skip compression; the scoring
	// API's JSON bodies arrive in a single write, so this is the full size.
	if firstWriteSize < gzw.cm.config.MinSize {
		return
	}

	if !gzw.cm.shouldCompress(gzw.Header().Get("Content-Type")) {
		return
	}

	gzw.Header().Set("Content-Encoding", "gzip")
	gzw.Header().Set("Vary", "Accept-Encoding")
	gzw.Header().Del("Content-Length")

	gz := gzw.cm.pool.Get().(*gzip.Writer)
	gz.Reset(countingWriter{w: gzw})
	gzw.gzipWriter = gz
	gzw.compressing = true
}

// Write writes data, through gzip when the response is eligible.
func (gzw *gzipResponseWriter) Write(data []byte) (int, error) {
	if !gzw.decided {
		gzw.decide(len(data))
	}

	gzw.originalBytes += int64(len(data))

	if gzw.compressing {
		return gzw.gzipWriter.Write(data)
	}
	return gzw.ResponseWriter.Write(data)
}

// WriteString writes a string through Write so counting stays consistent.
func (gzw *gzipResponseWriter) WriteString(s string) (int, error) {
	return gzw.Write([]byte(s))
}

// Flush flushes the gzip stream and the underlying writer.
func (gzw *gzipResponseWriter) Flush() {
	if gzw.gzipWriter != nil {
		gzw.gzipWriter.Flush()
	}
	gzw.ResponseWriter.Flush()
}

// close finishes the gzip stream and returns the writer to the pool.
func (gzw *gzipResponseWriter) close() {
	if gzw.gzipWriter == nil {
		return
	}

	gzw.gzipWriter.Close()
	gzw.cm.pool.Put(gzw.gzipWriter)
	gzw.gzipWriter = nil
}

// CompressionStats tracks compression statistics
type CompressionStats struct {
	TotalRequests      int64
	CompressedRequests int64
	TotalBytes         int64
	CompressedBytes    int64
	mutex              sync.RWMutex
}

// NewCompressionStats creates new compression statistics
func NewCompressionStats() *CompressionStats {
	return &CompressionStats{}
}

// RecordRequest records a request's compression stats
func (cs *CompressionStats) RecordRequest(originalSize, compressedSize int64, compressed bool) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.TotalRequests++
	cs.TotalBytes += originalSize

	if compressed {
		cs.CompressedRequests++
		cs.CompressedBytes += compressedSize
	}
}

// GetStats returns current compression statistics
func (cs *CompressionStats) GetStats() map[string]interface{} {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	compressionRatio := float64(0)
	if cs.TotalBytes > 0 {
		compressionRatio = float64(cs.CompressedBytes) / float64(cs.TotalBytes)
	}

	return map[string]interface{}{
		"total_requests":      cs.TotalRequests,
		"compressed_requests": cs.CompressedRequests,
		"total_bytes":         cs.TotalBytes,
		"compressed_bytes":    cs.CompressedBytes,
		"compression_ratio":   compressionRatio,
		"compression_savings": 1.0 - compressionRatio,
		"compression_enabled": cs.TotalRequests > 0 && cs.CompressedRequests > 0,
	}
}

// GetStats returns compression statistics
func (cm *CompressionMiddleware) GetStats() map[string]interface{} {
	return cm.stats.GetStats()
}
