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

func newCompressedRouter(cm *CompressionMiddleware, payload string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(cm.Handler())
	r.GET("/data", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(payload))
	})
	return r
}

func TestCompressionLargeJSON(t *testing.T) {
	cm := NewCompressionMiddleware(DefaultCompressionConfig())
	payload := `{"scores":[` + strings.Repeat(`{"score":83.0,"category":"Excellent"},`, 100) + `{"score":80.0}]}`
	r := newCompressedRouter(cm, payload)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/data", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	gz, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	decompressed, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, payload, string(decompressed))

	stats := cm.GetStats()
	assert.Equal(t, int64(1), stats["compressed_requests"])
	assert.Less(t, stats["compressed_bytes"].(int64), int64(len(payload)))
}

func TestCompressionSkipsSmallResponses(t *testing.T) {
	cm := NewCompressionMiddleware(DefaultCompressionConfig())
	payload := `{"score":83.0}`
	r := newCompressedRouter(cm, payload)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/data", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, payload, w.Body.String())

	stats := cm.GetStats()
	assert.Equal(t, int64(0), stats["compressed_requests"])
	assert.Equal(t, int64(1), stats["total_requests"])
}

func TestCompressionSkipsWithoutAcceptEncoding(t *testing.T) {
	cm := NewCompressionMiddleware(DefaultCompressionConfig())
	payload := strings.Repeat("a", 4096)
	r := newCompressedRouter(cm, payload)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/data", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, payload, w.Body.String())
}

func TestCompressionSkipsNonListedContentType(t *testing.T) {
	cm := NewCompressionMiddleware(DefaultCompressionConfig())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(cm.Handler())
	r.GET("/binary", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/octet-stream", make([]byte, 4096))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/binary", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
}

func TestCompressionStatsRatio(t *testing.T) {
	stats := NewCompressionStats()

	stats.RecordRequest(1000, 300, true)
	stats.RecordRequest(500, 500, false)

	got := stats.GetStats()
	assert.Equal(t, int64(2), got["total_requests"])
	assert.Equal(t, int64(1), got["compressed_requests"])
	assert.Equal(t, int64(1500), got["total_bytes"])
	assert.Equal(t, int64(300), got["compressed_bytes"])
	assert.InDelta(t, 0.2, got["compression_ratio"].(float64), 0.0001)
}
