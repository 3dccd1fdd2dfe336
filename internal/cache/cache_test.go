package cache

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/time-roi-meter/internal/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute)

	c.Set("key1", []byte("value1"))

	data, found := c.Get("key1")
	require.True(t, found)
	assert.Equal(t, []byte("value1"), data)

	_, found = c.Get("missing")
	assert.False(t, found)
}

func TestCacheExpiration(t *testing.T) {
	c := NewCache(10 * time.Millisecond)

	c.Set("key1", []byte("value1"))
	time.Sleep(20 * time.Millisecond)

	_, found := c.Get("key1")
	assert.False(t, found)
}

func TestCacheClear(t *testing.T) {
	c := NewCache(time.Minute)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	require.Equal(t, 2, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestCacheStats(t *testing.T) {
	c := NewCache(time.Minute)

	c.Set("a", []byte("1"))

	stats := c.Stats()
	assert.Equal(t, 1, stats["total_items"])
	assert.Equal(t, 0, stats["expired_items"])
	assert.Equal(t, float64(60), stats["ttl_seconds"])
}

func newCachedRouter(c *Cache, metrics *monitoring.Metrics) (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)

	handlerCalls := 0
	router := gin.New()
	router.Use(c.Middleware(metrics, monitoring.NewLogger()))
	router.POST("/api/v1/score", func(ctx *gin.Context) {
		handlerCalls++
		ctx.JSON(http.StatusOK, gin.H{"score": 83.0})
	})
	return router, &handlerCalls
}

func TestCacheMiddlewareHitAndMiss(t *testing.T) {
	c := NewCache(time.Minute)
	metrics := monitoring.NewMetrics()
	router, handlerCalls := newCachedRouter(c, metrics)

	body := `{"time_spent":10,"effort":7,"skill_growth":8,"perceived_value":9}`

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/v1/score", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, *handlerCalls)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/v1/score", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, second.Code)

	// Second identical request is served from cache
	assert.Equal(t, 1, *handlerCalls)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int64(1), metrics.CacheHits)
	assert.Equal(t, int64(1), metrics.CacheMisses)
}

func TestCacheMiddlewareDistinctBodies(t *testing.T) {
	c := NewCache(time.Minute)
	metrics := monitoring.NewMetrics()
	router, handlerCalls := newCachedRouter(c, metrics)

	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, httptest.NewRequest(http.MethodPost, "/api/v1/score", strings.NewReader(`{"time_spent":10}`)))

	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "/api/v1/score", strings.NewReader(`{"time_spent":20}`)))

	assert.Equal(t, 2, *handlerCalls)
	assert.Equal(t, int64(2), metrics.CacheMisses)
}

func TestCacheMiddlewareSkipsOtherRoutes(t *testing.T) {
	c := NewCache(time.Minute)
	metrics := monitoring.NewMetrics()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(c.Middleware(metrics, monitoring.NewLogger()))
	router.GET("/api/v1/interpret", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"category": "Excellent"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/interpret?score=83", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), metrics.CacheHits)
	assert.Equal(t, int64(0), metrics.CacheMisses)
	assert.Equal(t, 0, c.Size())
}
