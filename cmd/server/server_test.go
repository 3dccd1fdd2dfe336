package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/time-roi-meter/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer builds a server on default config with rate limits high
// enough to stay out of the way. Redis is disabled, so the limiter runs
// on its in-memory fallback.
func newTestServer(t *testing.T, mutate ...func(*config.Config)) (*server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.New()
	cfg.IPLimitPerMin = 100000
	for _, fn := range mutate {
		fn(cfg)
	}

	srv, err := newServer(cfg)
	require.NoError(t, err)
	t.Cleanup(srv.close)

	return srv, srv.routes()
}

func postJSON(r *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func getPath(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestScoreEndpoint(t *testing.T) {
	_, r := newTestServer(t)

	w := postJSON(r, "/api/v1/score", `{"time_spent":10,"effort":7,"skill_growth":8,"perceived_value":9}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 83.0, resp["score"])
	assert.Equal(t, "Excellent", resp["category"])
	assert.NotEmpty(t, resp["description"])

	// The weighted endpoint echoes the weights it applied
	weights, ok := resp["weights"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 0.2, weights["effort"])
	assert.Equal(t, 0.3, weights["skill_growth"])
	assert.Equal(t, 0.5, weights["perceived_value"])
}

func TestScoreEndpointCustomWeights(t *testing.T) {
	_, r := newTestServer(t)

	w := postJSON(r, "/api/v1/score", `{
		"time_spent": 10, "effort": 7, "skill_growth": 8, "perceived_value": 9,
		"weights": {"effort": 1, "skill_growth": 0, "perceived_value": 0}
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 70.0, resp["score"])
}

func TestScoreEqualEndpoint(t *testing.T) {
	_, r := newTestServer(t)

	w := postJSON(r, "/api/v1/score/equal", `{"time_spent":10,"effort":7,"skill_growth":8,"perceived_value":9}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 80.0, resp["score"])
	assert.Equal(t, "Good", resp["category"])

	// No weights in the equal-weight response
	assert.NotContains(t, resp, "weights")
}

func TestScoreEqualIgnoresWeights(t *testing.T) {
	_, r := newTestServer(t)

	w := postJSON(r, "/api/v1/score/equal", `{
		"time_spent": 10, "effort": 7, "skill_growth": 8, "perceived_value": 9,
		"weights": {"effort": 1, "skill_growth": 0, "perceived_value": 0}
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 80.0, resp["score"])
}

func TestScoreEndpointValidation(t *testing.T) {
	_, r := newTestServer(t)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "zero time spent",
			body:    `{"time_spent":0,"effort":7,"skill_growth":8,"perceived_value":9}`,
			wantMsg: "Time spent must be greater than 0",
		},
		{
			name:    "effort out of range",
			body:    `{"time_spent":10,"effort":11,"skill_growth":8,"perceived_value":9}`,
			wantMsg: "Effort must be a finite number between 0 and 10",
		},
		{
			name:    "weights do not sum to one",
			body:    `{"time_spent":10,"effort":7,"skill_growth":8,"perceived_value":9,"weights":{"effort":0.5,"skill_growth":0.5,"perceived_value":0.5}}`,
			wantMsg: "Weights must sum to 1.0",
		},
		{
			name:    "negative weight",
			body:    `{"time_spent":10,"effort":7,"skill_growth":8,"perceived_value":9,"weights":{"effort":-0.2,"skill_growth":0.6,"perceived_value":0.6}}`,
			wantMsg: "Weights must not be negative",
		},
		{
			name:    "malformed JSON",
			body:    `{"time_spent": not-a-number}`,
			wantMsg: "Request body must be valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/api/v1/score", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantMsg)
		})
	}
}

func TestScoreEndpointRejectsNonJSONContentType(t *testing.T) {
	_, r := newTestServer(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/score", strings.NewReader("time_spent=10"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestInterpretEndpoint(t *testing.T) {
	_, r := newTestServer(t)

	tests := []struct {
		score    string
		category string
	}{
		{"15", "Low"},
		{"30", "Low"},
		{"45", "Moderate"},
		{"80", "Good"},
		{"95", "Excellent"},
		{"250", "Exceptional"},
		{"-3", "Invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.category+"_"+tt.score, func(t *testing.T) {
			w := getPath(r, "/api/v1/interpret?score="+tt.score)
			require.Equal(t, http.StatusOK, w.Code)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.category, resp["category"])
			assert.NotEmpty(t, resp["description"])
		})
	}
}

func TestInterpretEndpointBadInput(t *testing.T) {
	_, r := newTestServer(t)

	t.Run("missing score", func(t *testing.T) {
		w := getPath(r, "/api/v1/interpret")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Score query parameter is required")
	})

	t.Run("non-numeric score", func(t *testing.T) {
		w := getPath(r, "/api/v1/interpret?score=banana")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Score must be a valid number")
	})
}

func TestUnknownAPIRouteReturnsJSON404(t *testing.T) {
	_, r := newTestServer(t)

	w := getPath(r, "/api/v1/nonexistent")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, w.Body.String(), "Route not found")
}

func TestRootServesFrontend(t *testing.T) {
	_, r := newTestServer(t)

	w := getPath(r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Time ROI Meter")
}

func TestRequestIDHeader(t *testing.T) {
	_, r := newTestServer(t)

	w := getPath(r, "/health")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// A client-supplied ID is echoed back
	w2 := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "test-id-42")
	r.ServeHTTP(w2, req)
	assert.Equal(t, "test-id-42", w2.Header().Get("X-Request-ID"))
}

func TestSecurityHeaders(t *testing.T) {
	_, r := newTestServer(t)

	w := getPath(r, "/health")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "nonce-")
}

func TestRateLimitHeaders(t *testing.T) {
	_, r := newTestServer(t)

	w := postJSON(r, "/api/v1/score", `{"time_spent":10,"effort":7,"skill_growth":8,"perceived_value":9}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitBlocksExcessRequests(t *testing.T) {
	_, r := newTestServer(t, func(cfg *config.Config) {
		cfg.IPLimitPerMin = 3
	})

	body := `{"time_spent":10,"effort":7,"skill_growth":8,"perceived_value":9}`
	for i := 0; i < 3; i++ {
		w := postJSON(r, "/api/v1/score", body)
		require.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := postJSON(r, "/api/v1/score", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "retry_after")
}

func TestScoreResponsesAreCached(t *testing.T) {
	srv, r := newTestServer(t)

	body := `{"time_spent":10,"effort":7,"skill_growth":8,"perceived_value":9}`
	first := postJSON(r, "/api/v1/score", body)
	require.Equal(t, http.StatusOK, first.Code)
	second := postJSON(r, "/api/v1/score", body)
	require.Equal(t, http.StatusOK, second.Code)

	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, srv.cache.Size())
}

func TestWeightedAndEqualCachedSeparately(t *testing.T) {
	srv, r := newTestServer(t)

	body := `{"time_spent":10,"effort":7,"skill_growth":8,"perceived_value":9}`
	weighted := postJSON(r, "/api/v1/score", body)
	equal := postJSON(r, "/api/v1/score/equal", body)

	require.Equal(t, http.StatusOK, weighted.Code)
	require.Equal(t, http.StatusOK, equal.Code)
	assert.NotEqual(t, weighted.Body.String(), equal.Body.String())
	assert.Equal(t, 2, srv.cache.Size())
}

func TestValidationErrorsAreNotCached(t *testing.T) {
	srv, r := newTestServer(t)

	body := `{"time_spent":0,"effort":7,"skill_growth":8,"perceived_value":9}`
	w := postJSON(r, "/api/v1/score", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, 0, srv.cache.Size())
}

func TestBodySizeLimitRejected(t *testing.T) {
	_, r := newTestServer(t, func(cfg *config.Config) {
		cfg.MaxBodyBytes = 64
	})

	big := `{"time_spent":10,"effort":7,"skill_growth":8,"perceived_value":9,"padding":"` +
		strings.Repeat("x", 256) + `"}`
	w := postJSON(r, "/api/v1/score", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	_, r := newTestServer(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/api/v1/score", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestOperationalEndpoints(t *testing.T) {
	_, r := newTestServer(t)

	paths := []string{
		"/metrics",
		"/cache/stats",
		"/ratelimit/status",
		"/ratelimit/stats",
		"/pools/json",
		"/pools/compression",
		"/memory",
		"/debug/traces",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := getPath(r, path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestMetricsCountScores(t *testing.T) {
	srv, r := newTestServer(t)

	postJSON(r, "/api/v1/score", `{"time_spent":10,"effort":7,"skill_growth":8,"perceived_value":9}`)
	postJSON(r, "/api/v1/score/equal", `{"time_spent":10,"effort":7,"skill_growth":8,"perceived_value":9}`)
	getPath(r, "/api/v1/interpret?score=50")
	postJSON(r, "/api/v1/score", `{"time_spent":0,"effort":7,"skill_growth":8,"perceived_value":9}`)

	stats := srv.metrics.GetStats()
	assert.EqualValues(t, 1, stats["weighted_scores"])
	assert.EqualValues(t, 1, stats["equal_weight_scores"])
	assert.EqualValues(t, 1, stats["interpretations"])
	assert.EqualValues(t, 1, stats["validation_failures"])
}
