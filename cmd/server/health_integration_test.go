package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoint(t *testing.T) {
	_, r := newTestServer(t)

	w := getPath(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Contains(t, resp, "timestamp")
	assert.Contains(t, resp, "services")
	assert.Contains(t, resp, "metrics")
}

func TestHealthReportsNoServicesWithoutRedis(t *testing.T) {
	_, r := newTestServer(t)

	w := getPath(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Services map[string]interface{} `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// No Redis configured means nothing to track
	assert.Empty(t, resp.Services)
}

func TestHealthReportsDegradedService(t *testing.T) {
	srv, r := newTestServer(t)

	srv.degradation.RegisterService("redis", nil)
	for i := 0; i < 8; i++ {
		srv.degradation.RecordRequest("redis", true)
	}
	srv.degradation.RecordRequest("redis", false)
	srv.degradation.RecordRequest("redis", false)

	w := getPath(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
}

func TestHealthEmergencyReturns503(t *testing.T) {
	srv, r := newTestServer(t)

	srv.degradation.RegisterService("redis", nil)
	for i := 0; i < 5; i++ {
		srv.degradation.RecordRequest("redis", false)
	}

	w := getPath(r, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
}

func TestHealthRecoversAfterReset(t *testing.T) {
	srv, r := newTestServer(t)

	srv.degradation.RegisterService("redis", nil)
	for i := 0; i < 4; i++ {
		srv.degradation.RecordRequest("redis", true)
	}
	srv.degradation.RecordRequest("redis", false)

	w := getPath(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "degraded", resp["status"])

	srv.degradation.ResetService("redis")

	w = getPath(r, "/health")
	resp = map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestHealthConcurrentRequests(t *testing.T) {
	_, r := newTestServer(t)

	const workers = 20
	var wg sync.WaitGroup
	codes := make([]int, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/health", nil)
			r.ServeHTTP(w, req)
			codes[idx] = w.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusOK, code, "request %d", i)
	}
}

func TestHealthResponseConsistency(t *testing.T) {
	_, r := newTestServer(t)

	for i := 0; i < 5; i++ {
		w := getPath(r, "/health")
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp["status"])
	}
}

func TestHealthIgnoresQueryParameters(t *testing.T) {
	_, r := newTestServer(t)

	w := getPath(r, "/health?verbose=true&format=json")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}
