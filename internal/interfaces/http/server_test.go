package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplyradar/supplyradar/internal/metrics"
)

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(":0", metrics.New(), "v1.0.0")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "v1.0.0", body["version"])
}

func TestMetricsEndpointExposesCollectors(t *testing.T) {
	m := metrics.New()
	m.ObserveFetch("mandi", 120*time.Millisecond, false, 5)
	m.ScoreComputed("procurement")

	srv := NewServer(":0", m, "v1.0.0")
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "supplyradar_signals_ingested_total")
	assert.Contains(t, rec.Body.String(), "supplyradar_risk_scores_computed_total")
}

func TestMethodNotAllowed(t *testing.T) {
	srv := NewServer(":0", metrics.New(), "v1.0.0")
	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
