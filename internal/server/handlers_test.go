package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrader/engine/internal/jobs"
)

func newTestServer() *Server {
	ctrl := jobs.NewController(zerolog.Nop())
	_ = ctrl.Register("market_refresher", func() error { return nil }, time.Minute)
	return New(Config{Port: 0, Log: zerolog.Nop(), Controller: ctrl, DevMode: true})
}

func TestHandleHealth_ReturnsHealthy(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHandleListJobs_ReturnsRegisteredJobs(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]jobs.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	_, ok := body["market_refresher"]
	assert.True(t, ok)
}

func TestHandleStartAndStopJob_Accepted(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/market_refresher/start", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/jobs/market_refresher/stop", nil)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)
}
