package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest_CountsByRouteAndStatus(t *testing.T) {
	ObserveRequest("GET", "/api/report", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `diaristas_http_requests_total{method="GET",route="/api/report",status="200"}`)
}

func TestHandler_ExposesCollectors(t *testing.T) {
	ObserveDBPing(time.Millisecond)
	SchedulerRuns.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "diaristas_db_ping_seconds")
	assert.Contains(t, rec.Body.String(), "diaristas_scheduler_runs_total")
}
