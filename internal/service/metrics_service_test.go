package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ruwad-api/internal/models"
)

func TestMetricsServiceDomainCounters(t *testing.T) {
	m := NewMetricsService()

	m.RecordBehavior(models.BehaviorNegative, -4)
	m.RecordBehavior(models.BehaviorNegative, -1)
	m.RecordStudentEvent(StudentEventImported, 3)
	m.RecordStudentEvent(StudentEventDeleted, 0)
	m.RecordLogin(false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `behavior_events_total{type="negative"} 2`)
	assert.Contains(t, body, `behavior_points_total{type="negative"} 5`)
	assert.Contains(t, body, `student_events_total{action="imported"} 3`)
	assert.NotContains(t, body, `student_events_total{action="deleted"}`)
	assert.Contains(t, body, `auth_logins_total{outcome="failure"} 1`)
}

func TestMetricsServiceHandlerExposesRequests(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/students", http.StatusOK, 20*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/api/students",status="200"} 1`)
	assert.Contains(t, body, "cache_hit_ratio 0.5")
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.RecordBehavior(models.BehaviorPositive, 1)
	m.RecordAdminOperation("x")
	m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
