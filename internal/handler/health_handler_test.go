package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/ruwad-api/internal/repository"
	"github.com/noah-isme/ruwad-api/internal/service"
)

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }

func TestHealthHandlerReadyWithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	handler := NewHealthHandler(stubPinger{}, repository.NewCacheRepository(client, nil), nil)
	c, rec := newTestContext(http.MethodGet, "/ready", nil)

	handler.Ready(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cache":"ok"`)
}

func TestHealthHandlerReadyDatabaseDown(t *testing.T) {
	handler := NewHealthHandler(stubPinger{err: errors.New("connection refused")}, nil, nil)
	c, rec := newTestContext(http.MethodGet, "/ready", nil)

	handler.Ready(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")
}

func TestHealthHandlerMetrics(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordBehavior("positive", 3)
	handler := NewHealthHandler(stubPinger{}, nil, metrics)
	c, rec := newTestContext(http.MethodGet, "/metrics", nil)

	handler.Health(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/metrics", nil)
	handler.Prometheus(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "behavior_events_total")
}
