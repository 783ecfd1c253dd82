package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ruwad-api/internal/dto"
	"github.com/noah-isme/ruwad-api/internal/models"
	"github.com/noah-isme/ruwad-api/internal/repository"
	appErrors "github.com/noah-isme/ruwad-api/pkg/errors"
	"github.com/noah-isme/ruwad-api/pkg/export"
)

type failingRenderer struct{}

func (failingRenderer) Render(export.Dataset) ([]byte, error) {
	return nil, errors.New("renderer down")
}

func seedReportStore(t *testing.T) *memoryStore {
	store := newMemoryStore()
	ledger := NewBehaviorService(memoryLedger{store}, nil, nil, nil, nil)
	ctx := context.Background()

	middle := seedStudent(t, store, "Sara", "middle")
	high := seedStudent(t, store, "Huda", "high")
	for _, req := range []dto.RecordBehaviorRequest{
		{StudentID: middle, Type: models.BehaviorPositive, Points: 5},
		{StudentID: middle, Type: models.BehaviorNegative, Points: -2},
		{StudentID: high, Type: models.BehaviorPositive, Points: 3},
	} {
		_, err := ledger.Record(ctx, req, testActor)
		require.NoError(t, err)
	}
	return store
}

func TestReportServiceBehaviorReport(t *testing.T) {
	svc := NewReportService(memoryStats{seedReportStore(t)}, nil, nil, 0, nil, nil)

	all, err := svc.BehaviorReport(context.Background(), "all")
	require.NoError(t, err)
	assert.Empty(t, all.Stage)
	assert.Equal(t, 2, all.TotalStudents)
	assert.Equal(t, 2, all.PositiveBehaviors)
	assert.Equal(t, 1, all.NegativeBehaviors)
	assert.Equal(t, 3.0, all.AveragePoints)

	middle, err := svc.BehaviorReport(context.Background(), "middle")
	require.NoError(t, err)
	assert.Equal(t, "middle", middle.Stage)
	assert.Equal(t, 1, middle.TotalStudents)
	assert.Equal(t, 1, middle.PositiveBehaviors)
	assert.Equal(t, 1, middle.NegativeBehaviors)
	require.Len(t, middle.TopStudents, 1)
	assert.Equal(t, "Sara", middle.TopStudents[0].Name)
}

func TestReportServiceCachesOnlyKnownStages(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewCacheService(repository.NewCacheRepository(client, nil), nil, time.Minute, nil, true)
	svc := NewReportService(memoryStats{seedReportStore(t)}, cache, nil, 0, nil, nil)
	ctx := context.Background()

	_, err := svc.BehaviorReport(ctx, "")
	require.NoError(t, err)
	_, err = svc.BehaviorReport(ctx, "middle")
	require.NoError(t, err)
	assert.True(t, srv.Exists(reportCacheKey("")))
	assert.True(t, srv.Exists(reportCacheKey("middle")))

	for _, stage := range []string{"nursery", "x1", "x2", strings.Repeat("z", 200)} {
		report, err := svc.BehaviorReport(ctx, stage)
		require.NoError(t, err)
		assert.Zero(t, report.TotalStudents)
		assert.False(t, srv.Exists(reportCacheKey(stage)), stage)
	}
	assert.Len(t, srv.Keys(), 2)
}

func TestReportServiceRenderCSV(t *testing.T) {
	svc := NewReportService(memoryStats{seedReportStore(t)}, nil, nil, 0, nil, nil)
	report, err := svc.BehaviorReport(context.Background(), "")
	require.NoError(t, err)

	file, err := svc.Render(report, dto.ReportFormatCSV)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(file.Filename, "behavior-report-"))
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(file.Body), "Positive behaviors,2")
	assert.Contains(t, string(file.Body), "2,S001,Sara,middle,2A,3")
}

func TestReportServiceRenderPDF(t *testing.T) {
	svc := NewReportService(memoryStats{seedReportStore(t)}, nil, nil, 0, nil, nil)
	report, err := svc.BehaviorReport(context.Background(), "high")
	require.NoError(t, err)

	file, err := svc.Render(report, dto.ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Contains(t, file.Filename, "-high-")
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestReportServiceRenderErrors(t *testing.T) {
	svc := NewReportService(memoryStats{newMemoryStore()}, nil, nil, 0, failingRenderer{}, nil)
	report, err := svc.BehaviorReport(context.Background(), "")
	require.NoError(t, err)

	_, err = svc.Render(report, "xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Render(report, dto.ReportFormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestFilenameSafe(t *testing.T) {
	assert.Equal(t, "middle", filenameSafe("middle"))
	assert.Equal(t, "a-b", filenameSafe(`a"b`))
	assert.Empty(t, filenameSafe("متوسط"))
}
