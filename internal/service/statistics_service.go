package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ruwad-api/internal/dto"
	"github.com/noah-isme/ruwad-api/internal/models"
	appErrors "github.com/noah-isme/ruwad-api/pkg/errors"
)

type statisticsRepository interface {
	StudentSummary(ctx context.Context, stage string) (models.StudentSummary, error)
	CountBehaviors(ctx context.Context) (int, error)
	CountBehaviorsByType(ctx context.Context, stage string) ([]models.BehaviorTypeCount, error)
	TopStudents(ctx context.Context, stage string, limit int) ([]models.TopStudent, error)
	ResetPoints(ctx context.Context) (int64, error)
}

// StatisticsConfig tunes the dashboard.
type StatisticsConfig struct {
	TopStudents int
	CacheTTL    time.Duration
}

// StatisticsService computes aggregate views on demand.
type StatisticsService struct {
	repo    statisticsRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     StatisticsConfig
	now     func() time.Time
}

// NewStatisticsService constructs a StatisticsService.
func NewStatisticsService(repo statisticsRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg StatisticsConfig) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TopStudents <= 0 {
		cfg.TopStudents = 10
	}
	return &StatisticsService{repo: repo, cache: cache, metrics: metrics, logger: logger, cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
}

// Dashboard returns totals, the rounded average and the leaderboard. The
// second return value reports whether the payload came from cache.
func (s *StatisticsService) Dashboard(ctx context.Context) (*dto.DashboardResponse, bool, error) {
	var cached dto.DashboardResponse
	if hit, err := s.cache.Get(ctx, DashboardCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	summary, err := s.repo.StudentSummary(ctx, "")
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to summarize students")
	}
	behaviors, err := s.repo.CountBehaviors(ctx)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to count behaviors")
	}
	top, err := s.repo.TopStudents(ctx, "", s.cfg.TopStudents)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to load top students")
	}

	resp := &dto.DashboardResponse{
		TotalStudents:        summary.TotalStudents,
		TotalBehaviorRecords: behaviors,
		AveragePoints:        averagePoints(summary),
		TopStudents:          top,
		GeneratedAt:          s.now(),
	}

	_ = s.cache.Set(ctx, DashboardCacheKey, resp, s.cfg.CacheTTL)
	return resp, false, nil
}

// ResetAll zeroes every student's total and clears achievements. The ledger
// is left as is.
func (s *StatisticsService) ResetAll(ctx context.Context) (int64, error) {
	n, err := s.repo.ResetPoints(ctx)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to reset statistics")
	}
	s.metrics.RecordAdminOperation("statistics_reset")
	s.cache.InvalidateStatistics(ctx)
	s.logger.Warn("statistics reset", zap.Int64("students", n))
	return n, nil
}

func averagePoints(summary models.StudentSummary) float64 {
	if summary.TotalStudents == 0 {
		return 0
	}
	return math.Round(summary.AveragePoints*100) / 100
}
