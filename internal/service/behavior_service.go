package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ruwad-api/internal/dto"
	"github.com/noah-isme/ruwad-api/internal/models"
	"github.com/noah-isme/ruwad-api/internal/repository"
	appErrors "github.com/noah-isme/ruwad-api/pkg/errors"
)

type behaviorRepository interface {
	Record(ctx context.Context, record *models.BehaviorRecord) error
	List(ctx context.Context, filter models.BehaviorFilter) ([]models.BehaviorRecord, int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// BehaviorService maintains the behavior ledger.
type BehaviorService struct {
	repo      behaviorRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	sanitizer textSanitizer
}

// NewBehaviorService constructs the behavior service.
func NewBehaviorService(repo behaviorRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BehaviorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BehaviorService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger, sanitizer: newTextSanitizer()}
}

// Record appends an event attributed to actor and moves the student's total
// by the event's points.
func (s *BehaviorService) Record(ctx context.Context, req dto.RecordBehaviorRequest, actor dto.Actor) (*models.BehaviorRecord, error) {
	req.Description = s.sanitizer.Clean(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid behavior payload")
	}

	record := &models.BehaviorRecord{
		StudentID:   req.StudentID,
		Type:        req.Type,
		Points:      req.Points,
		Description: req.Description,
		TeacherID:   actor.ID,
		TeacherName: actor.Name,
	}
	if err := s.repo.Record(ctx, record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		if errors.Is(err, repository.ErrOutOfRange) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "point total out of range")
		}
		return nil, appErrors.Internal(err, "failed to record behavior")
	}

	s.metrics.RecordBehavior(record.Type, record.Points)
	s.cache.InvalidateStatistics(ctx)
	return record, nil
}

// List returns a page of the ledger, newest first, optionally for one student.
func (s *BehaviorService) List(ctx context.Context, query dto.BehaviorListQuery) ([]models.BehaviorRecord, *models.Pagination, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.Limit
	if size <= 0 {
		size = repository.DefaultBehaviorPageSize
	}
	if size > repository.MaxBehaviorPageSize {
		size = repository.MaxBehaviorPageSize
	}

	records, total, err := s.repo.List(ctx, models.BehaviorFilter{StudentID: strings.TrimSpace(query.StudentID), Page: page, PageSize: size})
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list behaviors")
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ClearAll empties the ledger. Student totals keep their values.
func (s *BehaviorService) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to clear behaviors")
	}
	s.metrics.RecordAdminOperation("behavior_clear")
	s.cache.InvalidateStatistics(ctx)
	s.logger.Warn("behavior ledger cleared", zap.Int64("count", n))
	return n, nil
}
