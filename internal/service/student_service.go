package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ruwad-api/internal/dto"
	"github.com/noah-isme/ruwad-api/internal/models"
	appErrors "github.com/noah-isme/ruwad-api/pkg/errors"
)

type studentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	CreateBatch(ctx context.Context, students []*models.Student) error
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	SoftDelete(ctx context.Context, id, actor string, at time.Time) error
	Restore(ctx context.Context, id string, at time.Time) (*models.Student, error)
	RestoreLatestDeletedBy(ctx context.Context, actor string, at time.Time) (*models.Student, error)
	ListDeleted(ctx context.Context) ([]models.Student, error)
}

// StudentServiceConfig tunes bulk import.
type StudentServiceConfig struct {
	MinNameRunes int
}

// StudentService handles the student registry use-cases.
type StudentService struct {
	repo         studentRepository
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	sanitizer    textSanitizer
	minNameRunes int
	now          func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg StudentServiceConfig) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MinNameRunes <= 0 {
		cfg.MinNameRunes = 2
	}
	return &StudentService{
		repo:         repo,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		sanitizer:    newTextSanitizer(),
		minNameRunes: cfg.MinNameRunes,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a single student with a fresh code and zero points.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	req.Name = s.sanitizer.Clean(req.Name)
	req.Stage = s.sanitizer.Clean(req.Stage)
	req.ClassName = s.sanitizer.Clean(req.ClassName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}

	student := &models.Student{Name: req.Name, Stage: req.Stage, ClassName: req.ClassName}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Internal(err, "failed to create student")
	}

	s.metrics.RecordStudentEvent(StudentEventCreated, 1)
	s.cache.InvalidateStatistics(ctx)
	return student, nil
}

// Import creates one student per usable name in a single transaction. Names
// shorter than the configured minimum after trimming are skipped.
func (s *StudentService) Import(ctx context.Context, req dto.ImportStudentsRequest) (*dto.ImportStudentsResult, error) {
	req.Stage = s.sanitizer.Clean(req.Stage)
	req.ClassName = s.sanitizer.Clean(req.ClassName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid import payload")
	}

	students := make([]*models.Student, 0, len(req.Names))
	skipped := 0
	for _, raw := range req.Names {
		name := s.sanitizer.Clean(raw)
		if utf8.RuneCountInString(name) < s.minNameRunes {
			skipped++
			continue
		}
		students = append(students, &models.Student{Name: name, Stage: req.Stage, ClassName: req.ClassName})
	}

	if len(students) > 0 {
		if err := s.repo.CreateBatch(ctx, students); err != nil {
			return nil, appErrors.Internal(err, "failed to import students")
		}
		s.metrics.RecordStudentEvent(StudentEventImported, len(students))
		s.cache.InvalidateStatistics(ctx)
	}

	s.logger.Info("students imported",
		zap.String("stage", req.Stage),
		zap.String("class", req.ClassName),
		zap.Int("count", len(students)),
		zap.Int("skipped", skipped),
	)

	return &dto.ImportStudentsResult{
		Count:   len(students),
		Skipped: skipped,
		Message: fmt.Sprintf("imported %d students", len(students)),
	}, nil
}

// List returns non-deleted students sorted by name.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	students, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students")
	}
	return students, nil
}

// Get returns a non-deleted student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.notFoundOr(err, "failed to load student")
	}
	return student, nil
}

// Update edits descriptive fields. Points are owned by the behavior ledger.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.notFoundOr(err, "failed to load student")
	}

	apply := func(dst *string, value *string, field string) error {
		if value == nil {
			return nil
		}
		cleaned := s.sanitizer.Clean(*value)
		if cleaned == "" {
			return appErrors.Clone(appErrors.ErrValidation, field+" cannot be empty")
		}
		*dst = cleaned
		return nil
	}
	if err := apply(&student.Name, req.Name, "name"); err != nil {
		return nil, err
	}
	if err := apply(&student.Stage, req.Stage, "stage"); err != nil {
		return nil, err
	}
	if err := apply(&student.ClassName, req.ClassName, "class"); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, s.notFoundOr(err, "failed to update student")
	}

	s.cache.InvalidateStatistics(ctx)
	return student, nil
}

// SoftDelete tombstones a student on behalf of actor.
func (s *StudentService) SoftDelete(ctx context.Context, id, actor string) error {
	if err := s.repo.SoftDelete(ctx, id, actor, s.now()); err != nil {
		return s.notFoundOr(err, "failed to delete student")
	}
	s.metrics.RecordStudentEvent(StudentEventDeleted, 1)
	s.cache.InvalidateStatistics(ctx)
	s.logger.Info("student deleted", zap.String("student_id", id), zap.String("actor", actor))
	return nil
}

// Restore clears the tombstone of a deleted student.
func (s *StudentService) Restore(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.Restore(ctx, id, s.now())
	if err != nil {
		return nil, s.notFoundOr(err, "failed to restore student")
	}
	s.metrics.RecordStudentEvent(StudentEventRestored, 1)
	s.cache.InvalidateStatistics(ctx)
	return student, nil
}

// ListDeleted returns tombstoned students, newest deletion first.
func (s *StudentService) ListDeleted(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.ListDeleted(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list deleted students")
	}
	return students, nil
}

// UndoLastDeletion restores the most recent student actor deleted that is
// still deleted.
func (s *StudentService) UndoLastDeletion(ctx context.Context, actor string) (*models.Student, error) {
	student, err := s.repo.RestoreLatestDeletedBy(ctx, actor, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "nothing to undo")
		}
		return nil, appErrors.Internal(err, "failed to undo deletion")
	}
	s.metrics.RecordStudentEvent(StudentEventRestored, 1)
	s.cache.InvalidateStatistics(ctx)
	return student, nil
}

func (s *StudentService) notFoundOr(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return appErrors.Internal(err, message)
}
