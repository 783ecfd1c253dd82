package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ruwad-api/internal/dto"
	"github.com/noah-isme/ruwad-api/internal/models"
	"github.com/noah-isme/ruwad-api/internal/repository"
	appErrors "github.com/noah-isme/ruwad-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context) ([]models.Teacher, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	DeleteFake(ctx context.Context) (int64, error)
}

// TeacherService manages the teacher roster.
type TeacherService struct {
	repo      teacherRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	sanitizer textSanitizer
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, metrics: metrics, validator: validate, logger: logger, sanitizer: newTextSanitizer()}
}

// List returns the roster ordered by name.
func (s *TeacherService) List(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list teachers")
	}
	return teachers, nil
}

// Create adds a teacher. A duplicate email is a Conflict.
func (s *TeacherService) Create(ctx context.Context, req dto.CreateTeacherRequest) (*models.Teacher, error) {
	req.Name = s.sanitizer.Clean(req.Name)
	req.Subject = s.sanitizer.Clean(req.Subject)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid teacher payload")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check teacher email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "teacher email already exists")
	}

	teacher := &models.Teacher{Name: req.Name, Email: req.Email, Subject: req.Subject, IsFake: req.IsFake}
	if err := s.repo.Create(ctx, teacher); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "teacher email already exists")
		}
		return nil, appErrors.Internal(err, "failed to create teacher")
	}
	return teacher, nil
}

// ClearFake removes placeholder teachers and returns how many were removed.
func (s *TeacherService) ClearFake(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteFake(ctx)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to clear fake teachers")
	}
	s.metrics.RecordAdminOperation("teacher_clear_fake")
	s.logger.Info("fake teachers cleared", zap.Int64("count", n))
	return n, nil
}
