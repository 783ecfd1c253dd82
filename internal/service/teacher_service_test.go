package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/ruwad-api/internal/dto"
	"github.com/noah-isme/ruwad-api/internal/models"
	"github.com/noah-isme/ruwad-api/internal/repository"
	appErrors "github.com/noah-isme/ruwad-api/pkg/errors"
)

type mockTeacherRepo struct {
	items     []models.Teacher
	createErr error
	listErr   error
}

func (m *mockTeacherRepo) List(ctx context.Context) ([]models.Teacher, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.items, nil
}

func (m *mockTeacherRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, item := range m.items {
		if item.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if m.createErr != nil {
		return m.createErr
	}
	teacher.ID = "generated"
	m.items = append(m.items, *teacher)
	return nil
}

func (m *mockTeacherRepo) DeleteFake(ctx context.Context) (int64, error) {
	kept := m.items[:0]
	var removed int64
	for _, item := range m.items {
		if item.IsFake {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	m.items = kept
	return removed, nil
}

func TestTeacherServiceCreate(t *testing.T) {
	repo := &mockTeacherRepo{}
	svc := NewTeacherService(repo, nil, validator.New(), zap.NewNop())

	teacher, err := svc.Create(context.Background(), dto.CreateTeacherRequest{Name: " Fatima ", Email: "Fatima@School.SA", Subject: "Math"})
	require.NoError(t, err)
	assert.Equal(t, "Fatima", teacher.Name)
	assert.Equal(t, "fatima@school.sa", teacher.Email)

	_, err = svc.Create(context.Background(), dto.CreateTeacherRequest{Name: "Other", Email: "fatima@school.sa", Subject: "Science"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
}

func TestTeacherServiceCreateRaceIsConflict(t *testing.T) {
	repo := &mockTeacherRepo{createErr: repository.ErrDuplicateKey}
	svc := NewTeacherService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateTeacherRequest{Name: "A", Email: "a@school.sa", Subject: "Art"})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestTeacherServiceCreateValidation(t *testing.T) {
	svc := NewTeacherService(&mockTeacherRepo{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateTeacherRequest{Name: "A", Email: "not-an-email", Subject: "Art"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestTeacherServiceClearFake(t *testing.T) {
	repo := &mockTeacherRepo{items: []models.Teacher{
		{ID: "1", Name: "Real", IsFake: false},
		{ID: "2", Name: "Placeholder", IsFake: true},
		{ID: "3", Name: "Placeholder 2", IsFake: true},
	}}
	svc := NewTeacherService(repo, NewMetricsService(), nil, nil)

	n, err := svc.ClearFake(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	teachers, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "Real", teachers[0].Name)
}

func TestTeacherServiceListError(t *testing.T) {
	svc := NewTeacherService(&mockTeacherRepo{listErr: errors.New("db")}, nil, nil, nil)
	_, err := svc.List(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}
