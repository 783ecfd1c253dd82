package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/ruwad-api/internal/models"
	"github.com/noah-isme/ruwad-api/internal/repository"
)

// memoryStore backs the student, ledger and statistics fakes with one shared
// state so cross-component properties can be asserted.
type memoryStore struct {
	mu        sync.Mutex
	seq       int64
	students  map[string]*models.Student
	behaviors []models.BehaviorRecord
	failBatch error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{students: make(map[string]*models.Student)}
}

func (m *memoryStore) insert(st *models.Student) {
	m.seq++
	st.ID = fmt.Sprintf("S%03d", m.seq)
	st.TotalPoints = 0
	st.Achievements = pq.StringArray{}
	stored := *st
	m.students[st.ID] = &stored
}

func (m *memoryStore) snapshot(id string) models.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.students[id]
}

type memoryStudents struct{ *memoryStore }

func (m memoryStudents) Create(ctx context.Context, st *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(st)
	return nil
}

func (m memoryStudents) CreateBatch(ctx context.Context, sts []*models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failBatch != nil {
		return m.failBatch
	}
	for _, st := range sts {
		m.insert(st)
	}
	return nil
}

func (m memoryStudents) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Student{}
	for _, st := range m.students {
		if st.DeletedAt != nil {
			continue
		}
		if filter.Stage != "" && filter.Stage != "all" && st.Stage != filter.Stage {
			continue
		}
		if filter.Class != "" && filter.Class != "all" && st.ClassName != filter.Class {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(st.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m memoryStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.students[id]
	if !ok || st.DeletedAt != nil {
		return nil, sql.ErrNoRows
	}
	cp := *st
	return &cp, nil
}

func (m memoryStudents) Update(ctx context.Context, st *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.students[st.ID]
	if !ok || stored.DeletedAt != nil {
		return sql.ErrNoRows
	}
	stored.Name, stored.Stage, stored.ClassName = st.Name, st.Stage, st.ClassName
	return nil
}

func (m memoryStudents) SoftDelete(ctx context.Context, id, actor string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.students[id]
	if !ok || st.DeletedAt != nil {
		return sql.ErrNoRows
	}
	st.DeletedAt, st.DeletedBy = &at, &actor
	return nil
}

func (m memoryStudents) Restore(ctx context.Context, id string, at time.Time) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.students[id]
	if !ok || st.DeletedAt == nil {
		return nil, sql.ErrNoRows
	}
	st.DeletedAt, st.DeletedBy = nil, nil
	cp := *st
	return &cp, nil
}

func (m memoryStudents) RestoreLatestDeletedBy(ctx context.Context, actor string, at time.Time) (*models.Student, error) {
	m.mu.Lock()
	var latest *models.Student
	for _, st := range m.students {
		if st.DeletedAt == nil || *st.DeletedBy != actor {
			continue
		}
		if latest == nil || st.DeletedAt.After(*latest.DeletedAt) {
			latest = st
		}
	}
	m.mu.Unlock()
	if latest == nil {
		return nil, sql.ErrNoRows
	}
	return m.Restore(ctx, latest.ID, at)
}

func (m memoryStudents) ListDeleted(ctx context.Context) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Student{}
	for _, st := range m.students {
		if st.DeletedAt != nil {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeletedAt.After(*out[j].DeletedAt) })
	return out, nil
}

type memoryLedger struct{ *memoryStore }

func (m memoryLedger) Record(ctx context.Context, rec *models.BehaviorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.students[rec.StudentID]
	if !ok || st.DeletedAt != nil {
		return sql.ErrNoRows
	}
	total := int64(st.TotalPoints) + int64(rec.Points)
	if total > math.MaxInt32 || total < math.MinInt32 {
		return repository.ErrOutOfRange
	}
	st.TotalPoints = int(total)
	rec.ID = fmt.Sprintf("b%d", len(m.behaviors)+1)
	rec.StudentName = st.Name
	rec.CreatedAt = time.Now().UTC()
	m.behaviors = append(m.behaviors, *rec)
	return nil
}

func (m memoryLedger) List(ctx context.Context, filter models.BehaviorFilter) ([]models.BehaviorRecord, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.BehaviorRecord, 0, len(m.behaviors))
	for i := len(m.behaviors) - 1; i >= 0; i-- {
		if filter.StudentID != "" && m.behaviors[i].StudentID != filter.StudentID {
			continue
		}
		out = append(out, m.behaviors[i])
	}
	start := (filter.Page - 1) * filter.PageSize
	if start > len(out) {
		start = len(out)
	}
	end := start + filter.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], len(out), nil
}

func (m memoryLedger) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.behaviors))
	m.behaviors = nil
	return n, nil
}

type memoryStats struct{ *memoryStore }

func (m memoryStats) active(stage string) []*models.Student {
	var out []*models.Student
	for _, st := range m.students {
		if st.DeletedAt != nil || (stage != "" && st.Stage != stage) {
			continue
		}
		out = append(out, st)
	}
	return out
}

func (m memoryStats) StudentSummary(ctx context.Context, stage string) (models.StudentSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := m.active(stage)
	if len(active) == 0 {
		return models.StudentSummary{}, nil
	}
	sum := 0
	for _, st := range active {
		sum += st.TotalPoints
	}
	return models.StudentSummary{TotalStudents: len(active), AveragePoints: float64(sum) / float64(len(active))}, nil
}

func (m memoryStats) CountBehaviors(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.behaviors), nil
}

func (m memoryStats) CountBehaviorsByType(ctx context.Context, stage string) ([]models.BehaviorTypeCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[models.BehaviorType]int{}
	for _, b := range m.behaviors {
		st := m.students[b.StudentID]
		if st.DeletedAt != nil || (stage != "" && st.Stage != stage) {
			continue
		}
		counts[b.Type]++
	}
	out := []models.BehaviorTypeCount{}
	for kind, n := range counts {
		out = append(out, models.BehaviorTypeCount{Type: kind, Count: n})
	}
	return out, nil
}

func (m memoryStats) TopStudents(ctx context.Context, stage string, limit int) ([]models.TopStudent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := m.active(stage)
	sort.Slice(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	out := []models.TopStudent{}
	for i, st := range active {
		if i == limit {
			break
		}
		out = append(out, models.TopStudent{ID: st.ID, Name: st.Name, Stage: st.Stage, ClassName: st.ClassName, Points: st.TotalPoints})
	}
	return out, nil
}

func (m memoryStats) ResetPoints(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range m.students {
		st.TotalPoints = 0
		st.Achievements = pq.StringArray{}
	}
	return int64(len(m.students)), nil
}
