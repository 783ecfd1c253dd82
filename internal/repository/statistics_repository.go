package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ruwad-api/internal/models"
)

// StatisticsRepository runs aggregate queries over students and the ledger.
type StatisticsRepository struct {
	db *sqlx.DB
}

// NewStatisticsRepository constructs a StatisticsRepository.
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

func stageClause(stage, column string, args []interface{}) (string, []interface{}) {
	if stage == "" || stage == filterAll {
		return "", args
	}
	args = append(args, stage)
	return fmt.Sprintf(" AND %s = $%d", column, len(args)), args
}

// StudentSummary counts non-deleted students and averages their points.
func (r *StatisticsRepository) StudentSummary(ctx context.Context, stage string) (models.StudentSummary, error) {
	clause, args := stageClause(stage, "stage", nil)
	query := `SELECT COUNT(*) AS total_students, COALESCE(AVG(total_points), 0)::float8 AS average_points
        FROM students WHERE deleted_at IS NULL` + clause
	var summary models.StudentSummary
	if err := r.db.GetContext(ctx, &summary, query, args...); err != nil {
		return models.StudentSummary{}, fmt.Errorf("summarize students: %w", err)
	}
	return summary, nil
}

// CountBehaviors returns the number of ledger events.
func (r *StatisticsRepository) CountBehaviors(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM behavior_records`); err != nil {
		return 0, fmt.Errorf("count behavior records: %w", err)
	}
	return total, nil
}

// CountBehaviorsByType groups ledger events by type, optionally restricted to
// students of one stage.
func (r *StatisticsRepository) CountBehaviorsByType(ctx context.Context, stage string) ([]models.BehaviorTypeCount, error) {
	clause, args := stageClause(stage, "s.stage", nil)
	query := `SELECT b.behavior_type, COUNT(*) AS count
        FROM behavior_records b JOIN students s ON s.id = b.student_id
        WHERE s.deleted_at IS NULL` + clause + `
        GROUP BY b.behavior_type`
	counts := []models.BehaviorTypeCount{}
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("count behaviors by type: %w", err)
	}
	return counts, nil
}

// TopStudents returns the leaderboard of non-deleted students.
func (r *StatisticsRepository) TopStudents(ctx context.Context, stage string, limit int) ([]models.TopStudent, error) {
	if limit <= 0 {
		limit = 10
	}
	clause, args := stageClause(stage, "stage", nil)
	query := fmt.Sprintf(`SELECT id, name, stage, class_name, total_points FROM students
        WHERE deleted_at IS NULL%s ORDER BY total_points DESC, name ASC, id ASC LIMIT %d`, clause, limit)
	students := []models.TopStudent{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list top students: %w", err)
	}
	return students, nil
}

// ResetPoints zeroes every student's total and clears achievements,
// tombstoned students included. The ledger is not touched.
func (r *StatisticsRepository) ResetPoints(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE students SET total_points = 0, achievements = '{}', updated_at = now()`)
	if err != nil {
		return 0, fmt.Errorf("reset statistics: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset statistics: %w", err)
	}
	return n, nil
}
