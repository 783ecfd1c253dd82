package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ruwad-api/internal/models"
	"github.com/noah-isme/ruwad-api/pkg/database"
)

const (
	behaviorColumns = "id, student_id, student_name, behavior_type, points, description, teacher_id, teacher_name, created_at"

	// DefaultBehaviorPageSize applies when the caller omits a limit.
	DefaultBehaviorPageSize = 100
	// MaxBehaviorPageSize caps a single ledger page.
	MaxBehaviorPageSize = 1000
)

// BehaviorRepository manages the behavior ledger.
type BehaviorRepository struct {
	db *sqlx.DB
}

// NewBehaviorRepository constructs a new repository.
func NewBehaviorRepository(db *sqlx.DB) *BehaviorRepository {
	return &BehaviorRepository{db: db}
}

// Record applies the event delta to the student's running total and appends
// the event, both inside one transaction. sql.ErrNoRows is returned when the
// student is missing or deleted, ErrOutOfRange when the total would overflow.
func (r *BehaviorRepository) Record(ctx context.Context, record *models.BehaviorRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const applyDelta = `UPDATE students SET total_points = total_points + $2, updated_at = $3
        WHERE id = $1 AND deleted_at IS NULL RETURNING name`
		if err := tx.GetContext(ctx, &record.StudentName, applyDelta, record.StudentID, record.Points, record.CreatedAt); err != nil {
			if isOutOfRange(err) {
				return fmt.Errorf("apply behavior points: %w", ErrOutOfRange)
			}
			return err
		}

		const insert = `INSERT INTO behavior_records (id, student_id, student_name, behavior_type, points, description, teacher_id, teacher_name, created_at)
        VALUES (:id, :student_id, :student_name, :behavior_type, :points, :description, :teacher_id, :teacher_name, :created_at)`
		if _, err := tx.NamedExecContext(ctx, insert, record); err != nil {
			return fmt.Errorf("create behavior record: %w", err)
		}
		return nil
	})
}

// List returns ledger events newest first with the total matching count.
func (r *BehaviorRepository) List(ctx context.Context, filter models.BehaviorFilter) ([]models.BehaviorRecord, int, error) {
	where := []string{"1=1"}
	var args []interface{}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = DefaultBehaviorPageSize
	}
	if size > MaxBehaviorPageSize {
		size = MaxBehaviorPageSize
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM behavior_records WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d", behaviorColumns, whereClause, size, offset)
	records := []models.BehaviorRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list behavior records: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM behavior_records WHERE %s", whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("count behavior records: %w", err)
	}
	return records, total, nil
}

// DeleteAll removes every ledger event. Student totals are left untouched.
func (r *BehaviorRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM behavior_records`)
	if err != nil {
		return 0, fmt.Errorf("clear behavior records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear behavior records: %w", err)
	}
	return n, nil
}
