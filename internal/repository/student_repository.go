package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/ruwad-api/internal/models"
	"github.com/noah-isme/ruwad-api/pkg/database"
)

const studentColumns = "id, name, stage, class_name, total_points, achievements, deleted_at, deleted_by, created_at, updated_at"

// filterAll is the sentinel value clients send to disable a stage/class filter.
const filterAll = "all"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db      *sqlx.DB
	prefix  string
	padding int
}

// NewStudentRepository constructs a StudentRepository. Student codes are
// rendered as prefix followed by the zero padded sequence value.
func NewStudentRepository(db *sqlx.DB, prefix string, padding int) *StudentRepository {
	if prefix == "" {
		prefix = "S"
	}
	if padding <= 0 {
		padding = 3
	}
	return &StudentRepository{db: db, prefix: prefix, padding: padding}
}

// FormatCode renders a sequence value as a student code.
func (r *StudentRepository) FormatCode(seq int64) string {
	return fmt.Sprintf("%s%0*d", r.prefix, r.padding, seq)
}

func (r *StudentRepository) nextCode(ctx context.Context, q sqlx.QueryerContext) (string, error) {
	var seq int64
	if err := sqlx.GetContext(ctx, q, &seq, `SELECT nextval('student_code_seq')`); err != nil {
		return "", fmt.Errorf("allocate student code: %w", err)
	}
	return r.FormatCode(seq), nil
}

func prepareStudent(student *models.Student, now time.Time) {
	student.TotalPoints = 0
	if student.Achievements == nil {
		student.Achievements = pq.StringArray{}
	}
	student.DeletedAt = nil
	student.DeletedBy = nil
	student.CreatedAt = now
	student.UpdatedAt = now
}

const insertStudentQuery = `INSERT INTO students (id, name, stage, class_name, total_points, achievements, created_at, updated_at)
        VALUES (:id, :name, :stage, :class_name, :total_points, :achievements, :created_at, :updated_at)`

// Create allocates a code for the student and inserts it.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	code, err := r.nextCode(ctx, r.db)
	if err != nil {
		return err
	}
	student.ID = code
	prepareStudent(student, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertStudentQuery, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// CreateBatch inserts all students in a single transaction.
func (r *StudentRepository) CreateBatch(ctx context.Context, students []*models.Student) error {
	if len(students) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, student := range students {
			code, err := r.nextCode(ctx, tx)
			if err != nil {
				return err
			}
			student.ID = code
			prepareStudent(student, now)
			if _, err := tx.NamedExecContext(ctx, insertStudentQuery, student); err != nil {
				return fmt.Errorf("import student %s: %w", student.Name, err)
			}
		}
		return nil
	})
}

// likeEscaper makes a search term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns non-deleted students matching the filter, ordered by name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	conditions := []string{"deleted_at IS NULL"}
	var args []interface{}

	if filter.Stage != "" && filter.Stage != filterAll {
		conditions = append(conditions, fmt.Sprintf("stage = $%d", len(args)+1))
		args = append(args, filter.Stage)
	}
	if filter.Class != "" && filter.Class != filterAll {
		conditions = append(conditions, fmt.Sprintf("class_name = $%d", len(args)+1))
		args = append(args, filter.Class)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf(`LOWER(name) LIKE $%d ESCAPE '\'`, len(args)+1))
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(search))+"%")
	}

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY name ASC, id ASC", studentColumns, strings.Join(conditions, " AND "))
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID returns a non-deleted student.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1 AND deleted_at IS NULL", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// Update stores descriptive fields of a non-deleted student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, stage = :stage, class_name = :class_name, updated_at = :updated_at
        WHERE id = :id AND deleted_at IS NULL`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return requireAffected(res, "update student")
}

// SoftDelete tombstones a non-deleted student on behalf of actor.
func (r *StudentRepository) SoftDelete(ctx context.Context, id, actor string, at time.Time) error {
	const query = `UPDATE students SET deleted_at = $2, deleted_by = $3, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, at, actor)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return requireAffected(res, "delete student")
}

// Restore clears the tombstone of a deleted student and returns it.
func (r *StudentRepository) Restore(ctx context.Context, id string, at time.Time) (*models.Student, error) {
	query := fmt.Sprintf(`UPDATE students SET deleted_at = NULL, deleted_by = NULL, updated_at = $2
        WHERE id = $1 AND deleted_at IS NOT NULL RETURNING %s`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id, at); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("restore student: %w", err)
	}
	return &student, nil
}

// RestoreLatestDeletedBy restores the most recent student deleted by actor
// that is still deleted.
func (r *StudentRepository) RestoreLatestDeletedBy(ctx context.Context, actor string, at time.Time) (*models.Student, error) {
	query := fmt.Sprintf(`UPDATE students SET deleted_at = NULL, deleted_by = NULL, updated_at = $2
        WHERE id = (SELECT id FROM students WHERE deleted_by = $1 AND deleted_at IS NOT NULL ORDER BY deleted_at DESC, id DESC LIMIT 1)
        RETURNING %s`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, actor, at); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("undo student deletion: %w", err)
	}
	return &student, nil
}

// ListDeleted returns tombstoned students, newest deletion first.
func (r *StudentRepository) ListDeleted(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC, id DESC", studentColumns)
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list deleted students: %w", err)
	}
	return students, nil
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
