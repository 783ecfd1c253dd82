package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ruwad-api/internal/models"
)

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var studentRowColumns = []string{"id", "name", "stage", "class_name", "total_points", "achievements", "deleted_at", "deleted_by", "created_at", "updated_at"}

func TestStudentRepositoryFormatCode(t *testing.T) {
	repo := NewStudentRepository(nil, "", 0)
	assert.Equal(t, "S001", repo.FormatCode(1))
	assert.Equal(t, "S042", repo.FormatCode(42))
	assert.Equal(t, "S1000", repo.FormatCode(1000))

	custom := NewStudentRepository(nil, "ST-", 5)
	assert.Equal(t, "ST-00007", custom.FormatCode(7))
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, "S", 3)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT nextval('student_code_seq')")).
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(7))
	mock.ExpectExec("INSERT INTO students").
		WithArgs("S007", "Layla", "middle", "2A", 0, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{Name: "Layla", Stage: "middle", ClassName: "2A", TotalPoints: 99}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.Equal(t, "S007", student.ID)
	assert.Zero(t, student.TotalPoints)
	assert.NotNil(t, student.Achievements)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateBatchRollsBack(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, "S", 3)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT nextval('student_code_seq')")).
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(1))
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT nextval('student_code_seq')")).
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(2))
	mock.ExpectExec("INSERT INTO students").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.CreateBatch(context.Background(), []*models.Student{{Name: "Aa"}, {Name: "Valid Name"}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateBatchCommits(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, "S", 3)

	mock.ExpectBegin()
	for i := 1; i <= 2; i++ {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT nextval('student_code_seq')")).
			WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(i))
		mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	students := []*models.Student{{Name: "Aa"}, {Name: "Valid Name"}}
	require.NoError(t, repo.CreateBatch(context.Background(), students))
	assert.Equal(t, "S001", students[0].ID)
	assert.Equal(t, "S002", students[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, "S", 3)

	now := time.Now()
	rows := sqlmock.NewRows(studentRowColumns).
		AddRow("S001", "Amal", "middle", "2A", 5, "{}", nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+studentColumns+" FROM students WHERE deleted_at IS NULL AND class_name = $1 AND LOWER(name) LIKE $2 ESCAPE '\\' ORDER BY name ASC, id ASC")).
		WithArgs("2A", "%am%").
		WillReturnRows(rows)

	students, err := repo.List(context.Background(), models.StudentFilter{Stage: "all", Class: "2A", Search: " AM "})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Amal", students[0].Name)
	assert.Nil(t, students[0].DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListSearchMatchesLiterally(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, "S", 3)

	cases := map[string]string{
		"_":      `%\_%`,
		"50%":    `%50\%%`,
		`a\b`:    `%a\\b%`,
		"Al_Ali": `%al\_ali%`,
	}
	for search, pattern := range cases {
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE deleted_at IS NULL AND LOWER(name) LIKE $1 ESCAPE '\' ORDER BY name ASC, id ASC`)).
			WithArgs(pattern).
			WillReturnRows(sqlmock.NewRows(studentRowColumns))

		students, err := repo.List(context.Background(), models.StudentFilter{Search: search})
		require.NoError(t, err, search)
		assert.Empty(t, students)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySoftDeleteMissing(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, "S", 3)

	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET deleted_at = $2, deleted_by = $3, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs("S404", at, "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), "S404", "u1", at)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryRestore(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, "S", 3)

	now := time.Now()
	mock.ExpectQuery(`UPDATE students SET deleted_at = NULL, deleted_by = NULL, updated_at = \$2\s+WHERE id = \$1 AND deleted_at IS NOT NULL RETURNING`).
		WithArgs("S001", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(studentRowColumns).AddRow("S001", "Amal", "middle", "2A", 5, "{}", nil, nil, now, now))

	student, err := repo.Restore(context.Background(), "S001", now)
	require.NoError(t, err)
	assert.Equal(t, 5, student.TotalPoints)

	mock.ExpectQuery(`UPDATE students SET deleted_at = NULL`).
		WithArgs("S001", sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.Restore(context.Background(), "S001", now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryRestoreLatestDeletedBy(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, "S", 3)

	now := time.Now()
	mock.ExpectQuery(`SELECT id FROM students WHERE deleted_by = \$1 AND deleted_at IS NOT NULL ORDER BY deleted_at DESC, id DESC LIMIT 1`).
		WithArgs("teacher-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(studentRowColumns).AddRow("S003", "Huda", "high", "1B", 0, "{}", nil, nil, now, now))

	student, err := repo.RestoreLatestDeletedBy(context.Background(), "teacher-1", now)
	require.NoError(t, err)
	assert.Equal(t, "S003", student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListDeleted(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, "S", 3)

	now := time.Now()
	actor := "u1"
	rows := sqlmock.NewRows(studentRowColumns).
		AddRow("S002", "Sara", "middle", "2A", 0, "{}", now, actor, now, now).
		AddRow("S001", "Amal", "middle", "2A", 0, "{}", now.Add(-time.Hour), actor, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC, id DESC")).WillReturnRows(rows)

	students, err := repo.ListDeleted(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.NotNil(t, students[0].DeletedAt)
	assert.Equal(t, "u1", *students[0].DeletedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateDeleted(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, "S", 3)

	mock.ExpectExec("UPDATE students SET name").WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), &models.Student{ID: "S001", Name: "X"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
