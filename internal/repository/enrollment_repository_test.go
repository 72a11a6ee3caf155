package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unienroll/enroll-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryCountActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments WHERE student_id = $1 AND course_id = $2 AND semester = $3")).
		WithArgs("s1", "CS101", "JAN2026").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := repo.CountActive(context.Background(), "s1", "CS101", "JAN2026")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositorySumCreditHours(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(c.credit_hours), 0)")).
		WithArgs("s1", "JAN2026").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(12))

	total, err := repo.SumCreditHours(context.Background(), "s1", "JAN2026")
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryInsertDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WithArgs(sqlmock.AnyArg(), "s1", "CS101", "JAN2026", "Enrolled", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	enrollment := &models.Enrollment{StudentID: "s1", CourseID: "CS101", Semester: "JAN2026"}
	err := repo.Insert(context.Background(), enrollment)
	require.NoError(t, err)
	assert.NotEmpty(t, enrollment.ID)
	assert.Equal(t, "Enrolled", enrollment.LastAction)
	assert.False(t, enrollment.ActionDate.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE id = $1")).
		WithArgs("enr-x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "enr-x")
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"enrollment_id", "course_id", "course_name", "credit_hours", "day_of_week", "start_time", "end_time", "venue", "lecturer", "section", "cost"}).
		AddRow("enr-1", "CS101", "Algorithms", 3, "Monday", "09:00", "11:00", "A-101", "Dr. Tan", "A", 450.0)
	mock.ExpectQuery("SELECT e.id AS enrollment_id").
		WithArgs("s1", "JAN2026").
		WillReturnRows(rows)

	enrolled, err := repo.ListActive(context.Background(), "s1", "JAN2026")
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, "CS101", enrolled[0].CourseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
