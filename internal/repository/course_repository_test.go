package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unienroll/enroll-api/internal/models"
)

func courseAvailabilityRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "major", "credit_hours", "day_of_week", "start_time", "end_time",
		"venue", "lecturer", "section", "total_seats", "cost", "created_at", "updated_at",
		"available_seats",
	}).AddRow("CS101", "Algorithms", "CS", 3, "Monday", "09:00", "11:00",
		"A-101", "Dr. Tan", "A", 30, 450.0, now, now, 12)
}

func TestCourseRepositoryListNoFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("e.semester = $1) AS available_seats")).
		WithArgs("JAN2026").
		WillReturnRows(courseAvailabilityRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses c")).
		WithArgs().
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	courses, total, err := repo.List(context.Background(), models.CourseFilter{}, "JAN2026")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, courses, 1)
	assert.Equal(t, 12, courses[0].AvailableSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListMajorFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	// The filter binds $1 in both queries; the semester is $2 and only the
	// availability subquery uses it.
	mock.ExpectQuery(regexp.QuoteMeta("e.semester = $2) AS available_seats")).
		WithArgs("CS", "JAN2026").
		WillReturnRows(courseAvailabilityRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses c WHERE c.major = $1")).
		WithArgs("CS").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, total, err := repo.List(context.Background(), models.CourseFilter{Major: "CS"}, "JAN2026")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListSearchFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("(c.id ILIKE $2 OR c.name ILIKE $2)")).
		WithArgs("CS", "%algo%", "JAN2026").
		WillReturnRows(courseAvailabilityRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses c WHERE c.major = $1 AND (c.id ILIKE $2 OR c.name ILIKE $2)")).
		WithArgs("CS", "%algo%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.CourseFilter{Major: "CS", Search: "algo"}, "JAN2026")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryHasEnrollments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments WHERE course_id = $1 LIMIT 1")).
		WithArgs("CS101").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	has, err := repo.HasEnrollments(context.Background(), "CS101")
	require.NoError(t, err)
	assert.True(t, has)
	assert.NoError(t, mock.ExpectationsWereMet())
}
