package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unienroll/enroll-api/internal/models"
)

// EnrollmentRepository is the enrollment ledger: capacity-correct reads and
// writes, no business rules.
type EnrollmentRepository struct {
	db DBTX
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// CountActive returns the number of active enrollments for the combination.
// At most one can exist; a non-zero count means "enrolled".
func (r *EnrollmentRepository) CountActive(ctx context.Context, studentID, courseID, semester string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE student_id = $1 AND course_id = $2 AND semester = $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, courseID, semester); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return count, nil
}

// CountByCourse returns how many students hold a seat in the course.
func (r *EnrollmentRepository) CountByCourse(ctx context.Context, courseID, semester string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND semester = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID, semester); err != nil {
		return 0, fmt.Errorf("count course enrollments: %w", err)
	}
	return count, nil
}

// SumCreditHours totals the credit hours of the student's active enrollments.
func (r *EnrollmentRepository) SumCreditHours(ctx context.Context, studentID, semester string) (int, error) {
	const query = `SELECT COALESCE(SUM(c.credit_hours), 0)
        FROM enrollments e
        INNER JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1 AND e.semester = $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, studentID, semester); err != nil {
		return 0, fmt.Errorf("sum credit hours: %w", err)
	}
	return total, nil
}

// ListActive returns the student's enrollments with joined course schedule
// fields, as needed for timetable display and conflict checks.
func (r *EnrollmentRepository) ListActive(ctx context.Context, studentID, semester string) ([]models.EnrolledCourse, error) {
	const query = `SELECT e.id AS enrollment_id, c.id AS course_id, c.name AS course_name,
        c.credit_hours, c.day_of_week, c.start_time, c.end_time, c.venue, c.lecturer, c.section, c.cost
        FROM enrollments e
        INNER JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1 AND e.semester = $2
        ORDER BY c.day_of_week, c.start_time`
	var enrolled []models.EnrolledCourse
	if err := r.db.SelectContext(ctx, &enrolled, query, studentID, semester); err != nil {
		return nil, fmt.Errorf("list active enrollments: %w", err)
	}
	return enrolled, nil
}

// Find returns the enrollment for the combination, or sql.ErrNoRows.
func (r *EnrollmentRepository) Find(ctx context.Context, studentID, courseID, semester string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, semester, last_action, action_date
        FROM enrollments WHERE student_id = $1 AND course_id = $2 AND semester = $3`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, courseID, semester); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Insert persists a new enrollment row.
func (r *EnrollmentRepository) Insert(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.ActionDate.IsZero() {
		enrollment.ActionDate = time.Now().UTC()
	}
	if enrollment.LastAction == "" {
		enrollment.LastAction = "Enrolled"
	}
	const query = `INSERT INTO enrollments (id, student_id, course_id, semester, last_action, action_date)
        VALUES (:id, :student_id, :course_id, :semester, :last_action, :action_date)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// Delete removes an enrollment row by ID.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete enrollment result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
