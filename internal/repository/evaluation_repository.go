package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unienroll/enroll-api/internal/models"
)

// EvaluationRepository handles per-enrollment survey statuses.
type EvaluationRepository struct {
	db DBTX
}

// NewEvaluationRepository constructs the repository.
func NewEvaluationRepository(db DBTX) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Insert creates the status row accompanying a new enrollment.
func (r *EvaluationRepository) Insert(ctx context.Context, status *models.EvaluationStatus) error {
	if status.ID == "" {
		status.ID = uuid.NewString()
	}
	if status.Status == "" {
		status.Status = models.EvaluationStatePending
	}
	const query = `INSERT INTO evaluation_statuses (id, enrollment_id, status, filled_up_date)
        VALUES (:id, :enrollment_id, :status, :filled_up_date)`
	if _, err := r.db.NamedExecContext(ctx, query, status); err != nil {
		return fmt.Errorf("insert evaluation status: %w", err)
	}
	return nil
}

// DeleteByEnrollment removes the status row. Runs before the enrollment
// delete because the row references it.
func (r *EvaluationRepository) DeleteByEnrollment(ctx context.Context, enrollmentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM evaluation_statuses WHERE enrollment_id = $1`, enrollmentID); err != nil {
		return fmt.Errorf("delete evaluation status: %w", err)
	}
	return nil
}

// ListByStudent returns the student's evaluation statuses with course context.
func (r *EvaluationRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EvaluationDetail, error) {
	const query = `SELECT ev.id, ev.enrollment_id, ev.status, ev.filled_up_date,
        c.id AS course_id, c.name AS course_name, e.semester
        FROM evaluation_statuses ev
        INNER JOIN enrollments e ON e.id = ev.enrollment_id
        INNER JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1
        ORDER BY e.semester DESC, c.id`
	var details []models.EvaluationDetail
	if err := r.db.SelectContext(ctx, &details, query, studentID); err != nil {
		return nil, fmt.Errorf("list evaluation statuses: %w", err)
	}
	return details, nil
}

// FindByID returns a status row by its ID.
func (r *EvaluationRepository) FindByID(ctx context.Context, id string) (*models.EvaluationStatus, error) {
	const query = `SELECT id, enrollment_id, status, filled_up_date FROM evaluation_statuses WHERE id = $1`
	var status models.EvaluationStatus
	if err := r.db.GetContext(ctx, &status, query, id); err != nil {
		return nil, err
	}
	return &status, nil
}

// Complete flips a pending status to Completed. Completing twice reports
// sql.ErrNoRows via the status filter.
func (r *EvaluationRepository) Complete(ctx context.Context, id string, filledAt time.Time) error {
	const query = `UPDATE evaluation_statuses SET status = $2, filled_up_date = $3 WHERE id = $1 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, id, models.EvaluationStateCompleted, filledAt, models.EvaluationStatePending)
	if err != nil {
		return fmt.Errorf("complete evaluation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete evaluation result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
