package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unienroll/enroll-api/internal/models"
)

// RequestRepository handles persistence of add/drop requests.
type RequestRepository struct {
	db DBTX
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db DBTX) *RequestRepository {
	return &RequestRepository{db: db}
}

// Insert persists a new request with status Pending.
func (r *RequestRepository) Insert(ctx context.Context, request *models.EnrollmentRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.RequestDate.IsZero() {
		request.RequestDate = time.Now().UTC()
	}
	if request.Status == "" {
		request.Status = models.RequestStatusPending
	}
	const query = `INSERT INTO enrollment_requests (id, student_id, course_id, action, reason, status, semester, request_date)
        VALUES (:id, :student_id, :course_id, :action, :reason, :status, :semester, :request_date)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("insert enrollment request: %w", err)
	}
	return nil
}

// HasPending reports whether the student already has a pending request for
// the course.
func (r *RequestRepository) HasPending(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT 1 FROM enrollment_requests
        WHERE student_id = $1 AND course_id = $2 AND status = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID, models.RequestStatusPending); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check pending request: %w", err)
	}
	return true, nil
}

// FindByID returns a request by its ID.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.EnrollmentRequest, error) {
	const query = `SELECT id, student_id, course_id, action, reason, status, semester, request_date, processed_date, processed_by
        FROM enrollment_requests WHERE id = $1`
	var request models.EnrollmentRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// LockPending loads the request row locked for update, filtered to Pending.
// sql.ErrNoRows means the request does not exist or was already processed;
// under concurrent approval the losing admin lands here.
func (r *RequestRepository) LockPending(ctx context.Context, id string) (*models.EnrollmentRequest, error) {
	const query = `SELECT id, student_id, course_id, action, reason, status, semester, request_date, processed_date, processed_by
        FROM enrollment_requests WHERE id = $1 AND status = $2 FOR UPDATE`
	var request models.EnrollmentRequest
	if err := r.db.GetContext(ctx, &request, query, id, models.RequestStatusPending); err != nil {
		return nil, err
	}
	return &request, nil
}

// MarkProcessed finalises a pending request. The status filter makes the
// transition terminal: processing an already processed row reports
// sql.ErrNoRows.
func (r *RequestRepository) MarkProcessed(ctx context.Context, id string, status models.RequestStatus, processedBy string, processedAt time.Time) error {
	const query = `UPDATE enrollment_requests
        SET status = $2, processed_date = $3, processed_by = $4
        WHERE id = $1 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, id, status, processedAt, processedBy, models.RequestStatusPending)
	if err != nil {
		return fmt.Errorf("mark request processed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark request processed result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByStudent returns the student's request history, newest first.
func (r *RequestRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentRequestDetail, error) {
	const query = `SELECT r.id, r.student_id, r.course_id, r.action, r.reason, r.status, r.semester,
        r.request_date, r.processed_date, r.processed_by,
        c.name AS course_name, s.first_name || ' ' || s.last_name AS student_name
        FROM enrollment_requests r
        INNER JOIN courses c ON c.id = r.course_id
        INNER JOIN students s ON s.id = r.student_id
        WHERE r.student_id = $1
        ORDER BY r.request_date DESC`
	var requests []models.EnrollmentRequestDetail
	if err := r.db.SelectContext(ctx, &requests, query, studentID); err != nil {
		return nil, fmt.Errorf("list student requests: %w", err)
	}
	return requests, nil
}

// ListPending returns all pending requests with display names, oldest first
// so admins work the queue in submission order.
func (r *RequestRepository) ListPending(ctx context.Context) ([]models.EnrollmentRequestDetail, error) {
	const query = `SELECT r.id, r.student_id, r.course_id, r.action, r.reason, r.status, r.semester,
        r.request_date, r.processed_date, r.processed_by,
        c.name AS course_name, s.first_name || ' ' || s.last_name AS student_name
        FROM enrollment_requests r
        INNER JOIN courses c ON c.id = r.course_id
        INNER JOIN students s ON s.id = r.student_id
        WHERE r.status = $1
        ORDER BY r.request_date`
	var requests []models.EnrollmentRequestDetail
	if err := r.db.SelectContext(ctx, &requests, query, models.RequestStatusPending); err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return requests, nil
}
