package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/unienroll/enroll-api/internal/models"
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx so repositories can run
// against the pool or inside an open transaction.
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

// TxView is the transactional view the approval workflow mutates. Every
// method runs on the same transaction; the caller decides commit/rollback
// through Store.InTx.
type TxView interface {
	LockPendingRequest(ctx context.Context, id string) (*models.EnrollmentRequest, error)
	MarkProcessed(ctx context.Context, id string, status models.RequestStatus, processedBy string, processedAt time.Time) error

	CourseByID(ctx context.Context, id string) (*models.Course, error)

	CountActive(ctx context.Context, studentID, courseID, semester string) (int, error)
	CountByCourse(ctx context.Context, courseID, semester string) (int, error)
	SumCreditHours(ctx context.Context, studentID, semester string) (int, error)
	ListActive(ctx context.Context, studentID, semester string) ([]models.EnrolledCourse, error)
	FindEnrollment(ctx context.Context, studentID, courseID, semester string) (*models.Enrollment, error)
	InsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	DeleteEnrollment(ctx context.Context, id string) error

	InvoiceByStudentSemester(ctx context.Context, studentID, semester string) (*models.Invoice, error)
	InsertInvoiceDetail(ctx context.Context, detail *models.InvoiceDetail) error
	DeleteInvoiceDetail(ctx context.Context, invoiceID, courseID string) error
	RecomputeInvoiceTotal(ctx context.Context, invoiceID string) error

	InsertEvaluationStatus(ctx context.Context, status *models.EvaluationStatus) error
	DeleteEvaluationByEnrollment(ctx context.Context, enrollmentID string) error
}

// Store bundles the repositories and provides transaction scoping for the
// multi-row approval workflow.
type Store struct {
	db          *sqlx.DB
	requests    *RequestRepository
	enrollments *EnrollmentRepository
	courses     *CourseRepository
	invoices    *InvoiceRepository
	evaluations *EvaluationRepository
}

// NewStore constructs a store bound to the connection pool.
func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:          db,
		requests:    NewRequestRepository(db),
		enrollments: NewEnrollmentRepository(db),
		courses:     NewCourseRepository(db),
		invoices:    NewInvoiceRepository(db),
		evaluations: NewEvaluationRepository(db),
	}
}

func newTxStore(tx *sqlx.Tx) *Store {
	return &Store{
		requests:    NewRequestRepository(tx),
		enrollments: NewEnrollmentRepository(tx),
		courses:     NewCourseRepository(tx),
		invoices:    NewInvoiceRepository(tx),
		evaluations: NewEvaluationRepository(tx),
	}
}

// InTx runs fn inside a single transaction. Any error from fn rolls back
// every mutation made through the view.
func (s *Store) InTx(ctx context.Context, fn func(tx TxView) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(newTxStore(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) LockPendingRequest(ctx context.Context, id string) (*models.EnrollmentRequest, error) {
	return s.requests.LockPending(ctx, id)
}

func (s *Store) MarkProcessed(ctx context.Context, id string, status models.RequestStatus, processedBy string, processedAt time.Time) error {
	return s.requests.MarkProcessed(ctx, id, status, processedBy, processedAt)
}

func (s *Store) CourseByID(ctx context.Context, id string) (*models.Course, error) {
	return s.courses.FindByID(ctx, id)
}

func (s *Store) CountActive(ctx context.Context, studentID, courseID, semester string) (int, error) {
	return s.enrollments.CountActive(ctx, studentID, courseID, semester)
}

func (s *Store) CountByCourse(ctx context.Context, courseID, semester string) (int, error) {
	return s.enrollments.CountByCourse(ctx, courseID, semester)
}

func (s *Store) SumCreditHours(ctx context.Context, studentID, semester string) (int, error) {
	return s.enrollments.SumCreditHours(ctx, studentID, semester)
}

func (s *Store) ListActive(ctx context.Context, studentID, semester string) ([]models.EnrolledCourse, error) {
	return s.enrollments.ListActive(ctx, studentID, semester)
}

func (s *Store) FindEnrollment(ctx context.Context, studentID, courseID, semester string) (*models.Enrollment, error) {
	return s.enrollments.Find(ctx, studentID, courseID, semester)
}

func (s *Store) InsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	return s.enrollments.Insert(ctx, enrollment)
}

func (s *Store) DeleteEnrollment(ctx context.Context, id string) error {
	return s.enrollments.Delete(ctx, id)
}

func (s *Store) InvoiceByStudentSemester(ctx context.Context, studentID, semester string) (*models.Invoice, error) {
	return s.invoices.FindByStudentSemester(ctx, studentID, semester)
}

func (s *Store) InsertInvoiceDetail(ctx context.Context, detail *models.InvoiceDetail) error {
	return s.invoices.InsertDetail(ctx, detail)
}

func (s *Store) DeleteInvoiceDetail(ctx context.Context, invoiceID, courseID string) error {
	return s.invoices.DeleteDetail(ctx, invoiceID, courseID)
}

func (s *Store) RecomputeInvoiceTotal(ctx context.Context, invoiceID string) error {
	return s.invoices.RecomputeTotal(ctx, invoiceID)
}

func (s *Store) InsertEvaluationStatus(ctx context.Context, status *models.EvaluationStatus) error {
	return s.evaluations.Insert(ctx, status)
}

func (s *Store) DeleteEvaluationByEnrollment(ctx context.Context, enrollmentID string) error {
	return s.evaluations.DeleteByEnrollment(ctx, enrollmentID)
}

var _ TxView = (*Store)(nil)
