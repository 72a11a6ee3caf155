package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/unienroll/enroll-api/internal/models"
	"github.com/unienroll/enroll-api/internal/repository"
	appErrors "github.com/unienroll/enroll-api/pkg/errors"
)

type txRunner interface {
	InTx(ctx context.Context, fn func(tx repository.TxView) error) error
}

type pendingLister interface {
	ListPending(ctx context.Context) ([]models.EnrollmentRequestDetail, error)
}

type catalogInvalidator interface {
	InvalidateAvailability(ctx context.Context) error
}

// AdjudicationService processes the admin's approve/reject decisions. An
// approval applies the full side-effect bundle (ledger, invoice, evaluation)
// in one transaction; any failure rolls everything back and leaves the
// request Pending.
type AdjudicationService struct {
	store      txRunner
	pending    pendingLister
	catalog    catalogInvalidator
	logger     *zap.Logger
	maxCredits int
	now        func() time.Time
}

// NewAdjudicationService constructs AdjudicationService. catalog may be nil
// when availability caching is disabled.
func NewAdjudicationService(store txRunner, pending pendingLister, catalog catalogInvalidator, logger *zap.Logger, maxCredits int) *AdjudicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxCredits <= 0 {
		maxCredits = 18
	}
	return &AdjudicationService{
		store:      store,
		pending:    pending,
		catalog:    catalog,
		logger:     logger,
		maxCredits: maxCredits,
		now:        time.Now,
	}
}

// ListPending returns the admin work queue, oldest first.
func (s *AdjudicationService) ListPending(ctx context.Context) ([]models.EnrollmentRequestDetail, error) {
	requests, err := s.pending.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending requests")
	}
	return requests, nil
}

// Approve locks the Pending request, re-validates eligibility against the
// semester stored on the request, applies the side-effect bundle for the
// action, and marks the request Approved. Everything happens in a single
// transaction.
func (s *AdjudicationService) Approve(ctx context.Context, requestID, adminID string) error {
	var (
		studentID string
		courseID  string
		action    models.RequestAction
	)
	err := s.store.InTx(ctx, func(tx repository.TxView) error {
		request, err := tx.LockPendingRequest(ctx, requestID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.ErrRequestNotFound
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock request")
		}
		studentID, courseID, action = request.StudentID, request.CourseID, request.Action

		course, err := tx.CourseByID(ctx, request.CourseID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "course not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
		}

		switch request.Action {
		case models.RequestActionAdd:
			if err := s.approveAdd(ctx, tx, request, course); err != nil {
				return err
			}
		case models.RequestActionDrop:
			if err := s.approveDrop(ctx, tx, request); err != nil {
				return err
			}
		default:
			return appErrors.Clone(appErrors.ErrValidation, "unknown request action")
		}

		if err := tx.MarkProcessed(ctx, request.ID, models.RequestStatusApproved, adminID, s.now().UTC()); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.ErrRequestNotFound
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark request approved")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.catalog != nil {
		if err := s.catalog.InvalidateAvailability(ctx); err != nil {
			s.logger.Warn("availability cache invalidation failed", zap.Error(err))
		}
	}
	s.logger.Info("enrollment request approved",
		zap.String("request_id", requestID),
		zap.String("student_id", studentID),
		zap.String("course_id", courseID),
		zap.String("action", string(action)),
		zap.String("processed_by", adminID),
	)
	return nil
}

func (s *AdjudicationService) approveAdd(ctx context.Context, tx repository.TxView, request *models.EnrollmentRequest, course *models.Course) error {
	if err := checkAddEligibility(ctx, tx, course, request.StudentID, request.Semester, s.maxCredits); err != nil {
		return err
	}

	enrollment := &models.Enrollment{
		StudentID:  request.StudentID,
		CourseID:   request.CourseID,
		Semester:   request.Semester,
		LastAction: "Enrolled",
	}
	if err := tx.InsertEnrollment(ctx, enrollment); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record enrollment")
	}

	invoice, err := tx.InvoiceByStudentSemester(ctx, request.StudentID, request.Semester)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.ErrNoInvoiceFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invoice")
	}
	if course.Cost <= 0 {
		return appErrors.ErrNoCourseCostFound
	}
	detail := &models.InvoiceDetail{
		InvoiceID: invoice.ID,
		CourseID:  course.ID,
		CourseFee: course.Cost,
	}
	if err := tx.InsertInvoiceDetail(ctx, detail); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add invoice line")
	}
	if err := tx.RecomputeInvoiceTotal(ctx, invoice.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update invoice total")
	}

	if err := tx.InsertEvaluationStatus(ctx, &models.EvaluationStatus{EnrollmentID: enrollment.ID}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create evaluation status")
	}
	return nil
}

func (s *AdjudicationService) approveDrop(ctx context.Context, tx repository.TxView, request *models.EnrollmentRequest) error {
	enrollment, err := tx.FindEnrollment(ctx, request.StudentID, request.CourseID, request.Semester)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.ErrNotEnrolled
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	invoice, err := tx.InvoiceByStudentSemester(ctx, request.StudentID, request.Semester)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.ErrNoInvoiceFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invoice")
	}
	if err := tx.DeleteInvoiceDetail(ctx, invoice.ID, request.CourseID); err != nil && err != sql.ErrNoRows {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove invoice line")
	}
	if err := tx.RecomputeInvoiceTotal(ctx, invoice.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update invoice total")
	}

	if err := tx.DeleteEvaluationByEnrollment(ctx, enrollment.ID); err != nil && err != sql.ErrNoRows {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove evaluation status")
	}
	if err := tx.DeleteEnrollment(ctx, enrollment.ID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.ErrNotEnrolled
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove enrollment")
	}
	return nil
}

// Reject marks a Pending request Rejected. No ledger or billing rows change.
func (s *AdjudicationService) Reject(ctx context.Context, requestID, adminID string) error {
	err := s.store.InTx(ctx, func(tx repository.TxView) error {
		if _, err := tx.LockPendingRequest(ctx, requestID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.ErrRequestNotFound
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock request")
		}
		if err := tx.MarkProcessed(ctx, requestID, models.RequestStatusRejected, adminID, s.now().UTC()); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.ErrRequestNotFound
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark request rejected")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("enrollment request rejected",
		zap.String("request_id", requestID),
		zap.String("processed_by", adminID),
	)
	return nil
}
