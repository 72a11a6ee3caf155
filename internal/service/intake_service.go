package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unienroll/enroll-api/internal/models"
	appErrors "github.com/unienroll/enroll-api/pkg/errors"
	"github.com/unienroll/enroll-api/pkg/semester"
)

type requestStore interface {
	Insert(ctx context.Context, request *models.EnrollmentRequest) error
	HasPending(ctx context.Context, studentID, courseID string) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentRequestDetail, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// SubmitEnrollmentRequest describes a student's add/drop submission. The
// student is never part of the payload; Submit binds the request to the
// verified caller.
type SubmitEnrollmentRequest struct {
	CourseID string               `json:"course_id" validate:"required"`
	Action   models.RequestAction `json:"action" validate:"required,oneof=Add Drop"`
	Reason   string               `json:"reason" validate:"required"`
}

// IntakeService accepts add/drop submissions and validates eligibility
// preconditions. It writes only the request row; the ledger and billing
// stay untouched until an admin approves.
type IntakeService struct {
	requests   requestStore
	ledger     enrollmentLedger
	courses    courseReader
	students   studentReader
	validator  *validator.Validate
	logger     *zap.Logger
	maxCredits int
	now        func() time.Time
}

// NewIntakeService constructs IntakeService.
func NewIntakeService(requests requestStore, ledger enrollmentLedger, courses courseReader, students studentReader, validate *validator.Validate, logger *zap.Logger, maxCredits int) *IntakeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxCredits <= 0 {
		maxCredits = 18
	}
	return &IntakeService{
		requests:   requests,
		ledger:     ledger,
		courses:    courses,
		students:   students,
		validator:  validate,
		logger:     logger,
		maxCredits: maxCredits,
		now:        time.Now,
	}
}

// Submit validates the preconditions and inserts a Pending request on
// behalf of studentID, the authenticated caller. All checks pass or the
// call fails with the specific reason; nothing else is written.
func (s *IntakeService) Submit(ctx context.Context, studentID string, req SubmitEnrollmentRequest) (*models.EnrollmentRequest, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment request payload")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a reason for the request is required")
	}

	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	pending, err := s.requests.HasPending(ctx, studentID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending requests")
	}
	if pending {
		return nil, appErrors.ErrDuplicatePendingRequest
	}

	currentSemester := semester.Current(s.now())
	switch req.Action {
	case models.RequestActionAdd:
		if err := checkAddEligibility(ctx, s.ledger, course, studentID, currentSemester, s.maxCredits); err != nil {
			return nil, err
		}
	case models.RequestActionDrop:
		if err := checkDropEligibility(ctx, s.ledger, studentID, req.CourseID, currentSemester); err != nil {
			return nil, err
		}
	}

	request := &models.EnrollmentRequest{
		StudentID:   studentID,
		CourseID:    req.CourseID,
		Action:      req.Action,
		Reason:      strings.TrimSpace(req.Reason),
		Status:      models.RequestStatusPending,
		Semester:    currentSemester,
		RequestDate: s.now().UTC(),
	}
	if err := s.requests.Insert(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit request")
	}

	s.logger.Info("enrollment request submitted",
		zap.String("request_id", request.ID),
		zap.String("student_id", request.StudentID),
		zap.String("course_id", request.CourseID),
		zap.String("action", string(request.Action)),
		zap.String("semester", request.Semester),
	)
	return request, nil
}

// History returns the student's add/drop request history, newest first.
func (s *IntakeService) History(ctx context.Context, studentID string) ([]models.EnrollmentRequestDetail, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	requests, err := s.requests.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, nil
}
