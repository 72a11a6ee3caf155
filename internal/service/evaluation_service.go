package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/unienroll/enroll-api/internal/models"
	appErrors "github.com/unienroll/enroll-api/pkg/errors"
)

type evaluationStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EvaluationDetail, error)
	FindByID(ctx context.Context, id string) (*models.EvaluationStatus, error)
	Complete(ctx context.Context, id string, filledAt time.Time) error
}

// EvaluationService tracks course-feedback completion per enrollment.
type EvaluationService struct {
	evaluations evaluationStore
	students    studentReader
	logger      *zap.Logger
	now         func() time.Time
}

// NewEvaluationService constructs EvaluationService.
func NewEvaluationService(evaluations evaluationStore, students studentReader, logger *zap.Logger) *EvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{
		evaluations: evaluations,
		students:    students,
		logger:      logger,
		now:         time.Now,
	}
}

// ListForStudent returns the student's evaluation statuses with course
// context.
func (s *EvaluationService) ListForStudent(ctx context.Context, studentID string) ([]models.EvaluationDetail, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	evaluations, err := s.evaluations.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}
	return evaluations, nil
}

// Complete marks a pending evaluation as completed and stamps the fill date.
// Completing twice is a conflict, not a silent success.
func (s *EvaluationService) Complete(ctx context.Context, id string) (*models.EvaluationStatus, error) {
	if err := s.evaluations.Complete(ctx, id, s.now().UTC()); err != nil {
		if err != sql.ErrNoRows {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete evaluation")
		}
		// Zero rows means either no such evaluation or it was already
		// completed; look it up to report which.
		existing, findErr := s.evaluations.FindByID(ctx, id)
		if findErr == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		if findErr != nil {
			return nil, appErrors.Wrap(findErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
		}
		if existing.Status == models.EvaluationStateCompleted {
			return nil, appErrors.Clone(appErrors.ErrConflict, "evaluation is already completed")
		}
		return nil, appErrors.Clone(appErrors.ErrInternal, "failed to complete evaluation")
	}

	status, err := s.evaluations.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	s.logger.Info("evaluation completed", zap.String("evaluation_id", id))
	return status, nil
}
