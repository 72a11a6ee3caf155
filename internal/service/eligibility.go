package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/unienroll/enroll-api/internal/models"
	appErrors "github.com/unienroll/enroll-api/pkg/errors"
)

// enrollmentLedger is the read surface the eligibility rules need. Both the
// pool-bound enrollment repository and the transactional store view satisfy
// it, so submission and approval run the exact same checks.
type enrollmentLedger interface {
	CountActive(ctx context.Context, studentID, courseID, semester string) (int, error)
	CountByCourse(ctx context.Context, courseID, semester string) (int, error)
	SumCreditHours(ctx context.Context, studentID, semester string) (int, error)
	ListActive(ctx context.Context, studentID, semester string) ([]models.EnrolledCourse, error)
}

// checkAddEligibility enforces the add-side preconditions: not already
// enrolled, a free seat, the credit ceiling, and no timetable overlap.
func checkAddEligibility(ctx context.Context, ledger enrollmentLedger, course *models.Course, studentID, semester string, maxCredits int) error {
	count, err := ledger.CountActive(ctx, studentID, course.ID, semester)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrAlreadyEnrolled, fmt.Sprintf("student is already enrolled in %s for %s", course.Name, semester))
	}

	enrolled, err := ledger.CountByCourse(ctx, course.ID, semester)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check seat availability")
	}
	if course.TotalSeats-enrolled <= 0 {
		return appErrors.Clone(appErrors.ErrSeatsFull, fmt.Sprintf("course %s is full, no seats available", course.Name))
	}

	total, err := ledger.SumCreditHours(ctx, studentID, semester)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to total credit hours")
	}
	if total+course.CreditHours > maxCredits {
		return appErrors.Clone(appErrors.ErrCreditLimitExceeded, fmt.Sprintf("adding %s exceeds the %d-credit limit for %s", course.Name, maxCredits, semester))
	}

	enrolledCourses, err := ledger.ListActive(ctx, studentID, semester)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	conflict, err := hasScheduleConflict(course, enrolledCourses)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compare schedules")
	}
	if conflict {
		return appErrors.Clone(appErrors.ErrScheduleConflict, fmt.Sprintf("course %s conflicts with the current timetable for %s", course.Name, semester))
	}
	return nil
}

// checkDropEligibility enforces the drop-side precondition: the enrollment
// must exist.
func checkDropEligibility(ctx context.Context, ledger enrollmentLedger, studentID, courseID, semester string) error {
	count, err := ledger.CountActive(ctx, studentID, courseID, semester)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if count == 0 {
		return appErrors.Clone(appErrors.ErrNotEnrolled, fmt.Sprintf("student is not enrolled in %s for %s", courseID, semester))
	}
	return nil
}

// hasScheduleConflict reports whether the candidate course overlaps any
// enrolled course on the same day. Intervals are half-open: sharing a
// boundary is not a conflict.
func hasScheduleConflict(course *models.Course, enrolled []models.EnrolledCourse) (bool, error) {
	newStart, err := clockMinutes(course.StartTime)
	if err != nil {
		return false, err
	}
	newEnd, err := clockMinutes(course.EndTime)
	if err != nil {
		return false, err
	}
	for _, existing := range enrolled {
		if !strings.EqualFold(existing.DayOfWeek, course.DayOfWeek) {
			continue
		}
		existingStart, err := clockMinutes(existing.StartTime)
		if err != nil {
			return false, err
		}
		existingEnd, err := clockMinutes(existing.EndTime)
		if err != nil {
			return false, err
		}
		if existingStart < newEnd && newStart < existingEnd {
			return true, nil
		}
	}
	return false, nil
}

// clockMinutes converts an "HH:MM" clock time to minutes since midnight.
func clockMinutes(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("parse clock time %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
