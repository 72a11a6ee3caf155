package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unienroll/enroll-api/internal/models"
	appErrors "github.com/unienroll/enroll-api/pkg/errors"
)

type mockRequestStore struct {
	pending  map[string]bool
	inserted *models.EnrollmentRequest
	history  []models.EnrollmentRequestDetail
}

func (m *mockRequestStore) Insert(ctx context.Context, request *models.EnrollmentRequest) error {
	request.ID = "req-1"
	m.inserted = request
	return nil
}

func (m *mockRequestStore) HasPending(ctx context.Context, studentID, courseID string) (bool, error) {
	return m.pending[studentID+courseID], nil
}

func (m *mockRequestStore) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentRequestDetail, error) {
	return m.history, nil
}

type mockLedger struct {
	active       map[string]int
	courseCounts map[string]int
	credits      map[string]int
	enrolled     []models.EnrolledCourse
}

func (m *mockLedger) CountActive(ctx context.Context, studentID, courseID, semester string) (int, error) {
	return m.active[studentID+courseID], nil
}

func (m *mockLedger) CountByCourse(ctx context.Context, courseID, semester string) (int, error) {
	return m.courseCounts[courseID], nil
}

func (m *mockLedger) SumCreditHours(ctx context.Context, studentID, semester string) (int, error) {
	return m.credits[studentID], nil
}

func (m *mockLedger) ListActive(ctx context.Context, studentID, semester string) ([]models.EnrolledCourse, error) {
	return m.enrolled, nil
}

type mockCourseReader struct {
	courses map[string]*models.Course
}

func (m *mockCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type mockStudentReader struct {
	students map[string]*models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func testCourse(id string) *models.Course {
	return &models.Course{
		ID:          id,
		Name:        "Algorithms",
		Major:       "CS",
		CreditHours: 3,
		DayOfWeek:   "Monday",
		StartTime:   "09:00",
		EndTime:     "11:00",
		TotalSeats:  30,
		Cost:        450,
	}
}

func newIntakeFixture() (*IntakeService, *mockRequestStore, *mockLedger) {
	requests := &mockRequestStore{pending: map[string]bool{}}
	ledger := &mockLedger{active: map[string]int{}, courseCounts: map[string]int{}, credits: map[string]int{}}
	courses := &mockCourseReader{courses: map[string]*models.Course{"CS101": testCourse("CS101")}}
	students := &mockStudentReader{students: map[string]*models.Student{"s1": {ID: "s1", Major: "CS"}}}

	svc := NewIntakeService(requests, ledger, courses, students, validator.New(), zap.NewNop(), 18)
	svc.now = func() time.Time { return time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC) }
	return svc, requests, ledger
}

func TestIntakeServiceSubmitAdd(t *testing.T) {
	svc, requests, _ := newIntakeFixture()

	request, err := svc.Submit(context.Background(), "s1", SubmitEnrollmentRequest{
		CourseID: "CS101", Action: models.RequestActionAdd, Reason: "needed for degree plan",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, request.Status)
	assert.Equal(t, "JAN2026", request.Semester)
	assert.NotNil(t, requests.inserted)
}

func TestIntakeServiceSubmitRecordsCaller(t *testing.T) {
	svc, requests, _ := newIntakeFixture()

	_, err := svc.Submit(context.Background(), "s1", SubmitEnrollmentRequest{
		CourseID: "CS101", Action: models.RequestActionAdd, Reason: "degree plan",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", requests.inserted.StudentID)

	_, err = svc.Submit(context.Background(), "", SubmitEnrollmentRequest{
		CourseID: "CS101", Action: models.RequestActionAdd, Reason: "degree plan",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestIntakeServiceSubmitDuplicatePending(t *testing.T) {
	svc, requests, _ := newIntakeFixture()
	requests.pending["s1CS101"] = true

	_, err := svc.Submit(context.Background(), "s1", SubmitEnrollmentRequest{
		CourseID: "CS101", Action: models.RequestActionAdd, Reason: "retry",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicatePendingRequest))
}

func TestIntakeServiceSubmitAlreadyEnrolled(t *testing.T) {
	svc, _, ledger := newIntakeFixture()
	ledger.active["s1CS101"] = 1

	_, err := svc.Submit(context.Background(), "s1", SubmitEnrollmentRequest{
		CourseID: "CS101", Action: models.RequestActionAdd, Reason: "again",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyEnrolled))
}

func TestIntakeServiceSubmitSeatsFull(t *testing.T) {
	svc, _, ledger := newIntakeFixture()
	ledger.courseCounts["CS101"] = 30

	_, err := svc.Submit(context.Background(), "s1", SubmitEnrollmentRequest{
		CourseID: "CS101", Action: models.RequestActionAdd, Reason: "want in",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSeatsFull))
}

func TestIntakeServiceSubmitCreditLimit(t *testing.T) {
	svc, _, ledger := newIntakeFixture()
	// 16 current + 3 new exceeds 18.
	ledger.credits["s1"] = 16

	_, err := svc.Submit(context.Background(), "s1", SubmitEnrollmentRequest{
		CourseID: "CS101", Action: models.RequestActionAdd, Reason: "overload",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCreditLimitExceeded))
}

func TestIntakeServiceSubmitAtCreditLimit(t *testing.T) {
	svc, _, ledger := newIntakeFixture()
	// 15 current + 3 new lands exactly on the 18 ceiling.
	ledger.credits["s1"] = 15

	_, err := svc.Submit(context.Background(), "s1", SubmitEnrollmentRequest{
		CourseID: "CS101", Action: models.RequestActionAdd, Reason: "full load",
	})
	require.NoError(t, err)
}

func TestIntakeServiceSubmitScheduleConflict(t *testing.T) {
	svc, _, ledger := newIntakeFixture()
	ledger.enrolled = []models.EnrolledCourse{
		{CourseID: "CS200", DayOfWeek: "Monday", StartTime: "10:00", EndTime: "12:00", CreditHours: 3},
	}

	_, err := svc.Submit(context.Background(), "s1", SubmitEnrollmentRequest{
		CourseID: "CS101", Action: models.RequestActionAdd, Reason: "clash",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrScheduleConflict))
}

func TestIntakeServiceSubmitBackToBackIsNotConflict(t *testing.T) {
	svc, _, ledger := newIntakeFixture()
	// Ends exactly when the new course starts.
	ledger.enrolled = []models.EnrolledCourse{
		{CourseID: "CS200", DayOfWeek: "Monday", StartTime: "07:00", EndTime: "09:00", CreditHours: 3},
	}

	_, err := svc.Submit(context.Background(), "s1", SubmitEnrollmentRequest{
		CourseID: "CS101", Action: models.RequestActionAdd, Reason: "back to back",
	})
	require.NoError(t, err)
}

func TestIntakeServiceSubmitDropNotEnrolled(t *testing.T) {
	svc, _, _ := newIntakeFixture()

	_, err := svc.Submit(context.Background(), "s1", SubmitEnrollmentRequest{
		CourseID: "CS101", Action: models.RequestActionDrop, Reason: "not mine",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotEnrolled))
}

func TestIntakeServiceSubmitDrop(t *testing.T) {
	svc, requests, ledger := newIntakeFixture()
	ledger.active["s1CS101"] = 1

	request, err := svc.Submit(context.Background(), "s1", SubmitEnrollmentRequest{
		CourseID: "CS101", Action: models.RequestActionDrop, Reason: "schedule change",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestActionDrop, request.Action)
	assert.NotNil(t, requests.inserted)
}

func TestIntakeServiceSubmitUnknownStudent(t *testing.T) {
	svc, _, _ := newIntakeFixture()

	_, err := svc.Submit(context.Background(), "ghost", SubmitEnrollmentRequest{
		CourseID: "CS101", Action: models.RequestActionAdd, Reason: "who",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestIntakeServiceSubmitBlankReason(t *testing.T) {
	svc, _, _ := newIntakeFixture()

	_, err := svc.Submit(context.Background(), "s1", SubmitEnrollmentRequest{
		CourseID: "CS101", Action: models.RequestActionAdd, Reason: "   ",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestIntakeServiceSemesterRollsInJune(t *testing.T) {
	svc, requests, _ := newIntakeFixture()
	svc.now = func() time.Time { return time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC) }

	_, err := svc.Submit(context.Background(), "s1", SubmitEnrollmentRequest{
		CourseID: "CS101", Action: models.RequestActionAdd, Reason: "summer term",
	})
	require.NoError(t, err)
	assert.Equal(t, "JUN2026", requests.inserted.Semester)
}
