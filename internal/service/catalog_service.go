package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unienroll/enroll-api/internal/models"
	appErrors "github.com/unienroll/enroll-api/pkg/errors"
	"github.com/unienroll/enroll-api/pkg/semester"
)

type catalogRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter, semester string) ([]models.CourseAvailability, int, error)
	ListAvailableForStudent(ctx context.Context, major, studentID, semester string) ([]models.CourseAvailability, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	HasEnrollments(ctx context.Context, id string) (bool, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type enrollmentTimetable interface {
	ListActive(ctx context.Context, studentID, semester string) ([]models.EnrolledCourse, error)
}

type cacheObserver interface {
	ObserveCacheLookup(hit bool)
}

// CourseInput carries the writable catalog fields for create and update.
type CourseInput struct {
	ID          string  `json:"id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Major       string  `json:"major" validate:"required"`
	CreditHours int     `json:"credit_hours" validate:"required,gt=0,lte=6"`
	DayOfWeek   string  `json:"day_of_week" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime   string  `json:"start_time" validate:"required"`
	EndTime     string  `json:"end_time" validate:"required"`
	Venue       string  `json:"venue" validate:"required"`
	Lecturer    string  `json:"lecturer" validate:"required"`
	Section     string  `json:"section" validate:"required"`
	TotalSeats  int     `json:"total_seats" validate:"required,gt=0"`
	Cost        float64 `json:"cost" validate:"gte=0"`
}

// CatalogService manages the course catalog and student-facing catalog
// views. Availability listings are cached per (major, semester) and
// invalidated on any catalog or ledger mutation.
type CatalogService struct {
	courses     catalogRepository
	enrollments enrollmentTimetable
	students    studentReader
	cache       cacheStore
	metrics     cacheObserver
	validator   *validator.Validate
	logger      *zap.Logger
	cacheTTL    time.Duration
	now         func() time.Time
}

// NewCatalogService constructs CatalogService. cache and metrics may be nil.
func NewCatalogService(courses catalogRepository, enrollments enrollmentTimetable, students studentReader, cache cacheStore, metrics cacheObserver, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &CatalogService{
		courses:     courses,
		enrollments: enrollments,
		students:    students,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

// List returns catalog entries with availability for the current semester.
func (s *CatalogService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseAvailability, *models.Pagination, error) {
	courses, total, err := s.courses.List(ctx, filter, semester.Current(s.now()))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single catalog entry.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create validates and persists a new catalog entry.
func (s *CatalogService) Create(ctx context.Context, input CourseInput) (*models.Course, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.courses.FindByID(ctx, input.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("course %s already exists", input.ID))
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
	}

	course := input.toCourse()
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.invalidateAvailability(ctx)
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("major", course.Major))
	return course, nil
}

// Update validates and rewrites a catalog entry.
func (s *CatalogService) Update(ctx context.Context, id string, input CourseInput) (*models.Course, error) {
	input.ID = id
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	course := input.toCourse()
	if err := s.courses.Update(ctx, course); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	s.invalidateAvailability(ctx)
	s.logger.Info("course updated", zap.String("course_id", id))
	return course, nil
}

// Delete removes a catalog entry. Courses with any enrollment history are
// protected.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	enrolled, err := s.courses.HasEnrollments(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollments")
	}
	if enrolled {
		return appErrors.Clone(appErrors.ErrConflict, "course has enrollments and cannot be deleted")
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.invalidateAvailability(ctx)
	s.logger.Info("course deleted", zap.String("course_id", id))
	return nil
}

// AvailableForStudent returns major-matched courses the student has not
// enrolled in for the current semester, served from cache when possible.
func (s *CatalogService) AvailableForStudent(ctx context.Context, studentID string) ([]models.CourseAvailability, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	currentSemester := semester.Current(s.now())
	key := fmt.Sprintf("catalog:available:%s:%s:%s", student.Major, currentSemester, studentID)
	if s.cache != nil {
		var cached []models.CourseAvailability
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.ObserveCacheLookup(true)
			}
			return cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("availability cache read failed", zap.String("key", key), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.ObserveCacheLookup(false)
		}
	}

	courses, err := s.courses.ListAvailableForStudent(ctx, student.Major, studentID, currentSemester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available courses")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, courses, s.cacheTTL); err != nil {
			s.logger.Warn("availability cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return courses, nil
}

// Timetable returns the student's active enrollments with schedule fields,
// ordered by day and start time.
func (s *CatalogService) Timetable(ctx context.Context, studentID string) ([]models.EnrolledCourse, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	courses, err := s.enrollments.ListActive(ctx, studentID, semester.Current(s.now()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return courses, nil
}

// InvalidateAvailability drops every cached availability listing. Called
// after approvals change seat counts.
func (s *CatalogService) InvalidateAvailability(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DeleteByPattern(ctx, "catalog:available:*")
}

func (s *CatalogService) invalidateAvailability(ctx context.Context) {
	if err := s.InvalidateAvailability(ctx); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.Error(err))
	}
}

func (s *CatalogService) validateInput(input CourseInput) error {
	if err := s.validator.Struct(input); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	start, err := clockMinutes(input.StartTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "start_time must be HH:MM")
	}
	end, err := clockMinutes(input.EndTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be HH:MM")
	}
	if start >= end {
		return appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time")
	}
	return nil
}

func (i CourseInput) toCourse() *models.Course {
	return &models.Course{
		ID:          i.ID,
		Name:        i.Name,
		Major:       i.Major,
		CreditHours: i.CreditHours,
		DayOfWeek:   i.DayOfWeek,
		StartTime:   i.StartTime,
		EndTime:     i.EndTime,
		Venue:       i.Venue,
		Lecturer:    i.Lecturer,
		Section:     i.Section,
		TotalSeats:  i.TotalSeats,
		Cost:        i.Cost,
	}
}
