package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/unienroll/enroll-api/internal/models"
)

// CourseRepository handles persistence of catalog entries.
type CourseRepository struct {
	db DBTX
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, name, major, credit_hours, day_of_week, start_time, end_time,
        venue, lecturer, section, total_seats, cost, created_at, updated_at`

// FindByID returns a course by its code.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// List returns catalog entries with computed seat availability for the
// semester, filtered and paginated.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter, semester string) ([]models.CourseAvailability, int, error) {
	base := `FROM courses c`

	// Filter placeholders are numbered from $1 so the same conditions and
	// args serve the count query, which does not bind the semester.
	var conditions []string
	var filterArgs []interface{}

	if filter.Major != "" {
		filterArgs = append(filterArgs, filter.Major)
		conditions = append(conditions, fmt.Sprintf("c.major = $%d", len(filterArgs)))
	}
	if filter.Search != "" {
		filterArgs = append(filterArgs, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(c.id ILIKE $%d OR c.name ILIKE $%d)", len(filterArgs), len(filterArgs)))
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"id":           "c.id",
		"name":         "c.name",
		"credit_hours": "c.credit_hours",
		"cost":         "c.cost",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "c.id"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT c.id, c.name, c.major, c.credit_hours, c.day_of_week, c.start_time, c.end_time,
        c.venue, c.lecturer, c.section, c.total_seats, c.cost, c.created_at, c.updated_at,
        c.total_seats - (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id AND e.semester = $%d) AS available_seats
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, len(filterArgs)+1, base+clause, orderBy, order, size, offset)

	listArgs := append(append([]interface{}{}, filterArgs...), semester)
	var courses []models.CourseAvailability
	if err := r.db.SelectContext(ctx, &courses, query, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, filterArgs...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// ListAvailableForStudent returns major-matched courses the student is not
// enrolled in, with computed availability.
func (r *CourseRepository) ListAvailableForStudent(ctx context.Context, major, studentID, semester string) ([]models.CourseAvailability, error) {
	const query = `SELECT c.id, c.name, c.major, c.credit_hours, c.day_of_week, c.start_time, c.end_time,
        c.venue, c.lecturer, c.section, c.total_seats, c.cost, c.created_at, c.updated_at,
        c.total_seats - (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id AND e.semester = $3) AS available_seats
        FROM courses c
        WHERE c.major = $1
        AND c.id NOT IN (SELECT e.course_id FROM enrollments e WHERE e.student_id = $2 AND e.semester = $3)
        ORDER BY c.id`
	var courses []models.CourseAvailability
	if err := r.db.SelectContext(ctx, &courses, query, major, studentID, semester); err != nil {
		return nil, fmt.Errorf("list available courses: %w", err)
	}
	return courses, nil
}

// Create persists a new catalog entry.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, name, major, credit_hours, day_of_week, start_time, end_time,
        venue, lecturer, section, total_seats, cost, created_at, updated_at)
        VALUES (:id, :name, :major, :credit_hours, :day_of_week, :start_time, :end_time,
        :venue, :lecturer, :section, :total_seats, :cost, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update rewrites the mutable catalog fields.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET name = :name, major = :major, credit_hours = :credit_hours,
        day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time,
        venue = :venue, lecturer = :lecturer, section = :section,
        total_seats = :total_seats, cost = :cost, updated_at = :updated_at
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update course result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a catalog entry permanently.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete course result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// HasEnrollments reports whether any enrollment references the course.
func (r *CourseRepository) HasEnrollments(ctx context.Context, id string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE course_id = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course enrollments: %w", err)
	}
	return true, nil
}
