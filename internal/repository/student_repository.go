package repository

import (
	"context"

	"github.com/unienroll/enroll-api/internal/models"
)

// StudentRepository reads the student directory maintained by the identity
// service.
type StudentRepository struct {
	db DBTX
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db DBTX) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student by ID, or sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, first_name, last_name, major, created_at FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}
