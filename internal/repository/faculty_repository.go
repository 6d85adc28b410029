package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusdesk/faculty-results-api/internal/models"
)

// FacultyRepository reads faculty accounts for authentication and scoping.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository creates a new faculty repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

const facultyColumns = `id, employee_id, email, password_hash, full_name, designation, department_id, phone, active, created_at`

// FindByEmail returns the faculty account for a login email.
func (r *FacultyRepository) FindByEmail(ctx context.Context, email string) (*models.Faculty, error) {
	var faculty models.Faculty
	query := fmt.Sprintf(`SELECT %s FROM faculties WHERE email = $1`, facultyColumns)
	if err := r.db.GetContext(ctx, &faculty, query, email); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// FindByID returns a faculty account by id.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	var faculty models.Faculty
	query := fmt.Sprintf(`SELECT %s FROM faculties WHERE id = $1`, facultyColumns)
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		return nil, err
	}
	return &faculty, nil
}
