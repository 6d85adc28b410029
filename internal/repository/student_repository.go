package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campusdesk/faculty-results-api/internal/models"
)

// uniqueViolation is the PostgreSQL error code raised when a concurrent
// insert wins the natural-key race.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// StudentRepository persists students keyed by roll number.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, roll_number, name, department_id, year, scheme, email, phone, created_at, updated_at`

// FindByRoll returns the student with the given roll number.
func (r *StudentRepository) FindByRoll(ctx context.Context, rollNumber string) (*models.Student, error) {
	var student models.Student
	query := fmt.Sprintf(`SELECT %s FROM students WHERE roll_number = $1`, studentColumns)
	if err := r.db.GetContext(ctx, &student, query, rollNumber); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student. When a concurrent upload already created
// the same roll number, the existing row is returned instead of an error.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (*models.Student, error) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	const query = `INSERT INTO students (id, roll_number, name, department_id, year, scheme, email, phone, created_at, updated_at)
        VALUES (:id, :roll_number, :name, :department_id, :year, :scheme, :email, :phone, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if isUniqueViolation(err) {
			return r.FindByRoll(ctx, student.RollNumber)
		}
		return nil, fmt.Errorf("create student: %w", err)
	}
	return student, nil
}

// UpdateName overwrites the stored name (last-write-wins on re-upload).
func (r *StudentRepository) UpdateName(ctx context.Context, id, name string) error {
	const query = `UPDATE students SET name = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, name, time.Now().UTC()); err != nil {
		return fmt.Errorf("update student name: %w", err)
	}
	return nil
}

// ListByContext returns the roster matching the teaching context, in roll
// number order.
func (r *StudentRepository) ListByContext(ctx context.Context, departmentID string, year int, scheme string) ([]models.Student, error) {
	var students []models.Student
	query := fmt.Sprintf(`SELECT %s FROM students WHERE department_id = $1 AND year = $2 AND scheme = $3 ORDER BY roll_number`, studentColumns)
	if err := r.db.SelectContext(ctx, &students, query, departmentID, year, scheme); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}
