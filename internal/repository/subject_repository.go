package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campusdesk/faculty-results-api/internal/models"
)

// SubjectRepository persists subject offerings. Duplicate codes are legal;
// none of the lookups assume code uniqueness.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = `id, name, code, department_id, year, scheme, credits, faculty_id, academic_year, created_at, updated_at`

// Create inserts a subject offering.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects (id, name, code, department_id, year, scheme, credits, faculty_id, academic_year, created_at, updated_at)
        VALUES (:id, :name, :code, :department_id, :year, :scheme, :credits, :faculty_id, :academic_year, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update persists mutable subject fields.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET name = :name, code = :code, department_id = :department_id,
        year = :year, scheme = :scheme, credits = :credits, academic_year = :academic_year, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Delete removes a subject; dependent results cascade at the store level.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

// FindByID returns one subject.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	var subject models.Subject
	query := fmt.Sprintf(`SELECT %s FROM subjects WHERE id = $1`, subjectColumns)
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ListByFaculty returns the subjects owned by a faculty, ordered by name.
func (r *SubjectRepository) ListByFaculty(ctx context.Context, facultyID string) ([]models.Subject, error) {
	var subjects []models.Subject
	query := fmt.Sprintf(`SELECT %s FROM subjects WHERE faculty_id = $1 ORDER BY name`, subjectColumns)
	if err := r.db.SelectContext(ctx, &subjects, query, facultyID); err != nil {
		return nil, fmt.Errorf("list subjects by faculty: %w", err)
	}
	return subjects, nil
}

// ListByDepartment returns every offering in a department.
func (r *SubjectRepository) ListByDepartment(ctx context.Context, departmentID string) ([]models.Subject, error) {
	var subjects []models.Subject
	query := fmt.Sprintf(`SELECT %s FROM subjects WHERE department_id = $1 ORDER BY name`, subjectColumns)
	if err := r.db.SelectContext(ctx, &subjects, query, departmentID); err != nil {
		return nil, fmt.Errorf("list subjects by department: %w", err)
	}
	return subjects, nil
}

// FindFirstByCode returns the oldest offering with the given code.
// When duplicates share a code the first match by creation order wins;
// disambiguation beyond that is an open product decision.
func (r *SubjectRepository) FindFirstByCode(ctx context.Context, code string) (*models.Subject, error) {
	var subject models.Subject
	query := fmt.Sprintf(`SELECT %s FROM subjects WHERE code = $1 ORDER BY created_at, id LIMIT 1`, subjectColumns)
	if err := r.db.GetContext(ctx, &subject, query, code); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ListByCodeAndLabel returns offerings of a course tagged with a specific
// academic session label.
func (r *SubjectRepository) ListByCodeAndLabel(ctx context.Context, code, departmentID, label string) ([]models.Subject, error) {
	var subjects []models.Subject
	query := fmt.Sprintf(`SELECT %s FROM subjects WHERE code = $1 AND department_id = $2 AND academic_year = $3`, subjectColumns)
	if err := r.db.SelectContext(ctx, &subjects, query, code, departmentID, label); err != nil {
		return nil, fmt.Errorf("list subjects by label: %w", err)
	}
	return subjects, nil
}

// ListByCodeWithResultsInYears returns offerings of a course whose results
// were created during any of the given calendar years. This catches legacy
// bulk uploads that never carried a session label.
func (r *SubjectRepository) ListByCodeWithResultsInYears(ctx context.Context, code, departmentID string, years []int) ([]models.Subject, error) {
	var subjects []models.Subject
	query := fmt.Sprintf(`SELECT DISTINCT %s FROM subjects s
        JOIN results r ON r.subject_id = s.id
        WHERE s.code = $1 AND s.department_id = $2
          AND EXTRACT(YEAR FROM r.created_at)::INT = ANY($3)`,
		prefixColumns("s", subjectColumns))
	if err := r.db.SelectContext(ctx, &subjects, query, code, departmentID, pq.Array(years)); err != nil {
		return nil, fmt.Errorf("list subjects with results in years: %w", err)
	}
	return subjects, nil
}
