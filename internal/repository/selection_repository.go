package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusdesk/faculty-results-api/internal/models"
)

// SelectionRepository persists the audited faculty context selections.
type SelectionRepository struct {
	db *sqlx.DB
}

// NewSelectionRepository creates a new selection repository.
func NewSelectionRepository(db *sqlx.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

const selectionColumns = `id, faculty_id, year, scheme, department_id, subject_id, created_at, updated_at`

// Upsert stores a selection; repeat selection of the same (faculty, year,
// scheme, department) triple overwrites the chosen subject.
func (r *SelectionRepository) Upsert(ctx context.Context, selection *models.FacultySelection) error {
	if selection.ID == "" {
		selection.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if selection.CreatedAt.IsZero() {
		selection.CreatedAt = now
	}
	selection.UpdatedAt = now

	const query = `INSERT INTO faculty_selections (id, faculty_id, year, scheme, department_id, subject_id, created_at, updated_at)
        VALUES (:id, :faculty_id, :year, :scheme, :department_id, :subject_id, :created_at, :updated_at)
        ON CONFLICT (faculty_id, year, scheme, department_id)
        DO UPDATE SET subject_id = EXCLUDED.subject_id, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, selection); err != nil {
		return fmt.Errorf("upsert selection: %w", err)
	}
	return nil
}

// Latest returns the faculty's most recently touched selection.
func (r *SelectionRepository) Latest(ctx context.Context, facultyID string) (*models.FacultySelection, error) {
	var selection models.FacultySelection
	query := fmt.Sprintf(`SELECT %s FROM faculty_selections WHERE faculty_id = $1 ORDER BY updated_at DESC LIMIT 1`, selectionColumns)
	if err := r.db.GetContext(ctx, &selection, query, facultyID); err != nil {
		return nil, err
	}
	return &selection, nil
}
