package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusdesk/faculty-results-api/internal/models"
)

// ResultRepository persists exam results keyed by the natural key
// (student, subject, exam_type, semester).
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new result repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Upsert inserts or overwrites a result in one atomic statement and
// reports whether a new row was created. A concurrent insert on the same
// natural key simply lands on the update arm of the conflict clause.
func (r *ResultRepository) Upsert(ctx context.Context, result *models.Result) (created bool, err error) {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.UpdatedAt = now

	// xmax = 0 only holds for freshly inserted tuples, which distinguishes
	// the insert arm from the update arm of ON CONFLICT.
	const query = `INSERT INTO results (id, student_id, subject_id, marks_obtained, total_marks, exam_type, semester, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :marks_obtained, :total_marks, :exam_type, :semester, :created_at, :updated_at)
        ON CONFLICT (student_id, subject_id, exam_type, semester)
        DO UPDATE SET marks_obtained = EXCLUDED.marks_obtained, total_marks = EXCLUDED.total_marks, updated_at = EXCLUDED.updated_at
        RETURNING (xmax = 0) AS inserted`

	rows, err := r.db.NamedQueryContext(ctx, query, result)
	if err != nil {
		return false, fmt.Errorf("upsert result: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&created); err != nil {
			return false, fmt.Errorf("scan upsert result: %w", err)
		}
	}
	return created, rows.Err()
}

// DeleteBySubject removes every result of a subject and returns the count.
func (r *ResultRepository) DeleteBySubject(ctx context.Context, subjectID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM results WHERE subject_id = $1`, subjectID)
	if err != nil {
		return 0, fmt.Errorf("delete results: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete results count: %w", err)
	}
	return deleted, nil
}
