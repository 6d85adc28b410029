package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campusdesk/faculty-results-api/internal/models"
)

// AnalyticsRepository exposes read-optimised aggregate queries over results.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Aggregate computes total/pass counts and avg/max/min marks over every
// result belonging to the given subjects. An empty scope yields zero counts
// and null mark aggregates.
func (r *AnalyticsRepository) Aggregate(ctx context.Context, subjectIDs []string) (*models.MarksAggregate, error) {
	if len(subjectIDs) == 0 {
		return &models.MarksAggregate{}, nil
	}
	const query = `SELECT COUNT(*) AS total,
        COUNT(*) FILTER (WHERE marks_obtained >= 40) AS passed,
        AVG(marks_obtained) AS average,
        MAX(marks_obtained) AS highest,
        MIN(marks_obtained) AS lowest
        FROM results WHERE subject_id = ANY($1)`
	var agg models.MarksAggregate
	if err := r.db.GetContext(ctx, &agg, query, pq.Array(subjectIDs)); err != nil {
		return nil, fmt.Errorf("aggregate results: %w", err)
	}
	return &agg, nil
}

// PerSubjectAggregates computes subject-local statistics for every subject
// in scope that has at least one result.
func (r *AnalyticsRepository) PerSubjectAggregates(ctx context.Context, subjectIDs []string) ([]models.SubjectAggregate, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT s.id AS subject_id, s.code, s.name,
        COUNT(r.id) AS total,
        COUNT(r.id) FILTER (WHERE r.marks_obtained >= 40) AS passed,
        AVG(r.marks_obtained) AS average,
        MAX(r.marks_obtained) AS highest,
        MIN(r.marks_obtained) AS lowest
        FROM subjects s
        JOIN results r ON r.subject_id = s.id
        WHERE s.id = ANY($1)
        GROUP BY s.id, s.code, s.name
        ORDER BY s.name`
	var aggregates []models.SubjectAggregate
	if err := r.db.SelectContext(ctx, &aggregates, query, pq.Array(subjectIDs)); err != nil {
		return nil, fmt.Errorf("per-subject aggregates: %w", err)
	}
	return aggregates, nil
}

// StudentRows returns the flat per-student result list for the scope,
// ordered by roll number.
func (r *AnalyticsRepository) StudentRows(ctx context.Context, subjectIDs []string) ([]models.StudentResultRow, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT st.roll_number, st.name, s.code AS course_code, s.name AS course_name,
        r.marks_obtained, r.total_marks, r.exam_type, r.semester
        FROM results r
        JOIN students st ON st.id = r.student_id
        JOIN subjects s ON s.id = r.subject_id
        WHERE r.subject_id = ANY($1)
        ORDER BY st.roll_number`
	var rows []models.StudentResultRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(subjectIDs)); err != nil {
		return nil, fmt.Errorf("student result rows: %w", err)
	}
	return rows, nil
}
