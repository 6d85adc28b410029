package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdesk/faculty-results-api/internal/models"
	"github.com/campusdesk/faculty-results-api/internal/spreadsheet"
	appErrors "github.com/campusdesk/faculty-results-api/pkg/errors"
)

type importStudentRepository interface {
	FindByRoll(ctx context.Context, rollNumber string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) (*models.Student, error)
	UpdateName(ctx context.Context, id, name string) error
}

type importSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	FindFirstByCode(ctx context.Context, code string) (*models.Subject, error)
}

type importResultRepository interface {
	Upsert(ctx context.Context, result *models.Result) (bool, error)
}

// ImportService ingests spreadsheet uploads. Each row is processed
// independently: a bad row is recorded and skipped, never aborts the batch,
// and matching rows update in place instead of duplicating.
type ImportService struct {
	students  importStudentRepository
	subjects  importSubjectRepository
	results   importResultRepository
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	maxErrors int
}

// NewImportService constructs an ImportService.
func NewImportService(
	students importStudentRepository,
	subjects importSubjectRepository,
	results importResultRepository,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
	maxErrors int,
) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxErrors <= 0 {
		maxErrors = 10
	}
	return &ImportService{
		students:  students,
		subjects:  subjects,
		results:   results,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		maxErrors: maxErrors,
	}
}

// ImportMarks ingests a marks template against the context's selected
// subject. Students unseen so far are created with the context's department,
// year and scheme.
func (s *ImportService) ImportMarks(ctx context.Context, teaching models.TeachingContext, file io.Reader) (*models.ImportSummary, error) {
	if !teaching.HasSubject() {
		s.metrics.RecordRejectedUpload("marks")
		return nil, appErrors.Clone(appErrors.ErrNoSelection, "no subject selected")
	}

	if _, err := s.subjects.FindByID(ctx, teaching.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordRejectedUpload("marks")
			return nil, appErrors.Clone(appErrors.ErrNotFound, "selected subject no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	start := time.Now()
	parsed, err := spreadsheet.Parse(file, spreadsheet.MarksEntrySchema)
	if err != nil {
		s.metrics.RecordRejectedUpload("marks")
		return nil, err
	}

	summary := s.newSummary(parsed)
	for _, row := range parsed.Rows {
		result := &models.Result{
			SubjectID:     teaching.SubjectID,
			MarksObtained: row.Int(spreadsheet.HeaderMarksObtained),
			TotalMarks:    row.Int(spreadsheet.HeaderTotalMarks),
			ExamType:      row.String(spreadsheet.HeaderExamType),
			Semester:      models.DefaultSemester,
		}
		s.ingestRow(ctx, teaching, row, result, summary)
	}
	s.finishImport(ctx, "marks", summary, start)
	return summary, nil
}

// ImportResults ingests a bulk results file where each row names its course
// by code. The course code resolves to the earliest created offering with
// that code; rows naming unknown codes are rejected individually.
func (s *ImportService) ImportResults(ctx context.Context, teaching models.TeachingContext, file io.Reader) (*models.ImportSummary, error) {
	start := time.Now()
	parsed, err := spreadsheet.Parse(file, spreadsheet.ResultsUploadSchema)
	if err != nil {
		s.metrics.RecordRejectedUpload("results")
		return nil, err
	}

	summary := s.newSummary(parsed)
	subjectByCode := make(map[string]*models.Subject)
	for _, row := range parsed.Rows {
		code := row.String(spreadsheet.HeaderCourseCode)
		subject, ok := subjectByCode[code]
		if !ok {
			var err error
			subject, err = s.subjects.FindFirstByCode(ctx, code)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					subjectByCode[code] = nil
					s.rejectRow(summary, row.Number, fmt.Sprintf("course code %s not found", code))
					continue
				}
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve course code")
			}
			subjectByCode[code] = subject
		}
		if subject == nil {
			s.rejectRow(summary, row.Number, fmt.Sprintf("course code %s not found", code))
			continue
		}

		result := &models.Result{
			SubjectID:     subject.ID,
			MarksObtained: row.Int(spreadsheet.HeaderMarks),
			TotalMarks:    models.DefaultTotalMarks,
			ExamType:      models.DefaultExamType,
			Semester:      models.DefaultSemester,
		}
		s.ingestRow(ctx, teaching, row, result, summary)
	}
	s.finishImport(ctx, "results", summary, start)
	return summary, nil
}

// ingestRow resolves the row's student and upserts the prepared result.
func (s *ImportService) ingestRow(ctx context.Context, teaching models.TeachingContext, row spreadsheet.Row, result *models.Result, summary *models.ImportSummary) {
	student, err := s.resolveStudent(ctx, teaching, row.String(spreadsheet.HeaderRollNo), row.String(spreadsheet.HeaderName))
	if err != nil {
		s.logger.Warn("student resolution failed",
			zap.Int("row", row.Number),
			zap.String("roll_number", row.String(spreadsheet.HeaderRollNo)),
			zap.Error(err))
		s.rejectRow(summary, row.Number, "could not save student record")
		return
	}

	result.ID = uuid.NewString()
	result.StudentID = student.ID
	now := time.Now().UTC()
	result.CreatedAt = now
	result.UpdatedAt = now

	created, err := s.results.Upsert(ctx, result)
	if err != nil {
		s.logger.Warn("result upsert failed",
			zap.Int("row", row.Number),
			zap.String("student_id", student.ID),
			zap.Error(err))
		s.rejectRow(summary, row.Number, "could not save result")
		return
	}
	if created {
		summary.Created++
	} else {
		summary.Updated++
	}
}

// resolveStudent finds the roll number or creates the student with the
// context's defaults. A name that differs from the stored one wins.
func (s *ImportService) resolveStudent(ctx context.Context, teaching models.TeachingContext, rollNumber, name string) (*models.Student, error) {
	student, err := s.students.FindByRoll(ctx, rollNumber)
	if err == nil {
		if student.Name != name {
			if err := s.students.UpdateName(ctx, student.ID, name); err != nil {
				return nil, err
			}
			student.Name = name
		}
		return student, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := time.Now().UTC()
	return s.students.Create(ctx, &models.Student{
		ID:           uuid.NewString(),
		RollNumber:   rollNumber,
		Name:         name,
		DepartmentID: teaching.DepartmentID,
		Year:         teaching.Year,
		Scheme:       teaching.Scheme,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *ImportService) rejectRow(summary *models.ImportSummary, rowNumber int, reason string) {
	summary.Failed++
	if len(summary.Errors) < s.maxErrors {
		summary.Errors = append(summary.Errors, fmt.Sprintf("Row %d: %s", rowNumber, reason))
	}
}

func (s *ImportService) finishImport(ctx context.Context, kind string, summary *models.ImportSummary, start time.Time) {
	if summary.Accepted() > 0 {
		if err := s.cache.Invalidate(ctx, "analytics:*"); err != nil {
			s.logger.Warn("analytics cache invalidation failed", zap.Error(err))
		}
	}
	s.metrics.RecordImport(kind, summary.Accepted(), summary.Failed, time.Since(start))
	s.logger.Info("spreadsheet import finished",
		zap.String("kind", kind),
		zap.Int("total_rows", summary.TotalRows),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed),
		zap.Duration("took", time.Since(start)))
}

// newSummary seeds the summary with the parser's per-row failures, capped
// for display the same way ingestion failures are.
func (s *ImportService) newSummary(parsed *spreadsheet.ParseResult) *models.ImportSummary {
	summary := &models.ImportSummary{
		TotalRows: len(parsed.Rows) + len(parsed.RowErrors),
		Failed:    len(parsed.RowErrors),
	}
	for i, rowErr := range parsed.RowErrors {
		if i >= s.maxErrors {
			break
		}
		summary.Errors = append(summary.Errors, rowErr.Error())
	}
	return summary
}
