package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdesk/faculty-results-api/internal/models"
	appErrors "github.com/campusdesk/faculty-results-api/pkg/errors"
)

type rosterStudentRepository interface {
	importStudentRepository
	ListByContext(ctx context.Context, departmentID string, year int, scheme string) ([]models.Student, error)
}

// MarksService covers manual marks entry: the class roster and bulk JSON
// submissions, sharing the spreadsheet path's upsert semantics.
type MarksService struct {
	students  rosterStudentRepository
	results   importResultRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	maxErrors int
}

// NewMarksService constructs a MarksService.
func NewMarksService(students rosterStudentRepository, results importResultRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, maxErrors int) *MarksService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if maxErrors <= 0 {
		maxErrors = 10
	}
	return &MarksService{students: students, results: results, cache: cache, validator: validate, logger: logger, maxErrors: maxErrors}
}

// Roster lists the students of the context's department, year and scheme in
// roll-number order.
func (s *MarksService) Roster(ctx context.Context, teaching models.TeachingContext) ([]models.Student, error) {
	students, err := s.students.ListByContext(ctx, teaching.DepartmentID, teaching.Year, teaching.Scheme)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// SaveMarks upserts one result per entry against the context's selected
// subject. Entries are independent; a failing entry is reported and skipped.
func (s *MarksService) SaveMarks(ctx context.Context, teaching models.TeachingContext, submission models.MarksSubmission) (*models.ImportSummary, error) {
	if !teaching.HasSubject() {
		return nil, appErrors.Clone(appErrors.ErrNoSelection, "no subject selected")
	}
	if err := s.validator.Struct(submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid marks payload")
	}

	summary := &models.ImportSummary{TotalRows: len(submission.Entries)}
	for i, entry := range submission.Entries {
		created, err := s.saveEntry(ctx, teaching, entry)
		if err != nil {
			s.logger.Warn("marks entry failed",
				zap.String("roll_number", entry.RollNumber),
				zap.Error(err))
			summary.Failed++
			if len(summary.Errors) < s.maxErrors {
				summary.Errors = append(summary.Errors, fmt.Sprintf("Entry %d (%s): could not save marks", i+1, entry.RollNumber))
			}
			continue
		}
		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	if summary.Accepted() > 0 {
		if err := s.cache.Invalidate(ctx, "analytics:*"); err != nil {
			s.logger.Warn("analytics cache invalidation failed", zap.Error(err))
		}
	}
	return summary, nil
}

func (s *MarksService) saveEntry(ctx context.Context, teaching models.TeachingContext, entry models.MarkEntry) (bool, error) {
	student, err := s.resolveStudent(ctx, teaching, entry.RollNumber, entry.Name)
	if err != nil {
		return false, err
	}

	totalMarks := entry.TotalMarks
	if totalMarks == 0 {
		totalMarks = models.DefaultTotalMarks
	}
	examType := entry.ExamType
	if examType == "" {
		examType = models.DefaultExamType
	}

	now := time.Now().UTC()
	return s.results.Upsert(ctx, &models.Result{
		ID:            uuid.NewString(),
		StudentID:     student.ID,
		SubjectID:     teaching.SubjectID,
		MarksObtained: entry.MarksObtained,
		TotalMarks:    totalMarks,
		ExamType:      examType,
		Semester:      models.DefaultSemester,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func (s *MarksService) resolveStudent(ctx context.Context, teaching models.TeachingContext, rollNumber, name string) (*models.Student, error) {
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
