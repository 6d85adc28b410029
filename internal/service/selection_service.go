package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdesk/faculty-results-api/internal/models"
	appErrors "github.com/campusdesk/faculty-results-api/pkg/errors"
)

type selectionRepository interface {
	Upsert(ctx context.Context, selection *models.FacultySelection) error
	Latest(ctx context.Context, facultyID string) (*models.FacultySelection, error)
}

type selectionSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
}

// SelectionService persists each faculty's working context so scoped
// operations can resolve it without ambient session state.
type SelectionService struct {
	repo        selectionRepository
	subjects    selectionSubjectRepository
	departments departmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSelectionService constructs a SelectionService.
func NewSelectionService(repo selectionRepository, subjects selectionSubjectRepository, departments departmentRepository, validate *validator.Validate, logger *zap.Logger) *SelectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SelectionService{repo: repo, subjects: subjects, departments: departments, validator: validate, logger: logger}
}

// Departments lists the selectable departments.
func (s *SelectionService) Departments(ctx context.Context) ([]models.Department, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// Select records or replaces the faculty's working context. Re-selecting the
// same (year, scheme, department) overwrites the previous subject choice.
func (s *SelectionService) Select(ctx context.Context, facultyID string, req models.SelectionRequest) (*models.FacultySelection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload")
	}

	scheme := models.NormalizeScheme(req.Scheme)
	if !models.ValidScheme(scheme) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown scheme "+req.Scheme)
	}

	selection := &models.FacultySelection{
		ID:           uuid.NewString(),
		FacultyID:    facultyID,
		Year:         req.Year,
		Scheme:       scheme,
		DepartmentID: req.DepartmentID,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if req.SubjectID != "" {
		subject, err := s.subjects.FindByID(ctx, req.SubjectID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
		}
		if subject.DepartmentID != req.DepartmentID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject belongs to a different department")
		}
		selection.SubjectID = &subject.ID
	}

	if err := s.repo.Upsert(ctx, selection); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save selection")
	}

	s.logger.Info("selection saved",
		zap.String("faculty_id", facultyID),
		zap.Int("year", selection.Year),
		zap.String("scheme", selection.Scheme))
	return selection, nil
}

// Current resolves the faculty's most recent context. Callers that need a
// pinned subject should check HasSubject on the returned context.
func (s *SelectionService) Current(ctx context.Context, facultyID string) (*models.TeachingContext, error) {
	selection, err := s.repo.Latest(ctx, facultyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNoSelection, "no teaching context selected")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selection")
	}
	teaching := selection.Context()
	return &teaching, nil
}

// RequireSubject resolves the current context and insists on a pinned subject.
func (s *SelectionService) RequireSubject(ctx context.Context, facultyID string) (*models.TeachingContext, error) {
	teaching, err := s.Current(ctx, facultyID)
	if err != nil {
		return nil, err
	}
	if !teaching.HasSubject() {
		return nil, appErrors.Clone(appErrors.ErrNoSelection, "no subject selected")
	}
	return teaching, nil
}
