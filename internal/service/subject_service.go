package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdesk/faculty-results-api/internal/models"
	appErrors "github.com/campusdesk/faculty-results-api/pkg/errors"
)

type subjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ListByFaculty(ctx context.Context, facultyID string) ([]models.Subject, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]models.Subject, error)
}

// SubjectService manages course offerings owned by faculty members.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// Create registers a new offering owned by the given faculty. Duplicate
// course codes are allowed; each offering is a distinct row.
func (s *SubjectService) Create(ctx context.Context, facultyID string, req models.SubjectRequest) (*models.Subject, error) {
	subject, err := s.buildSubject(facultyID, req)
	if err != nil {
		return nil, err
	}
	subject.ID = uuid.NewString()
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now

	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}

	s.logger.Info("subject created",
		zap.String("subject_id", subject.ID),
		zap.String("code", subject.Code),
		zap.String("faculty_id", facultyID))
	return subject, nil
}

// Update replaces the mutable fields of an offering. Only the owner may edit.
func (s *SubjectService) Update(ctx context.Context, facultyID, subjectID string, req models.SubjectRequest) (*models.Subject, error) {
	existing, err := s.ownedSubject(ctx, facultyID, subjectID)
	if err != nil {
		return nil, err
	}

	updated, err := s.buildSubject(facultyID, req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	return updated, nil
}

// Delete removes the offering and, via the schema, every result under it.
func (s *SubjectService) Delete(ctx context.Context, facultyID, subjectID string) error {
	if _, err := s.ownedSubject(ctx, facultyID, subjectID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, subjectID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	s.logger.Info("subject deleted", zap.String("subject_id", subjectID), zap.String("faculty_id", facultyID))
	return nil
}

// Get loads a single offering.
func (s *SubjectService) Get(ctx context.Context, subjectID string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// ListMine returns every offering owned by the faculty, newest first.
func (s *SubjectService) ListMine(ctx context.Context, facultyID string) ([]models.Subject, error) {
	subjects, err := s.repo.ListByFaculty(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// ListForContext returns the department's offerings matching the year and
// scheme, for the selection flow.
func (s *SubjectService) ListForContext(ctx context.Context, departmentID string, year int, scheme string) ([]models.Subject, error) {
	scheme = models.NormalizeScheme(scheme)
	subjects, err := s.repo.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	filtered := make([]models.Subject, 0, len(subjects))
	for _, subject := range subjects {
		if subject.Year == year && subject.Scheme == scheme {
			filtered = append(filtered, subject)
		}
	}
	return filtered, nil
}

func (s *SubjectService) ownedSubject(ctx context.Context, facultyID, subjectID string) (*models.Subject, error) {
	subject, err := s.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if !subject.OwnedBy(facultyID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "subject belongs to another faculty")
	}
	return subject, nil
}

func (s *SubjectService) buildSubject(facultyID string, req models.SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	scheme := models.NormalizeScheme(strings.TrimSpace(req.Scheme))
	if !models.ValidScheme(scheme) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown scheme "+req.Scheme)
	}

	label, err := normalizeAcademicYear(req.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year")
	}

	owner := facultyID
	return &models.Subject{
		Name:         strings.TrimSpace(req.Name),
		Code:         strings.TrimSpace(req.Code),
		DepartmentID: req.DepartmentID,
		Year:         req.Year,
		Scheme:       scheme,
		Credits:      req.Credits,
		FacultyID:    &owner,
		AcademicYear: label,
	}, nil
}

// normalizeAcademicYear accepts "", "YYYY" or "YYYY-YYYY" and returns the
// canonical label (or "" when unset).
func normalizeAcademicYear(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if start, err := strconv.Atoi(raw); err == nil {
		return models.AcademicYearLabel(start), nil
	}
	start, err := models.ParseAcademicYearStart(raw)
	if err != nil {
		return "", err
	}
	return models.AcademicYearLabel(start), nil
}
