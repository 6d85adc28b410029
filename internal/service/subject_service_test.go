package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusdesk/faculty-results-api/internal/models"
	appErrors "github.com/campusdesk/faculty-results-api/pkg/errors"
)

type fakeOfferingRepo struct {
	byID    map[string]*models.Subject
	deleted []string
}

func (f *fakeOfferingRepo) Create(ctx context.Context, subject *models.Subject) error {
	f.byID[subject.ID] = subject
	return nil
}

func (f *fakeOfferingRepo) Update(ctx context.Context, subject *models.Subject) error {
	if _, ok := f.byID[subject.ID]; !ok {
		return sql.ErrNoRows
	}
	f.byID[subject.ID] = subject
	return nil
}

func (f *fakeOfferingRepo) Delete(ctx context.Context, id string) error {
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeOfferingRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if subject, ok := f.byID[id]; ok {
		return subject, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeOfferingRepo) ListByFaculty(ctx context.Context, facultyID string) ([]models.Subject, error) {
	var subjects []models.Subject
	for _, subject := range f.byID {
		if subject.OwnedBy(facultyID) {
			subjects = append(subjects, *subject)
		}
	}
	return subjects, nil
}

func (f *fakeOfferingRepo) ListByDepartment(ctx context.Context, departmentID string) ([]models.Subject, error) {
	var subjects []models.Subject
	for _, subject := range f.byID {
		if subject.DepartmentID == departmentID {
			subjects = append(subjects, *subject)
		}
	}
	return subjects, nil
}

func newSubjectFixture() (*SubjectService, *fakeOfferingRepo) {
	repo := &fakeOfferingRepo{byID: map[string]*models.Subject{}}
	return NewSubjectService(repo, nil, zap.NewNop()), repo
}

func subjectReq() models.SubjectRequest {
	return models.SubjectRequest{
		Name:         "Data Structures",
		Code:         "CS201",
		DepartmentID: "dept-1",
		Year:         2,
		Scheme:       "NEP",
		Credits:      4,
	}
}

func TestCreateSubjectNormalizesScheme(t *testing.T) {
	svc, repo := newSubjectFixture()

	req := subjectReq()
	req.Scheme = "Autonomous"
	subject, err := svc.Create(context.Background(), "f-1", req)
	require.NoError(t, err)
	assert.Equal(t, models.SchemeAutonomous, subject.Scheme)
	assert.True(t, subject.OwnedBy("f-1"))
	assert.Len(t, repo.byID, 1)
}

func TestCreateSubjectRejectsUnknownScheme(t *testing.T) {
	svc, _ := newSubjectFixture()

	req := subjectReq()
	req.Scheme = "CBSE"
	_, err := svc.Create(context.Background(), "f-1", req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCreateSubjectCanonicalizesAcademicYear(t *testing.T) {
	svc, _ := newSubjectFixture()

	req := subjectReq()
	req.AcademicYear = "2023"
	subject, err := svc.Create(context.Background(), "f-1", req)
	require.NoError(t, err)
	assert.Equal(t, "2023-2024", subject.AcademicYear)

	req.AcademicYear = "2022-2023"
	subject, err = svc.Create(context.Background(), "f-1", req)
	require.NoError(t, err)
	assert.Equal(t, "2022-2023", subject.AcademicYear)
}

func TestCreateSubjectAllowsDuplicateCodes(t *testing.T) {
	svc, repo := newSubjectFixture()

	first, err := svc.Create(context.Background(), "f-1", subjectReq())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), "f-2", subjectReq())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, repo.byID, 2)
}

func TestUpdateSubjectOwnerOnly(t *testing.T) {
	svc, _ := newSubjectFixture()
	created, err := svc.Create(context.Background(), "f-1", subjectReq())
	require.NoError(t, err)

	req := subjectReq()
	req.Name = "Advanced Data Structures"
	_, err = svc.Update(context.Background(), "f-2", created.ID, req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	updated, err := svc.Update(context.Background(), "f-1", created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Advanced Data Structures", updated.Name)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestDeleteSubjectOwnerOnly(t *testing.T) {
	svc, repo := newSubjectFixture()
	created, err := svc.Create(context.Background(), "f-1", subjectReq())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "f-2", created.ID)
	require.Error(t, err)
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.Delete(context.Background(), "f-1", created.ID))
	assert.Equal(t, []string{created.ID}, repo.deleted)
}

func TestListForContextFiltersYearAndScheme(t *testing.T) {
	svc, _ := newSubjectFixture()

	_, err := svc.Create(context.Background(), "f-1", subjectReq())
	require.NoError(t, err)
	other := subjectReq()
	other.Year = 3
	_, err = svc.Create(context.Background(), "f-1", other)
	require.NoError(t, err)

	subjects, err := svc.ListForContext(context.Background(), "dept-1", 2, "NEP")
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, 2, subjects[0].Year)
}
