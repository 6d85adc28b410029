package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusdesk/faculty-results-api/internal/models"
	"github.com/campusdesk/faculty-results-api/internal/spreadsheet"
	appErrors "github.com/campusdesk/faculty-results-api/pkg/errors"
)

type fakeResultRemover struct {
	deleted   int64
	seen      []string
	deleteErr error
}

func (f *fakeResultRemover) DeleteBySubject(ctx context.Context, subjectID string) (int64, error) {
	f.seen = append(f.seen, subjectID)
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return f.deleted, nil
}

func newExportFixture() (*ExportService, *fakeAnalyticsRepo, *fakeResultRemover) {
	analytics, repo, subjects := newAnalyticsFixture()
	subjects.byID["sub-1"] = &models.Subject{ID: "sub-1", Code: "CS201", Name: "Data Structures", DepartmentID: "dept-1", Year: 2, Scheme: models.SchemeNEP}
	remover := &fakeResultRemover{}
	cache := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	svc := NewExportService(analytics, remover, cache, zap.NewNop())
	return svc, repo, remover
}

func TestMarksTemplateRoundTrips(t *testing.T) {
	svc, _, _ := newExportFixture()

	buf, err := svc.MarksTemplate()
	require.NoError(t, err)

	parsed, err := spreadsheet.Parse(buf, spreadsheet.MarksEntrySchema)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 2)
	assert.Equal(t, "21CS001", parsed.Rows[0].String("Roll No"))
	assert.Equal(t, 85, parsed.Rows[0].Int("Marks Obtained"))
}

func TestResultsTemplateRoundTrips(t *testing.T) {
	svc, _, _ := newExportFixture()

	buf, err := svc.ResultsTemplate()
	require.NoError(t, err)

	parsed, err := spreadsheet.Parse(buf, spreadsheet.ResultsUploadSchema)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 2)
	assert.Equal(t, "CS201", parsed.Rows[0].String("Course Code"))
}

func TestResultsCSVContainsStudentRows(t *testing.T) {
	svc, repo, _ := newExportFixture()
	repo.marks["sub-1"] = []int{85, 20}
	repo.names["sub-1"] = [2]string{"CS201", "Data Structures"}
	repo.rows["sub-1"] = []models.StudentResultRow{
		{RollNo: "21CS001", Name: "John Doe", Marks: 85, TotalMarks: 100, CourseCode: "CS201", CourseName: "Data Structures", ExamType: "Mid Term"},
		{RollNo: "21CS002", Name: "Jane Smith", Marks: 20, TotalMarks: 100, CourseCode: "CS201", CourseName: "Data Structures", ExamType: "Mid Term"},
	}

	payload, err := svc.ResultsCSV(context.Background(), teachingCtx())
	require.NoError(t, err)

	body := string(payload)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Roll No")
	assert.Contains(t, body, "21CS001")
	assert.Contains(t, body, "Pass")
	assert.Contains(t, body, "Fail")
	assert.Contains(t, body, "85.00")
}

func TestAnalysisPDFRenders(t *testing.T) {
	svc, repo, _ := newExportFixture()
	repo.marks["sub-1"] = []int{85, 20}
	repo.names["sub-1"] = [2]string{"CS201", "Data Structures"}

	payload, err := svc.AnalysisPDF(context.Background(), teachingCtx())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestDeleteResultsRequiresSubject(t *testing.T) {
	svc, _, remover := newExportFixture()
	ctx := teachingCtx()
	ctx.SubjectID = ""

	_, err := svc.DeleteResults(context.Background(), ctx)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNoSelection.Code, appErr.Code)
	assert.Empty(t, remover.seen)
}

func TestDeleteResultsReturnsCount(t *testing.T) {
	svc, _, remover := newExportFixture()
	remover.deleted = 7

	deleted, err := svc.DeleteResults(context.Background(), teachingCtx())
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
	assert.Equal(t, []string{"sub-1"}, remover.seen)
}
