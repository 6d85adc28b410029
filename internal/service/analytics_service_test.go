package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusdesk/faculty-results-api/internal/models"
)

type fakeAnalyticsRepo struct {
	marks map[string][]int
	names map[string][2]string
	rows  map[string][]models.StudentResultRow
}

func (f *fakeAnalyticsRepo) Aggregate(ctx context.Context, subjectIDs []string) (*models.MarksAggregate, error) {
	agg := &models.MarksAggregate{}
	for _, id := range subjectIDs {
		for _, mark := range f.marks[id] {
			agg.Total++
			if mark >= models.PassMark {
				agg.Passed++
			}
			if agg.Highest == nil || mark > *agg.Highest {
				m := mark
				agg.Highest = &m
			}
			if agg.Lowest == nil || mark < *agg.Lowest {
				m := mark
				agg.Lowest = &m
			}
		}
	}
	if agg.Total > 0 {
		sum := 0
		for _, id := range subjectIDs {
			for _, mark := range f.marks[id] {
				sum += mark
			}
		}
		avg := float64(sum) / float64(agg.Total)
		agg.Average = &avg
	}
	return agg, nil
}

func (f *fakeAnalyticsRepo) PerSubjectAggregates(ctx context.Context, subjectIDs []string) ([]models.SubjectAggregate, error) {
	var aggregates []models.SubjectAggregate
	for _, id := range subjectIDs {
		if len(f.marks[id]) == 0 {
			continue
		}
		agg, _ := f.Aggregate(ctx, []string{id})
		names := f.names[id]
		aggregates = append(aggregates, models.SubjectAggregate{
			SubjectID:      id,
			Code:           names[0],
			Name:           names[1],
			MarksAggregate: *agg,
		})
	}
	return aggregates, nil
}

func (f *fakeAnalyticsRepo) StudentRows(ctx context.Context, subjectIDs []string) ([]models.StudentResultRow, error) {
	var rows []models.StudentResultRow
	for _, id := range subjectIDs {
		rows = append(rows, f.rows[id]...)
	}
	return rows, nil
}

type fakeAnalyticsSubjects struct {
	byID       map[string]*models.Subject
	byDept     map[string][]models.Subject
	byLabel    map[string][]models.Subject
	byResultYr map[string][]models.Subject
}

func (f *fakeAnalyticsSubjects) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if subject, ok := f.byID[id]; ok {
		return subject, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAnalyticsSubjects) ListByDepartment(ctx context.Context, departmentID string) ([]models.Subject, error) {
	return f.byDept[departmentID], nil
}

func (f *fakeAnalyticsSubjects) ListByCodeAndLabel(ctx context.Context, code, departmentID, label string) ([]models.Subject, error) {
	return f.byLabel[label], nil
}

func (f *fakeAnalyticsSubjects) ListByCodeWithResultsInYears(ctx context.Context, code, departmentID string, years []int) ([]models.Subject, error) {
	var union []models.Subject
	for _, year := range years {
		union = append(union, f.byResultYr[models.AcademicYearLabel(year)]...)
	}
	return union, nil
}

func newAnalyticsFixture() (*AnalyticsService, *fakeAnalyticsRepo, *fakeAnalyticsSubjects) {
	repo := &fakeAnalyticsRepo{
		marks: map[string][]int{},
		names: map[string][2]string{},
		rows:  map[string][]models.StudentResultRow{},
	}
	subjects := &fakeAnalyticsSubjects{
		byID:       map[string]*models.Subject{},
		byDept:     map[string][]models.Subject{},
		byLabel:    map[string][]models.Subject{},
		byResultYr: map[string][]models.Subject{},
	}
	cache := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	svc := NewAnalyticsService(repo, subjects, cache, zap.NewNop(), 0, 2024)
	return svc, repo, subjects
}

func TestSummaryComputesPassFailStats(t *testing.T) {
	svc, repo, _ := newAnalyticsFixture()
	repo.marks["sub-1"] = []int{90, 40, 39, 0, 100}
	repo.names["sub-1"] = [2]string{"CS201", "Data Structures"}
	repo.rows["sub-1"] = []models.StudentResultRow{
		{RollNo: "21CS001", Name: "John Doe", Marks: 90, TotalMarks: 100},
		{RollNo: "21CS002", Name: "Jane Smith", Marks: 39, TotalMarks: 100},
	}

	analytics, err := svc.Summary(context.Background(), models.TeachingContext{SubjectID: "sub-1"})
	require.NoError(t, err)

	assert.Equal(t, 5, analytics.TotalStudents)
	assert.Equal(t, 3, analytics.PassCount)
	assert.Equal(t, 2, analytics.FailCount)
	assert.Equal(t, 53.8, analytics.AverageMarks)
	assert.Equal(t, 100, analytics.HighestMarks)
	assert.Equal(t, 0, analytics.LowestMarks)
	assert.Equal(t, 60.0, analytics.PassPercentage)

	require.Len(t, analytics.PerCourseBreakdown, 1)
	assert.Equal(t, "CS201", analytics.PerCourseBreakdown[0].CourseCode)

	require.Len(t, analytics.StudentResults, 2)
	assert.Equal(t, "Pass", analytics.StudentResults[0].Status)
	assert.Equal(t, 90.0, analytics.StudentResults[0].Percentage)
	assert.Equal(t, "Fail", analytics.StudentResults[1].Status)
}

func TestSummaryEmptyScopeIsZeroNotError(t *testing.T) {
	svc, _, _ := newAnalyticsFixture()

	analytics, err := svc.Summary(context.Background(), models.TeachingContext{
		Year: 2, Scheme: models.SchemeNEP, DepartmentID: "dept-empty",
	})
	require.NoError(t, err)
	assert.Zero(t, analytics.TotalStudents)
	assert.Zero(t, analytics.PassPercentage)
	assert.Empty(t, analytics.PerCourseBreakdown)
	assert.Empty(t, analytics.StudentResults)
}

func TestSummaryRoundsToTwoDecimals(t *testing.T) {
	svc, repo, _ := newAnalyticsFixture()
	repo.marks["sub-1"] = []int{40, 0, 0}

	analytics, err := svc.Summary(context.Background(), models.TeachingContext{SubjectID: "sub-1"})
	require.NoError(t, err)
	assert.Equal(t, 13.33, analytics.AverageMarks)
	assert.Equal(t, 33.33, analytics.PassPercentage)
}

func TestSummaryDepartmentScopeFiltersYearAndScheme(t *testing.T) {
	svc, repo, subjects := newAnalyticsFixture()
	subjects.byDept["dept-1"] = []models.Subject{
		{ID: "sub-1", Year: 2, Scheme: models.SchemeNEP},
		{ID: "sub-other", Year: 3, Scheme: models.SchemeNEP},
	}
	repo.marks["sub-1"] = []int{50}
	repo.marks["sub-other"] = []int{80, 80}

	analytics, err := svc.Summary(context.Background(), models.TeachingContext{
		Year: 2, Scheme: models.SchemeNEP, DepartmentID: "dept-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, analytics.TotalStudents)
}

func TestHistoryProbesPriorTwoSessionsFromEpoch(t *testing.T) {
	svc, _, subjects := newAnalyticsFixture()
	// No academic_year label on the subject: the configured epoch applies.
	subjects.byID["sub-1"] = &models.Subject{ID: "sub-1", Code: "CS201", DepartmentID: "dept-1"}

	history, err := svc.History(context.Background(), "sub-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2023-2024", history[0].Year)
	assert.Equal(t, "2022-2023", history[1].Year)
	assert.False(t, history[0].HasData)
	assert.False(t, history[1].HasData)
}

func TestHistoryFindsLabelledPriorOffering(t *testing.T) {
	svc, repo, subjects := newAnalyticsFixture()
	subjects.byID["sub-1"] = &models.Subject{ID: "sub-1", Code: "CS201", DepartmentID: "dept-1", AcademicYear: "2024-2025"}
	subjects.byLabel["2023-2024"] = []models.Subject{
		{ID: "sub-old", Code: "CS201", Name: "Data Structures", DepartmentID: "dept-1", AcademicYear: "2023-2024"},
	}
	repo.marks["sub-old"] = []int{60, 30}
	repo.names["sub-old"] = [2]string{"CS201", "Data Structures"}

	history, err := svc.History(context.Background(), "sub-1")
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.True(t, history[0].HasData)
	require.Len(t, history[0].Subjects, 1)
	assert.Equal(t, 2, history[0].Subjects[0].ResultCount)
	assert.Equal(t, 1, history[0].Subjects[0].PassCount)
	assert.Equal(t, 50.0, history[0].Subjects[0].PassRate)
	assert.Equal(t, 45.0, history[0].Subjects[0].AverageMarks)

	assert.False(t, history[1].HasData)
}

func TestHistoryUnionsLabelAndResultYearStrategies(t *testing.T) {
	svc, repo, subjects := newAnalyticsFixture()
	subjects.byID["sub-1"] = &models.Subject{ID: "sub-1", Code: "CS201", DepartmentID: "dept-1", AcademicYear: "2024-2025"}
	shared := models.Subject{ID: "sub-old", Code: "CS201", DepartmentID: "dept-1", AcademicYear: "2023-2024"}
	subjects.byLabel["2023-2024"] = []models.Subject{shared}
	// The same offering also surfaces via result creation dates; the union
	// must not report it twice.
	subjects.byResultYr["2023-2024"] = []models.Subject{shared}
	repo.marks["sub-old"] = []int{70}

	history, err := svc.History(context.Background(), "sub-1")
	require.NoError(t, err)
	require.Len(t, history[0].Subjects, 1)
}

func TestSubjectYearResultsRejectsBadLabel(t *testing.T) {
	svc, _, subjects := newAnalyticsFixture()
	subjects.byID["sub-1"] = &models.Subject{ID: "sub-1", Code: "CS201", DepartmentID: "dept-1"}

	_, err := svc.SubjectYearResults(context.Background(), "sub-1", "not-a-label")
	require.Error(t, err)
}

func TestSubjectYearResultsDrillDown(t *testing.T) {
	svc, repo, subjects := newAnalyticsFixture()
	subjects.byID["sub-1"] = &models.Subject{ID: "sub-1", Code: "CS201", Name: "Data Structures", DepartmentID: "dept-1"}
	subjects.byLabel["2022-2023"] = []models.Subject{
		{ID: "sub-hist", Code: "CS201", DepartmentID: "dept-1", AcademicYear: "2022-2023"},
	}
	repo.marks["sub-hist"] = []int{80, 20}
	repo.rows["sub-hist"] = []models.StudentResultRow{
		{RollNo: "20CS001", Marks: 80, TotalMarks: 100},
		{RollNo: "20CS002", Marks: 20, TotalMarks: 100},
	}

	payload, err := svc.SubjectYearResults(context.Background(), "sub-1", "2022-2023")
	require.NoError(t, err)
	assert.Equal(t, "Data Structures", payload.SubjectName)
	assert.Equal(t, "2022-2023", payload.AcademicYear)
	assert.Equal(t, 2, payload.TotalStudents)
	assert.Equal(t, 1, payload.PassCount)
	assert.Equal(t, 1, payload.FailCount)
	assert.Equal(t, 50.0, payload.PassRate)
	require.Len(t, payload.Results, 2)
	assert.Equal(t, "Pass", payload.Results[0].Status)
	assert.Equal(t, "Fail", payload.Results[1].Status)
}

func TestSubjectYearResultsEmptySession(t *testing.T) {
	svc, _, subjects := newAnalyticsFixture()
	subjects.byID["sub-1"] = &models.Subject{ID: "sub-1", Code: "CS201", DepartmentID: "dept-1"}

	payload, err := svc.SubjectYearResults(context.Background(), "sub-1", "2021-2022")
	require.NoError(t, err)
	assert.Zero(t, payload.TotalStudents)
	assert.Empty(t, payload.Results)
}
