package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campusdesk/faculty-results-api/internal/models"
	appErrors "github.com/campusdesk/faculty-results-api/pkg/errors"
)

type analyticsRepository interface {
	Aggregate(ctx context.Context, subjectIDs []string) (*models.MarksAggregate, error)
	PerSubjectAggregates(ctx context.Context, subjectIDs []string) ([]models.SubjectAggregate, error)
	StudentRows(ctx context.Context, subjectIDs []string) ([]models.StudentResultRow, error)
}

type analyticsSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]models.Subject, error)
	ListByCodeAndLabel(ctx context.Context, code, departmentID, label string) ([]models.Subject, error)
	ListByCodeWithResultsInYears(ctx context.Context, code, departmentID string, years []int) ([]models.Subject, error)
}

// AnalyticsService computes pass/fail statistics over a teaching context and
// looks up the same course in prior academic sessions.
type AnalyticsService struct {
	repo       analyticsRepository
	subjects   analyticsSubjectRepository
	cache      *CacheService
	logger     *zap.Logger
	cacheTTL   time.Duration
	epochStart int
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(repo analyticsRepository, subjects analyticsSubjectRepository, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration, epochStart int) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if epochStart <= 0 {
		epochStart = 2024
	}
	return &AnalyticsService{
		repo:       repo,
		subjects:   subjects,
		cache:      cache,
		logger:     logger,
		cacheTTL:   cacheTTL,
		epochStart: epochStart,
	}
}

// Summary computes the analytics payload for the context. A pinned subject
// narrows the scope to that offering; otherwise every matching offering in
// the department is included. An empty scope yields the zero payload.
func (s *AnalyticsService) Summary(ctx context.Context, teaching models.TeachingContext) (*models.ResultAnalytics, error) {
	key := summaryCacheKey(teaching)
	var cached models.ResultAnalytics
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	subjectIDs, err := s.scopeSubjectIDs(ctx, teaching)
	if err != nil {
		return nil, err
	}

	analytics, err := s.compute(ctx, subjectIDs)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, analytics, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache analytics summary", zap.String("key", key), zap.Error(err))
	}
	return analytics, nil
}

// History probes the two academic sessions preceding the subject's own. Each
// session is reported even when empty, with has_data false.
func (s *AnalyticsService) History(ctx context.Context, subjectID string) ([]models.HistoricalYear, error) {
	subject, err := s.loadSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	currentStart := subject.StartYear(s.epochStart)
	history := make([]models.HistoricalYear, 0, 2)
	for offset := 1; offset <= 2; offset++ {
		start := currentStart - offset
		label := models.AcademicYearLabel(start)

		candidates, err := s.candidatesForSession(ctx, subject, start)
		if err != nil {
			return nil, err
		}

		year := models.HistoricalYear{Year: label, Subjects: []models.HistoricalSubjectStats{}}
		if len(candidates) > 0 {
			stats, err := s.candidateStats(ctx, candidates)
			if err != nil {
				return nil, err
			}
			year.Subjects = stats
			for _, st := range stats {
				if st.ResultCount > 0 {
					year.HasData = true
					break
				}
			}
		}
		history = append(history, year)
	}
	return history, nil
}

// SubjectYearResults drills into one historical session label for the
// subject's course code, returning the flat rows plus summary counts.
func (s *AnalyticsService) SubjectYearResults(ctx context.Context, subjectID, label string) (*models.SubjectYearResults, error) {
	subject, err := s.loadSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	start, err := models.ParseAcademicYearStart(label)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year label")
	}

	candidates, err := s.candidatesForSession(ctx, subject, start)
	if err != nil {
		return nil, err
	}

	payload := &models.SubjectYearResults{
		SubjectName:  subject.Name,
		SubjectCode:  subject.Code,
		AcademicYear: models.AcademicYearLabel(start),
		Results:      []models.StudentResultRow{},
	}
	if len(candidates) == 0 {
		return payload, nil
	}

	ids := subjectIDsOf(candidates)
	agg, err := s.repo.Aggregate(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate results")
	}
	rows, err := s.repo.StudentRows(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load results")
	}

	payload.TotalStudents = agg.Total
	payload.PassCount = agg.Passed
	payload.FailCount = agg.Total - agg.Passed
	payload.PassRate = passRate(agg.Passed, agg.Total)
	payload.AverageMarks = roundedAverage(agg.Average)
	payload.Results = decorateRows(rows)
	return payload, nil
}

func (s *AnalyticsService) compute(ctx context.Context, subjectIDs []string) (*models.ResultAnalytics, error) {
	analytics := &models.ResultAnalytics{
		PerCourseBreakdown: []models.CourseBreakdown{},
		StudentResults:     []models.StudentResultRow{},
	}
	if len(subjectIDs) == 0 {
		return analytics, nil
	}

	agg, err := s.repo.Aggregate(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate results")
	}
	analytics.TotalStudents = agg.Total
	analytics.PassCount = agg.Passed
	analytics.FailCount = agg.Total - agg.Passed
	analytics.AverageMarks = roundedAverage(agg.Average)
	analytics.PassPercentage = passRate(agg.Passed, agg.Total)
	if agg.Highest != nil {
		analytics.HighestMarks = *agg.Highest
	}
	if agg.Lowest != nil {
		analytics.LowestMarks = *agg.Lowest
	}

	perSubject, err := s.repo.PerSubjectAggregates(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute per-course breakdown")
	}
	for _, sub := range perSubject {
		breakdown := models.CourseBreakdown{
			SubjectID:      sub.SubjectID,
			CourseCode:     sub.Code,
			CourseName:     sub.Name,
			TotalStudents:  sub.Total,
			PassCount:      sub.Passed,
			FailCount:      sub.Total - sub.Passed,
			AverageMarks:   roundedAverage(sub.Average),
			PassPercentage: passRate(sub.Passed, sub.Total),
		}
		if sub.Highest != nil {
			breakdown.HighestMarks = *sub.Highest
		}
		if sub.Lowest != nil {
			breakdown.LowestMarks = *sub.Lowest
		}
		analytics.PerCourseBreakdown = append(analytics.PerCourseBreakdown, breakdown)
	}

	rows, err := s.repo.StudentRows(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student results")
	}
	analytics.StudentResults = decorateRows(rows)
	return analytics, nil
}

func (s *AnalyticsService) scopeSubjectIDs(ctx context.Context, teaching models.TeachingContext) ([]string, error) {
	if teaching.HasSubject() {
		return []string{teaching.SubjectID}, nil
	}
	subjects, err := s.subjects.ListByDepartment(ctx, teaching.DepartmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list department subjects")
	}
	ids := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		if subject.Year == teaching.Year && subject.Scheme == teaching.Scheme {
			ids = append(ids, subject.ID)
		}
	}
	return ids, nil
}

// candidatesForSession finds the offerings of the subject's course that
// belong to the session starting at the given year. Two strategies are
// unioned: an explicit matching academic_year label, and results whose
// created_at falls in either calendar year of the span.
func (s *AnalyticsService) candidatesForSession(ctx context.Context, subject *models.Subject, start int) ([]models.Subject, error) {
	label := models.AcademicYearLabel(start)

	labelled, err := s.subjects.ListByCodeAndLabel(ctx, subject.Code, subject.DepartmentID, label)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find labelled offerings")
	}
	byResults, err := s.subjects.ListByCodeWithResultsInYears(ctx, subject.Code, subject.DepartmentID, []int{start, start + 1})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find offerings by result dates")
	}

	seen := make(map[string]bool, len(labelled)+len(byResults))
	union := make([]models.Subject, 0, len(labelled)+len(byResults))
	for _, list := range [][]models.Subject{labelled, byResults} {
		for _, candidate := range list {
			if seen[candidate.ID] {
				continue
			}
			seen[candidate.ID] = true
			union = append(union, candidate)
		}
	}
	return union, nil
}

func (s *AnalyticsService) candidateStats(ctx context.Context, candidates []models.Subject) ([]models.HistoricalSubjectStats, error) {
	aggregates, err := s.repo.PerSubjectAggregates(ctx, subjectIDsOf(candidates))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute historical stats")
	}
	byID := make(map[string]models.SubjectAggregate, len(aggregates))
	for _, agg := range aggregates {
		byID[agg.SubjectID] = agg
	}

	stats := make([]models.HistoricalSubjectStats, 0, len(candidates))
	for _, candidate := range candidates {
		st := models.HistoricalSubjectStats{
			SubjectID:    candidate.ID,
			CourseCode:   candidate.Code,
			CourseName:   candidate.Name,
			AcademicYear: candidate.AcademicYear,
		}
		if agg, ok := byID[candidate.ID]; ok {
			st.ResultCount = agg.Total
			st.PassCount = agg.Passed
			st.PassRate = passRate(agg.Passed, agg.Total)
			st.AverageMarks = roundedAverage(agg.Average)
		}
		stats = append(stats, st)
	}
	return stats, nil
}

func (s *AnalyticsService) loadSubject(ctx context.Context, subjectID string) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

func summaryCacheKey(teaching models.TeachingContext) string {
	if teaching.HasSubject() {
		return "analytics:summary:subject:" + teaching.SubjectID
	}
	return fmt.Sprintf("analytics:summary:dept:%s:%d:%s", teaching.DepartmentID, teaching.Year, teaching.Scheme)
}

func subjectIDsOf(subjects []models.Subject) []string {
	ids := make([]string, len(subjects))
	for i, subject := range subjects {
		ids[i] = subject.ID
	}
	return ids
}

func passRate(passed, total int) float64 {
	if total == 0 {
		return 0
	}
	return models.Round2(float64(passed) / float64(total) * 100)
}

func roundedAverage(avg *float64) float64 {
	if avg == nil {
		return 0
	}
	return models.Round2(*avg)
}

func decorateRows(rows []models.StudentResultRow) []models.StudentResultRow {
	decorated := make([]models.StudentResultRow, len(rows))
	for i, row := range rows {
		result := models.Result{MarksObtained: row.Marks, TotalMarks: row.TotalMarks}
		row.Status = result.Status()
		row.Percentage = result.Percentage()
		decorated[i] = row
	}
	return decorated
}
