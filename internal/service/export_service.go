package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/campusdesk/faculty-results-api/internal/models"
	"github.com/campusdesk/faculty-results-api/internal/spreadsheet"
	appErrors "github.com/campusdesk/faculty-results-api/pkg/errors"
	"github.com/campusdesk/faculty-results-api/pkg/export"
)

type resultRemover interface {
	DeleteBySubject(ctx context.Context, subjectID string) (int64, error)
}

var studentResultHeaders = []string{"Roll No", "Name", "Course Code", "Course Name", "Marks", "Total Marks", "Exam Type", "Status", "Percentage"}

var analysisHeaders = []string{"Course Code", "Course Name", "Total Students", "Pass", "Fail", "Pass %", "Average", "Highest", "Lowest"}

// ExportService renders templates, workbooks, CSV and PDF downloads, and
// clears a subject's results.
type ExportService struct {
	analytics *AnalyticsService
	results   resultRemover
	cache     *CacheService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(analytics *AnalyticsService, results resultRemover, cache *CacheService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		analytics: analytics,
		results:   results,
		cache:     cache,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
	}
}

// MarksTemplate builds the downloadable marks-entry template with sample rows.
func (s *ExportService) MarksTemplate() (*bytes.Buffer, error) {
	samples := [][]interface{}{
		{"21CS001", "John Doe", 85, 100, "Mid Term"},
		{"21CS002", "Jane Smith", 72, 100, "Mid Term"},
	}
	buf, err := spreadsheet.BuildTemplate(spreadsheet.MarksEntrySchema, samples)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build template")
	}
	return buf, nil
}

// ResultsTemplate builds the downloadable bulk-results template with sample rows.
func (s *ExportService) ResultsTemplate() (*bytes.Buffer, error) {
	samples := [][]interface{}{
		{"21CS001", "John Doe", "CS201", 85},
		{"21CS002", "Jane Smith", "CS201", 67},
	}
	buf, err := spreadsheet.BuildTemplate(spreadsheet.ResultsUploadSchema, samples)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build template")
	}
	return buf, nil
}

// AnalysisWorkbook renders the per-course analysis plus an overall summary
// block into a workbook.
func (s *ExportService) AnalysisWorkbook(ctx context.Context, teaching models.TeachingContext) (*bytes.Buffer, error) {
	analytics, err := s.analytics.Summary(ctx, teaching)
	if err != nil {
		return nil, err
	}

	rows := make([][]interface{}, 0, len(analytics.PerCourseBreakdown))
	for _, course := range analytics.PerCourseBreakdown {
		rows = append(rows, []interface{}{
			course.CourseCode, course.CourseName, course.TotalStudents,
			course.PassCount, course.FailCount, course.PassPercentage,
			course.AverageMarks, course.HighestMarks, course.LowestMarks,
		})
	}

	buf, err := spreadsheet.BuildWorkbook(spreadsheet.Sheet{
		Name:    "Result Analysis",
		Headers: analysisHeaders,
		Rows:    rows,
		Summary: summaryPairs(analytics),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build analysis workbook")
	}
	return buf, nil
}

// ResultsWorkbook renders the flat student result list into a workbook.
func (s *ExportService) ResultsWorkbook(ctx context.Context, teaching models.TeachingContext) (*bytes.Buffer, error) {
	analytics, err := s.analytics.Summary(ctx, teaching)
	if err != nil {
		return nil, err
	}

	rows := make([][]interface{}, 0, len(analytics.StudentResults))
	for _, r := range analytics.StudentResults {
		rows = append(rows, []interface{}{
			r.RollNo, r.Name, r.CourseCode, r.CourseName,
			r.Marks, r.TotalMarks, r.ExamType, r.Status, r.Percentage,
		})
	}

	buf, err := spreadsheet.BuildWorkbook(spreadsheet.Sheet{
		Name:    "Student Results",
		Headers: studentResultHeaders,
		Rows:    rows,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build results workbook")
	}
	return buf, nil
}

// ResultsCSV renders the flat student result list as CSV.
func (s *ExportService) ResultsCSV(ctx context.Context, teaching models.TeachingContext) ([]byte, error) {
	analytics, err := s.analytics.Summary(ctx, teaching)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: studentResultHeaders}
	for _, r := range analytics.StudentResults {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Roll No":     r.RollNo,
			"Name":        r.Name,
			"Course Code": r.CourseCode,
			"Course Name": r.CourseName,
			"Marks":       strconv.Itoa(r.Marks),
			"Total Marks": strconv.Itoa(r.TotalMarks),
			"Exam Type":   r.ExamType,
			"Status":      r.Status,
			"Percentage":  fmt.Sprintf("%.2f", r.Percentage),
		})
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, nil
}

// AnalysisPDF renders the per-course analysis table as a PDF document.
func (s *ExportService) AnalysisPDF(ctx context.Context, teaching models.TeachingContext) ([]byte, error) {
	analytics, err := s.analytics.Summary(ctx, teaching)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: analysisHeaders}
	for _, course := range analytics.PerCourseBreakdown {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Course Code":    course.CourseCode,
			"Course Name":    course.CourseName,
			"Total Students": strconv.Itoa(course.TotalStudents),
			"Pass":           strconv.Itoa(course.PassCount),
			"Fail":           strconv.Itoa(course.FailCount),
			"Pass %":         fmt.Sprintf("%.2f", course.PassPercentage),
			"Average":        fmt.Sprintf("%.2f", course.AverageMarks),
			"Highest":        strconv.Itoa(course.HighestMarks),
			"Lowest":         strconv.Itoa(course.LowestMarks),
		})
	}
	dataset.Rows = append(dataset.Rows, map[string]string{
		"Course Code":    "Overall",
		"Total Students": strconv.Itoa(analytics.TotalStudents),
		"Pass":           strconv.Itoa(analytics.PassCount),
		"Fail":           strconv.Itoa(analytics.FailCount),
		"Pass %":         fmt.Sprintf("%.2f", analytics.PassPercentage),
		"Average":        fmt.Sprintf("%.2f", analytics.AverageMarks),
		"Highest":        strconv.Itoa(analytics.HighestMarks),
		"Lowest":         strconv.Itoa(analytics.LowestMarks),
	})

	payload, err := s.pdf.Render(dataset, "Result Analysis Report")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, nil
}

// DeleteResults removes every result of the context's selected subject and
// returns the number of deleted rows.
func (s *ExportService) DeleteResults(ctx context.Context, teaching models.TeachingContext) (int64, error) {
	if !teaching.HasSubject() {
		return 0, appErrors.Clone(appErrors.ErrNoSelection, "no subject selected")
	}

	deleted, err := s.results.DeleteBySubject(ctx, teaching.SubjectID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete results")
	}
	if deleted > 0 {
		if err := s.cache.Invalidate(ctx, "analytics:*"); err != nil {
			s.logger.Warn("analytics cache invalidation failed", zap.Error(err))
		}
	}
	s.logger.Info("subject results cleared",
		zap.String("subject_id", teaching.SubjectID),
		zap.Int64("deleted", deleted))
	return deleted, nil
}

func summaryPairs(analytics *models.ResultAnalytics) [][2]interface{} {
	return [][2]interface{}{
		{"Total Students", analytics.TotalStudents},
		{"Pass Count", analytics.PassCount},
		{"Fail Count", analytics.FailCount},
		{"Pass Percentage", analytics.PassPercentage},
		{"Average Marks", analytics.AverageMarks},
		{"Highest Marks", analytics.HighestMarks},
		{"Lowest Marks", analytics.LowestMarks},
	}
}
