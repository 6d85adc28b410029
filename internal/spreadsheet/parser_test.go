package spreadsheet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	appErrors "github.com/campusdesk/faculty-results-api/pkg/errors"
)

func buildWorkbookBytes(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, value))
		}
	}

	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))
	return buf
}

func TestParseMarksTemplate(t *testing.T) {
	buf := buildWorkbookBytes(t, [][]interface{}{
		{"Roll No", "Name", "Marks Obtained", "Total Marks", "Exam Type"},
		{"21CS001", "John Doe", 85, 100, "Mid Term"},
		{"21CS002", "Jane Smith", "72.0", "", ""},
	})

	result, err := Parse(buf, MarksEntrySchema)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Empty(t, result.RowErrors)

	first := result.Rows[0]
	assert.Equal(t, 2, first.Number)
	assert.Equal(t, "21CS001", first.String(HeaderRollNo))
	assert.Equal(t, 85, first.Int(HeaderMarksObtained))
	assert.Equal(t, "Mid Term", first.String(HeaderExamType))

	// Empty optional cells fall back to the schema defaults.
	second := result.Rows[1]
	assert.Equal(t, 72, second.Int(HeaderMarksObtained))
	assert.Equal(t, 100, second.Int(HeaderTotalMarks))
	assert.Equal(t, "Mid Term", second.String(HeaderExamType))
}

func TestParseHeaderOrderIrrelevant(t *testing.T) {
	buf := buildWorkbookBytes(t, [][]interface{}{
		{"Marks", "Course Code", "Name", "Roll No"},
		{55, "CS201", "John Doe", "21CS001"},
	})

	result, err := Parse(buf, ResultsUploadSchema)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "CS201", result.Rows[0].String(HeaderCourseCode))
	assert.Equal(t, 55, result.Rows[0].Int(HeaderMarks))
}

func TestParseMissingHeaderRejectsFile(t *testing.T) {
	buf := buildWorkbookBytes(t, [][]interface{}{
		{"Roll No", "Name", "Marks"},
		{"21CS001", "John Doe", 85},
	})

	_, err := Parse(buf, ResultsUploadSchema)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrMalformedFile.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "Course Code")
}

func TestParseNotASpreadsheet(t *testing.T) {
	_, err := Parse(bytes.NewBufferString("not an xlsx payload"), MarksEntrySchema)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrMalformedFile.Code, appErr.Code)
}

func TestParseCollectsRowErrors(t *testing.T) {
	buf := buildWorkbookBytes(t, [][]interface{}{
		{"Roll No", "Name", "Course Code", "Marks"},
		{"21CS001", "John Doe", "CS201", 150},
		{"", "Jane Smith", "CS201", 60},
		{"21CS003", "Bob Ray", "CS201", "abc"},
		{"21CS004", "Ann Lee", "CS201", 90},
	})

	result, err := Parse(buf, ResultsUploadSchema)
	require.NoError(t, err)

	// One good row survives three bad ones.
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "21CS004", result.Rows[0].String(HeaderRollNo))

	require.Len(t, result.RowErrors, 3)
	assert.Equal(t, 2, result.RowErrors[0].Row)
	assert.Contains(t, result.RowErrors[0].Reason, "between 0 and 100")
	assert.Equal(t, "missing required data", result.RowErrors[1].Reason)
	assert.Contains(t, result.RowErrors[2].Reason, "invalid marks value")
}

func TestParseSkipsBlankRows(t *testing.T) {
	buf := buildWorkbookBytes(t, [][]interface{}{
		{"Roll No", "Name", "Course Code", "Marks"},
		{"21CS001", "John Doe", "CS201", 85},
		{"", "", "", ""},
		{"21CS002", "Jane Smith", "CS201", 40},
	})

	result, err := Parse(buf, ResultsUploadSchema)
	require.NoError(t, err)
	assert.Len(t, result.Rows, 2)
	assert.Empty(t, result.RowErrors)
}

func TestParseTruncatesFractionalMarks(t *testing.T) {
	buf := buildWorkbookBytes(t, [][]interface{}{
		{"Roll No", "Name", "Course Code", "Marks"},
		{"21CS001", "John Doe", "CS201", "85.5"},
		{"21CS002", "Jane Smith", "CS201", "39.9"},
		{"21CS003", "Bob Ray", "CS201", "150.5"},
	})

	result, err := Parse(buf, ResultsUploadSchema)
	require.NoError(t, err)

	// Fractional marks truncate toward zero; the range check applies to the
	// truncated value.
	require.Len(t, result.Rows, 2)
	assert.Equal(t, 85, result.Rows[0].Int(HeaderMarks))
	assert.Equal(t, 39, result.Rows[1].Int(HeaderMarks))
	require.Len(t, result.RowErrors, 1)
	assert.Equal(t, 4, result.RowErrors[0].Row)
	assert.Contains(t, result.RowErrors[0].Reason, "between 0 and 100")
}

func TestParseKeepsTotalMarksIntegral(t *testing.T) {
	buf := buildWorkbookBytes(t, [][]interface{}{
		{"Roll No", "Name", "Marks Obtained", "Total Marks", "Exam Type"},
		{"21CS001", "John Doe", "85.5", "100.5", "Mid Term"},
	})

	result, err := Parse(buf, MarksEntrySchema)
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	require.Len(t, result.RowErrors, 1)
	assert.Contains(t, result.RowErrors[0].Reason, "invalid total marks value")
}
