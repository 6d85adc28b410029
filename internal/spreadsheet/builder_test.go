package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuildTemplateRoundTrip(t *testing.T) {
	buf, err := BuildTemplate(MarksEntrySchema, [][]interface{}{
		{"21CS001", "John Doe", 85, 100, "Mid Term"},
	})
	require.NoError(t, err)

	// A generated template must parse cleanly through its own schema.
	result, err := Parse(bytes.NewReader(buf.Bytes()), MarksEntrySchema)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Empty(t, result.RowErrors)
	assert.Equal(t, "21CS001", result.Rows[0].String(HeaderRollNo))
	assert.Equal(t, 85, result.Rows[0].Int(HeaderMarksObtained))
}

func TestBuildWorkbookWritesSummaryBlock(t *testing.T) {
	buf, err := BuildWorkbook(Sheet{
		Name:    "Result Analysis",
		Headers: []string{"Course Code", "Pass", "Fail"},
		Rows: [][]interface{}{
			{"CS201", 12, 3},
		},
		Summary: [][2]interface{}{
			{"Total Students", 15},
			{"Pass Percentage", 80.0},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Result Analysis")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Course Code", "Pass", "Fail"}, rows[0][:3])

	found := false
	for _, row := range rows {
		if len(row) > 0 && row[0] == "Overall Summary" {
			found = true
		}
	}
	assert.True(t, found, "summary block title missing")
}
