package spreadsheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const headerFill = "#366092"

// BuildTemplate renders a downloadable workbook containing the schema's
// header row and the provided sample rows.
func BuildTemplate(schema Schema, samples [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := schema.Name
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	if err := writeHeaderRow(f, sheet, schema.Headers()); err != nil {
		return nil, err
	}
	for i, sample := range samples {
		for col, value := range sample {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, value)
		}
	}
	autoSizeColumns(f, sheet, len(schema.Fields), 20)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

// Sheet is a generic tabular block used by export builders.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
	// Summary is an optional labelled key/value block appended after the
	// table, separated by a blank row.
	Summary [][2]interface{}
}

// BuildWorkbook renders one or more sheets into a workbook.
func BuildWorkbook(sheets ...Sheet) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		idx, err := f.NewSheet(s.Name)
		if err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", s.Name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		if err := writeHeaderRow(f, s.Name, s.Headers); err != nil {
			return nil, err
		}
		rowNum := 2
		for _, row := range s.Rows {
			for col, value := range row {
				cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
				f.SetCellValue(s.Name, cell, value)
			}
			rowNum++
		}

		if len(s.Summary) > 0 {
			rowNum++
			titleCell, _ := excelize.CoordinatesToCellName(1, rowNum)
			f.SetCellValue(s.Name, titleCell, "Overall Summary")
			if style, err := boldStyle(f); err == nil {
				f.SetCellStyle(s.Name, titleCell, titleCell, style)
			}
			rowNum++
			for _, pair := range s.Summary {
				keyCell, _ := excelize.CoordinatesToCellName(1, rowNum)
				valueCell, _ := excelize.CoordinatesToCellName(2, rowNum)
				f.SetCellValue(s.Name, keyCell, pair[0])
				f.SetCellValue(s.Name, valueCell, pair[1])
				rowNum++
			}
		}

		autoSizeColumns(f, s.Name, len(s.Headers), 30)
	}
	f.DeleteSheet("Sheet1")

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, style)
	}
	return nil
}

func boldStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
}

func autoSizeColumns(f *excelize.File, sheet string, count int, maxWidth float64) {
	cols, err := f.GetCols(sheet)
	if err != nil {
		return
	}
	for i := 0; i < count && i < len(cols); i++ {
		width := 10.0
		for _, cell := range cols[i] {
			if w := float64(len(cell)) + 2; w > width {
				width = w
			}
		}
		if width > maxWidth {
			width = maxWidth
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, name, name, width)
	}
}
