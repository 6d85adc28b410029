package spreadsheet

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	appErrors "github.com/campusdesk/faculty-results-api/pkg/errors"
)

// Row is one successfully validated data row, addressed by header name.
type Row struct {
	Number  int
	strings map[string]string
	ints    map[string]int
}

// String returns the trimmed text value for the header.
func (r Row) String(header string) string {
	return r.strings[header]
}

// Int returns the parsed integer value for the header.
func (r Row) Int(header string) int {
	return r.ints[header]
}

// RowError records a per-row validation failure. Row errors are collected,
// never raised: one bad row must not abort the batch.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Reason)
}

// ParseResult carries the valid rows and the collected row errors of one
// parsed file.
type ParseResult struct {
	Rows      []Row
	RowErrors []RowError
}

// Parse reads an xlsx workbook and validates its first sheet against the
// schema. A missing required header aborts with a MALFORMED_FILE error;
// everything past the header row degrades to per-row errors.
func Parse(r io.Reader, schema Schema) (*ParseResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedFile.Code, appErrors.ErrMalformedFile.Status, "file is not a readable spreadsheet")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedFile.Code, appErrors.ErrMalformedFile.Status, "failed to read worksheet")
	}
	if len(cells) == 0 {
		return nil, missingHeadersError(schema)
	}

	colIndex, err := resolveHeader(cells[0], schema)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	for i := 1; i < len(cells); i++ {
		rowNum := i + 1
		raw := cells[i]
		if blankRow(raw) {
			continue
		}

		row, rowErr := parseRow(rowNum, raw, colIndex, schema)
		if rowErr != nil {
			result.RowErrors = append(result.RowErrors, *rowErr)
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

// resolveHeader maps each declared field to its column position, by name.
func resolveHeader(headerRow []string, schema Schema) (map[string]int, error) {
	positions := make(map[string]int, len(headerRow))
	for idx, cell := range headerRow {
		positions[strings.TrimSpace(cell)] = idx
	}

	colIndex := make(map[string]int, len(schema.Fields))
	for _, field := range schema.Fields {
		idx, ok := positions[field.Header]
		if !ok {
			return nil, missingHeadersError(schema)
		}
		colIndex[field.Header] = idx
	}
	return colIndex, nil
}

func missingHeadersError(schema Schema) error {
	return appErrors.Clone(appErrors.ErrMalformedFile,
		fmt.Sprintf("file must contain columns: %s", strings.Join(schema.Headers(), ", ")))
}

func parseRow(rowNum int, raw []string, colIndex map[string]int, schema Schema) (Row, *RowError) {
	row := Row{
		Number:  rowNum,
		strings: make(map[string]string, len(schema.Fields)),
		ints:    make(map[string]int),
	}

	for _, field := range schema.Fields {
		var cell string
		if idx := colIndex[field.Header]; idx < len(raw) {
			cell = strings.TrimSpace(raw[idx])
		}
		if cell == "" {
			if field.Required {
				return Row{}, &RowError{Row: rowNum, Reason: "missing required data"}
			}
			cell = field.Default
		}

		switch field.Kind {
		case FieldString:
			row.strings[field.Header] = cell
		case FieldInt, FieldMark:
			var value int
			var err error
			if field.Kind == FieldMark {
				value, err = parseMarkCell(cell)
			} else {
				value, err = parseIntCell(cell)
			}
			if err != nil {
				return Row{}, &RowError{Row: rowNum, Reason: fmt.Sprintf("invalid %s value", strings.ToLower(field.Header))}
			}
			if field.Kind == FieldMark && (value < 0 || value > 100) {
				return Row{}, &RowError{Row: rowNum, Reason: fmt.Sprintf("%s must be between 0 and 100", field.Header)}
			}
			row.ints[field.Header] = value
			row.strings[field.Header] = cell
		}
	}

	return row, nil
}

// parseIntCell accepts plain integers and whole-number float forms that
// spreadsheet tools commonly emit ("85", "85.0").
func parseIntCell(cell string) (int, error) {
	if v, err := strconv.Atoi(cell); err == nil {
		return v, nil
	}
	fv, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, err
	}
	if fv != math.Trunc(fv) {
		return 0, fmt.Errorf("not an integer: %s", cell)
	}
	return int(fv), nil
}

// parseMarkCell additionally accepts fractional marks ("85.5"), truncating
// toward zero before the range check.
func parseMarkCell(cell string) (int, error) {
	if v, err := strconv.Atoi(cell); err == nil {
		return v, nil
	}
	fv, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, err
	}
	return int(math.Trunc(fv)), nil
}

func blankRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
