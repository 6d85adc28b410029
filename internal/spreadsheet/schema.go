package spreadsheet

// FieldKind describes how a cell is validated and coerced.
type FieldKind int

const (
	// FieldString keeps the trimmed cell text.
	FieldString FieldKind = iota
	// FieldInt requires an integer; float-form cells ("85.0") are coerced.
	FieldInt
	// FieldMark is a mark constrained to the 0..100 range. Fractional
	// cells are truncated toward zero before the range check.
	FieldMark
)

// Field declares one named, typed column of an upload schema.
type Field struct {
	Header   string
	Kind     FieldKind
	Required bool
	// Default substitutes an empty cell for non-required fields.
	Default string
}

// Schema is the ordered set of columns an upload must carry. Header lookup
// is by name, not position: columns may appear in any order as long as all
// declared headers exist.
type Schema struct {
	Name   string
	Fields []Field
}

// Headers returns the declared header names in order.
func (s Schema) Headers() []string {
	headers := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		headers[i] = f.Header
	}
	return headers
}

// Column headers shared by both upload schemas.
const (
	HeaderRollNo        = "Roll No"
	HeaderName          = "Name"
	HeaderMarksObtained = "Marks Obtained"
	HeaderTotalMarks    = "Total Marks"
	HeaderExamType      = "Exam Type"
	HeaderCourseCode    = "Course Code"
	HeaderMarks         = "Marks"
)

// MarksEntrySchema is used when marks are uploaded against one already
// selected subject.
var MarksEntrySchema = Schema{
	Name: "Marks Template",
	Fields: []Field{
		{Header: HeaderRollNo, Kind: FieldString, Required: true},
		{Header: HeaderName, Kind: FieldString, Required: true},
		{Header: HeaderMarksObtained, Kind: FieldMark, Required: true},
		{Header: HeaderTotalMarks, Kind: FieldInt, Default: "100"},
		{Header: HeaderExamType, Kind: FieldString, Default: "Mid Term"},
	},
}

// ResultsUploadSchema is used for bulk result files that name the course
// per row instead of relying on a selected subject.
var ResultsUploadSchema = Schema{
	Name: "Results Template",
	Fields: []Field{
		{Header: HeaderRollNo, Kind: FieldString, Required: true},
		{Header: HeaderName, Kind: FieldString, Required: true},
		{Header: HeaderCourseCode, Kind: FieldString, Required: true},
		{Header: HeaderMarks, Kind: FieldMark, Required: true},
	},
}
