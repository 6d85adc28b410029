package models

// ImportSummary reports the outcome of one spreadsheet ingestion run.
// Failed counts every rejected row; Errors carries only the first few
// messages so huge broken files do not flood the response.
type ImportSummary struct {
	TotalRows int      `json:"total_rows"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// Accepted returns the number of rows that reached the database.
func (s ImportSummary) Accepted() int {
	return s.Created + s.Updated
}

// MarkEntry is one student's marks in a bulk JSON submission.
type MarkEntry struct {
	RollNumber    string `json:"roll_number" validate:"required"`
	Name          string `json:"name" validate:"required"`
	MarksObtained int    `json:"marks_obtained" validate:"min=0,max=100"`
	TotalMarks    int    `json:"total_marks" validate:"omitempty,min=1"`
	ExamType      string `json:"exam_type"`
}

// MarksSubmission is the bulk marks-entry payload.
type MarksSubmission struct {
	Entries []MarkEntry `json:"entries" validate:"required,min=1,dive"`
}
