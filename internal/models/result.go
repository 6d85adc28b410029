package models

import (
	"math"
	"time"
)

// PassMark is the minimum marks_obtained considered a pass.
const PassMark = 40

// Result records one exam outcome. Uniqueness is enforced on the natural
// key (student, subject, exam_type, semester); several results per
// student+subject may coexist across exam types and semesters.
type Result struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	SubjectID     string    `db:"subject_id" json:"subject_id"`
	MarksObtained int       `db:"marks_obtained" json:"marks_obtained"`
	TotalMarks    int       `db:"total_marks" json:"total_marks"`
	ExamType      string    `db:"exam_type" json:"exam_type"`
	Semester      string    `db:"semester" json:"semester"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Status derives Pass/Fail from the obtained marks.
func (r *Result) Status() string {
	if r.MarksObtained >= PassMark {
		return "Pass"
	}
	return "Fail"
}

// Percentage returns marks as a share of total, rounded to 2 decimals.
func (r *Result) Percentage() float64 {
	if r.TotalMarks == 0 {
		return 0
	}
	return Round2(float64(r.MarksObtained) / float64(r.TotalMarks) * 100)
}

// Round2 rounds to two decimal places (half away from zero, not truncation).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Defaults applied when an upload row omits the optional result fields.
const (
	DefaultTotalMarks = 100
	DefaultExamType   = "Mid Term"
	DefaultSemester   = "1st"
)
