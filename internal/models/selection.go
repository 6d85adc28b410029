package models

import "time"

// FacultySelection is the audited record of a faculty's chosen context.
// At most one row exists per (faculty, year, scheme, department); the
// subject is overwritten on repeat selection.
type FacultySelection struct {
	ID           string    `db:"id" json:"id"`
	FacultyID    string    `db:"faculty_id" json:"faculty_id"`
	Year         int       `db:"year" json:"year"`
	Scheme       string    `db:"scheme" json:"scheme"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	SubjectID    *string   `db:"subject_id" json:"subject_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SelectionRequest carries a faculty's context choice. SubjectID is optional
// so the year/scheme/department step can be saved before a subject is picked.
type SelectionRequest struct {
	Year         int    `json:"year" validate:"required,min=1,max=4"`
	Scheme       string `json:"scheme" validate:"required"`
	DepartmentID string `json:"department_id" validate:"required"`
	SubjectID    string `json:"subject_id"`
}

// Context converts the stored selection into a TeachingContext.
func (s *FacultySelection) Context() TeachingContext {
	ctx := TeachingContext{
		Year:         s.Year,
		Scheme:       s.Scheme,
		DepartmentID: s.DepartmentID,
	}
	if s.SubjectID != nil {
		ctx.SubjectID = *s.SubjectID
	}
	return ctx
}
