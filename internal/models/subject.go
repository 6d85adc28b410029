package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Subject represents one offering of a course. Duplicate codes are legal:
// re-offerings across academic sessions reuse the code.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Code         string    `db:"code" json:"code"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Year         int       `db:"year" json:"year"`
	Scheme       string    `db:"scheme" json:"scheme"`
	Credits      int       `db:"credits" json:"credits"`
	FacultyID    *string   `db:"faculty_id" json:"faculty_id,omitempty"`
	AcademicYear string    `db:"academic_year" json:"academic_year,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectRequest carries subject create/update input. AcademicYear accepts
// either a "YYYY-YYYY" label or a bare start year.
type SubjectRequest struct {
	Name         string `json:"name" validate:"required"`
	Code         string `json:"code" validate:"required"`
	DepartmentID string `json:"department_id" validate:"required"`
	Year         int    `json:"year" validate:"required,min=1,max=4"`
	Scheme       string `json:"scheme" validate:"required"`
	Credits      int    `json:"credits" validate:"min=0,max=10"`
	AcademicYear string `json:"academic_year"`
}

// OwnedBy reports whether the subject belongs to the given faculty.
func (s *Subject) OwnedBy(facultyID string) bool {
	return s.FacultyID != nil && *s.FacultyID == facultyID
}

// DisplayYear returns the academic session label when set, otherwise the
// ordinal year label ("1st Year" .. "4th Year").
func (s *Subject) DisplayYear() string {
	if s.AcademicYear != "" {
		return s.AcademicYear
	}
	return OrdinalYearLabel(s.Year)
}

// StartYear parses the "YYYY-YYYY" session label and returns its first
// year. The fallback is used when the label is absent or unparsable.
func (s *Subject) StartYear(fallback int) int {
	start, err := ParseAcademicYearStart(s.AcademicYear)
	if err != nil {
		return fallback
	}
	return start
}

// OrdinalYearLabel converts 1..4 into the UI label.
func OrdinalYearLabel(year int) string {
	switch year {
	case 1:
		return "1st Year"
	case 2:
		return "2nd Year"
	case 3:
		return "3rd Year"
	default:
		return fmt.Sprintf("%dth Year", year)
	}
}

// ParseAcademicYearStart extracts the start year from a "YYYY-YYYY" label.
func ParseAcademicYearStart(label string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(label), "-", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("academic year %q: want YYYY-YYYY", label)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("academic year %q: %w", label, err)
	}
	return start, nil
}

// AcademicYearLabel formats a session span starting at the given year.
func AcademicYearLabel(startYear int) string {
	return fmt.Sprintf("%d-%d", startYear, startYear+1)
}
