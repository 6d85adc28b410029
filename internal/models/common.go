package models

// Curriculum schemes supported by the portal.
const (
	SchemeR1920      = "R19-20"
	SchemeNEP        = "NEP"
	SchemeAutonomous = "AUTONOMOUS"
)

var schemeAliases = map[string]string{
	"R19-20":     SchemeR1920,
	"R 19-20":    SchemeR1920,
	"NEP":        SchemeNEP,
	"AUTONOMOUS": SchemeAutonomous,
	"Autonomous": SchemeAutonomous,
}

// NormalizeScheme maps UI variants of a scheme label onto the canonical
// value. Unknown labels pass through unchanged.
func NormalizeScheme(raw string) string {
	if canonical, ok := schemeAliases[raw]; ok {
		return canonical
	}
	return raw
}

// ValidScheme reports whether the label is one of the canonical schemes.
func ValidScheme(scheme string) bool {
	switch scheme {
	case SchemeR1920, SchemeNEP, SchemeAutonomous:
		return true
	}
	return false
}

// TeachingContext is the faculty's active selection, passed explicitly into
// every scoped operation instead of being read from ambient session state.
type TeachingContext struct {
	Year         int    `json:"year"`
	Scheme       string `json:"scheme"`
	DepartmentID string `json:"department_id"`
	SubjectID    string `json:"subject_id,omitempty"`
}

// HasSubject reports whether the context pins a specific subject.
func (t TeachingContext) HasSubject() bool {
	return t.SubjectID != ""
}
