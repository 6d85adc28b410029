package models

// MarksAggregate holds raw aggregate values over a set of results. Counts
// come back as zero and marks as null-free zeros when the scope is empty.
type MarksAggregate struct {
	Total   int      `db:"total"`
	Passed  int      `db:"passed"`
	Average *float64 `db:"average"`
	Highest *int     `db:"highest"`
	Lowest  *int     `db:"lowest"`
}

// SubjectAggregate pairs a subject's identity with its marks aggregate.
type SubjectAggregate struct {
	SubjectID string `db:"subject_id"`
	Code      string `db:"code"`
	Name      string `db:"name"`
	MarksAggregate
}

// CourseBreakdown holds per-subject statistics inside a wider scope.
type CourseBreakdown struct {
	SubjectID      string  `json:"subject_id"`
	CourseCode     string  `json:"course_code"`
	CourseName     string  `json:"course_name"`
	TotalStudents  int     `json:"total_students"`
	PassCount      int     `json:"pass_count"`
	FailCount      int     `json:"fail_count"`
	AverageMarks   float64 `json:"average_marks"`
	HighestMarks   int     `json:"highest_marks"`
	LowestMarks    int     `json:"lowest_marks"`
	PassPercentage float64 `json:"pass_percentage"`
}

// StudentResultRow is the flat per-student view of a result.
type StudentResultRow struct {
	RollNo     string  `db:"roll_number" json:"roll_no"`
	Name       string  `db:"name" json:"name"`
	CourseCode string  `db:"course_code" json:"course_code"`
	CourseName string  `db:"course_name" json:"course_name"`
	Marks      int     `db:"marks_obtained" json:"marks"`
	TotalMarks int     `db:"total_marks" json:"total_marks"`
	ExamType   string  `db:"exam_type" json:"exam_type"`
	Semester   string  `db:"semester" json:"semester"`
	Status     string  `db:"-" json:"status"`
	Percentage float64 `db:"-" json:"percentage"`
}

// ResultAnalytics is the full analytics payload for a scope.
type ResultAnalytics struct {
	TotalStudents      int                `json:"total_students"`
	PassCount          int                `json:"pass_count"`
	FailCount          int                `json:"fail_count"`
	AverageMarks       float64            `json:"average_marks"`
	HighestMarks       int                `json:"highest_marks"`
	LowestMarks        int                `json:"lowest_marks"`
	PassPercentage     float64            `json:"pass_percentage"`
	PerCourseBreakdown []CourseBreakdown  `json:"per_course_breakdown"`
	StudentResults     []StudentResultRow `json:"student_results"`
}

// HistoricalSubjectStats summarises one candidate subject within a prior
// academic session.
type HistoricalSubjectStats struct {
	SubjectID    string  `json:"subject_id"`
	CourseCode   string  `json:"course_code"`
	CourseName   string  `json:"course_name"`
	AcademicYear string  `json:"academic_year,omitempty"`
	ResultCount  int     `json:"result_count"`
	AverageMarks float64 `json:"avg_marks"`
	PassCount    int     `json:"pass_count"`
	PassRate     float64 `json:"pass_rate"`
}

// HistoricalYear groups candidate subject statistics under one session label.
type HistoricalYear struct {
	Year     string                   `json:"year"`
	HasData  bool                     `json:"has_data"`
	Subjects []HistoricalSubjectStats `json:"subjects"`
}

// SubjectYearResults is the detailed drill-down for one historical label.
type SubjectYearResults struct {
	SubjectName   string             `json:"subject_name"`
	SubjectCode   string             `json:"subject_code"`
	AcademicYear  string             `json:"academic_year"`
	TotalStudents int                `json:"total_students"`
	PassCount     int                `json:"pass_count"`
	FailCount     int                `json:"fail_count"`
	PassRate      float64            `json:"pass_rate"`
	AverageMarks  float64            `json:"average_marks"`
	Results       []StudentResultRow `json:"results"`
}
