package models

import "time"

// Student is created implicitly the first time an upload references an
// unseen roll number. Only the name is mutable after creation; department,
// year and scheme are fixed at first sight.
type Student struct {
	ID           string    `db:"id" json:"id"`
	RollNumber   string    `db:"roll_number" json:"roll_number"`
	Name         string    `db:"name" json:"name"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Year         int       `db:"year" json:"year"`
	Scheme       string    `db:"scheme" json:"scheme"`
	Email        string    `db:"email" json:"email,omitempty"`
	Phone        string    `db:"phone" json:"phone,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
