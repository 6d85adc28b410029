package models

// Department is immutable reference data seeded by migrations.
type Department struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Code string `db:"code" json:"code"`
}
