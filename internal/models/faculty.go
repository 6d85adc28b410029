package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Faculty represents a teaching staff account.
type Faculty struct {
	ID           string    `db:"id" json:"id"`
	EmployeeID   string    `db:"employee_id" json:"employee_id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Designation  string    `db:"designation" json:"designation"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Phone        string    `db:"phone" json:"phone"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// LoginRequest carries faculty credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued access token and profile.
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	Faculty     *Faculty `json:"faculty"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	FacultyID    string `json:"faculty_id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	DepartmentID string `json:"department_id"`
	jwt.RegisteredClaims
}
