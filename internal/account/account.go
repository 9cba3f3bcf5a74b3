// Package account manages users, credentials, and login sessions.
package account

import (
	"time"

	"github.com/crs-edu/crs-backend/internal/authz"
)

// User is one account in the system. PasswordHash is a bcrypt digest and
// never leaves the package in API responses.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         authz.Role `json:"role"`
	UniversityID string     `json:"university_id,omitempty"`
	FacultyID    string     `json:"faculty_id,omitempty"`
	DepartmentID string     `json:"department_id,omitempty"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewUser carries the fields needed to create an account.
type NewUser struct {
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Password     string     `json:"password"`
	Role         authz.Role `json:"role"`
	UniversityID string     `json:"university_id,omitempty"`
	FacultyID    string     `json:"faculty_id,omitempty"`
	DepartmentID string     `json:"department_id,omitempty"`
}
