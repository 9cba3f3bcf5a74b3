// Package org manages the organizational hierarchy: universities own
// faculties, faculties own departments, departments own courses, and
// courses own learning outcomes.
package org

import "time"

// University is the top of the tenant hierarchy.
type University struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// Faculty belongs to one university.
type Faculty struct {
	ID           string    `json:"id"`
	UniversityID string    `json:"university_id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Department belongs to one faculty.
type Department struct {
	ID        string    `json:"id"`
	FacultyID string    `json:"faculty_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Course belongs to one department and is taught by one instructor.
type Course struct {
	ID           string    `json:"id"`
	DepartmentID string    `json:"department_id"`
	InstructorID string    `json:"instructor_id,omitempty"`
	Code         string    `json:"code"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
}

// LearningOutcome is one CLO, numbered sequentially within its course.
type LearningOutcome struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Number      int       `json:"number"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListParams controls course listing. Search matches code or title.
type ListParams struct {
	Search  string
	Page    int
	PerPage int
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// normalize fills defaults and caps the page size.
func (p ListParams) normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

func (p ListParams) offset() int {
	return (p.Page - 1) * p.PerPage
}
