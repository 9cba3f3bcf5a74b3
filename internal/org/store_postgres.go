package org

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a connection pool. Call EnsureSchema before first use
// on a fresh database.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the hierarchy tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS universities (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			code TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS faculties (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			university_id UUID NOT NULL REFERENCES universities(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS departments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			faculty_id UUID NOT NULL REFERENCES faculties(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS courses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			department_id UUID NOT NULL REFERENCES departments(id) ON DELETE CASCADE,
			instructor_id TEXT,
			code TEXT NOT NULL,
			title TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS learning_outcomes (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
			number INT NOT NULL,
			description TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (course_id, number)
		);
		CREATE INDEX IF NOT EXISTS idx_courses_department ON courses(department_id);
		CREATE INDEX IF NOT EXISTS idx_outcomes_course ON learning_outcomes(course_id);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateUniversity(ctx context.Context, u University) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if u.Name == "" {
		return "", fmt.Errorf("university name is required")
	}

	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO universities (name, code)
		 VALUES ($1, $2)
		 RETURNING id::text`,
		u.Name, u.Code,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create university: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) ListUniversities(ctx context.Context) ([]University, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, name, code, created_at
		 FROM universities
		 ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query universities: %w", err)
	}
	defer rows.Close()

	out := []University{}
	for rows.Next() {
		var u University
		if err := rows.Scan(&u.ID, &u.Name, &u.Code, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan university: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate universities: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateFaculty(ctx context.Context, f Faculty) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if f.Name == "" {
		return "", fmt.Errorf("faculty name is required")
	}

	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO faculties (university_id, name)
		 VALUES ($1::uuid, $2)
		 RETURNING id::text`,
		f.UniversityID, f.Name,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create faculty: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) ListFaculties(ctx context.Context, universityID string) ([]Faculty, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, university_id::text, name, created_at
		 FROM faculties
		 WHERE university_id = $1::uuid
		 ORDER BY name ASC`,
		universityID,
	)
	if err != nil {
		return nil, fmt.Errorf("query faculties: %w", err)
	}
	defer rows.Close()

	out := []Faculty{}
	for rows.Next() {
		var f Faculty
		if err := rows.Scan(&f.ID, &f.UniversityID, &f.Name, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan faculty: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faculties: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateDepartment(ctx context.Context, d Department) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if d.Name == "" {
		return "", fmt.Errorf("department name is required")
	}

	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO departments (faculty_id, name)
		 VALUES ($1::uuid, $2)
		 RETURNING id::text`,
		d.FacultyID, d.Name,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create department: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) ListDepartments(ctx context.Context, facultyID string) ([]Department, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, faculty_id::text, name, created_at
		 FROM departments
		 WHERE faculty_id = $1::uuid
		 ORDER BY name ASC`,
		facultyID,
	)
	if err != nil {
		return nil, fmt.Errorf("query departments: %w", err)
	}
	defer rows.Close()

	out := []Department{}
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.FacultyID, &d.Name, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate departments: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateCourse(ctx context.Context, c Course) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if c.Code == "" || c.Title == "" {
		return "", fmt.Errorf("course code and title are required")
	}

	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO courses (department_id, instructor_id, code, title)
		 VALUES ($1::uuid, $2, $3, $4)
		 RETURNING id::text`,
		c.DepartmentID, nullIfEmpty(c.InstructorID), c.Code, c.Title,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create course: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetCourse(ctx context.Context, id string) (*Course, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	c := &Course{}
	var instructor *string
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, department_id::text, instructor_id, code, title, created_at
		 FROM courses
		 WHERE id = $1::uuid`,
		id,
	).Scan(&c.ID, &c.DepartmentID, &instructor, &c.Code, &c.Title, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{Kind: "course", ID: id}
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	if instructor != nil {
		c.InstructorID = *instructor
	}
	return c, nil
}

func (s *PostgresStore) ListCourses(ctx context.Context, departmentID string, p ListParams) ([]Course, int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	p = p.normalize()
	pattern := "%" + p.Search + "%"

	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM courses
		 WHERE ($1 = '' OR department_id = $1::uuid)
		   AND ($2 = '' OR code ILIKE $3 OR title ILIKE $3)`,
		departmentID, p.Search, pattern,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, department_id::text, instructor_id, code, title, created_at
		 FROM courses
		 WHERE ($1 = '' OR department_id = $1::uuid)
		   AND ($2 = '' OR code ILIKE $3 OR title ILIKE $3)
		 ORDER BY code ASC
		 LIMIT $4 OFFSET $5`,
		departmentID, p.Search, pattern, p.PerPage, p.offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	out := []Course{}
	for rows.Next() {
		var c Course
		var instructor *string
		if err := rows.Scan(&c.ID, &c.DepartmentID, &instructor, &c.Code, &c.Title, &c.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan course: %w", err)
		}
		if instructor != nil {
			c.InstructorID = *instructor
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate courses: %w", err)
	}
	return out, total, nil
}

func (s *PostgresStore) UpdateCourse(ctx context.Context, c Course) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`UPDATE courses
		 SET code = COALESCE(NULLIF($2, ''), code),
		     title = COALESCE(NULLIF($3, ''), title),
		     instructor_id = COALESCE(NULLIF($4, ''), instructor_id)
		 WHERE id = $1::uuid`,
		c.ID, c.Code, c.Title, c.InstructorID,
	)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return &ErrNotFound{Kind: "course", ID: c.ID}
	}
	return nil
}

func (s *PostgresStore) DeleteCourse(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`DELETE FROM courses WHERE id = $1::uuid`,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return &ErrNotFound{Kind: "course", ID: id}
	}
	return nil
}

func (s *PostgresStore) CreateOutcome(ctx context.Context, courseID, description string) (*LearningOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if description == "" {
		return nil, fmt.Errorf("outcome description is required")
	}

	o := &LearningOutcome{CourseID: courseID, Description: description, Active: true}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO learning_outcomes (course_id, number, description)
		 SELECT c.id, COALESCE(MAX(o.number), 0) + 1, $2
		 FROM courses c
		 LEFT JOIN learning_outcomes o ON o.course_id = c.id
		 WHERE c.id = $1::uuid
		 GROUP BY c.id
		 RETURNING id::text, number, created_at`,
		courseID, description,
	).Scan(&o.ID, &o.Number, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{Kind: "course", ID: courseID}
		}
		return nil, fmt.Errorf("create outcome: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) UpdateOutcome(ctx context.Context, o LearningOutcome) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`UPDATE learning_outcomes
		 SET description = COALESCE(NULLIF($2, ''), description),
		     active = $3
		 WHERE id = $1::uuid`,
		o.ID, o.Description, o.Active,
	)
	if err != nil {
		return fmt.Errorf("update outcome: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return &ErrNotFound{Kind: "outcome", ID: o.ID}
	}
	return nil
}

func (s *PostgresStore) DeleteOutcome(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`DELETE FROM learning_outcomes WHERE id = $1::uuid`,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete outcome: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return &ErrNotFound{Kind: "outcome", ID: id}
	}
	return nil
}

func (s *PostgresStore) ListOutcomes(ctx context.Context, courseID string, activeOnly bool) ([]LearningOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, course_id::text, number, description, active, created_at
		 FROM learning_outcomes
		 WHERE course_id = $1::uuid
		   AND ($2 = FALSE OR active)
		 ORDER BY number ASC`,
		courseID, activeOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	out := []LearningOutcome{}
	for rows.Next() {
		var o LearningOutcome
		if err := rows.Scan(&o.ID, &o.CourseID, &o.Number, &o.Description, &o.Active, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return out, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
