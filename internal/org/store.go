package org

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNotFound reports a lookup against an id that does not exist.
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

// Store persists the organizational hierarchy and course learning outcomes.
type Store interface {
	CreateUniversity(ctx context.Context, u University) (string, error)
	ListUniversities(ctx context.Context) ([]University, error)
	CreateFaculty(ctx context.Context, f Faculty) (string, error)
	ListFaculties(ctx context.Context, universityID string) ([]Faculty, error)
	CreateDepartment(ctx context.Context, d Department) (string, error)
	ListDepartments(ctx context.Context, facultyID string) ([]Department, error)

	CreateCourse(ctx context.Context, c Course) (string, error)
	GetCourse(ctx context.Context, id string) (*Course, error)
	ListCourses(ctx context.Context, departmentID string, p ListParams) ([]Course, int, error)
	UpdateCourse(ctx context.Context, c Course) error
	DeleteCourse(ctx context.Context, id string) error

	CreateOutcome(ctx context.Context, courseID, description string) (*LearningOutcome, error)
	UpdateOutcome(ctx context.Context, o LearningOutcome) error
	DeleteOutcome(ctx context.Context, id string) error
	ListOutcomes(ctx context.Context, courseID string, activeOnly bool) ([]LearningOutcome, error)
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	universities map[string]*University
	faculties    map[string]*Faculty
	departments  map[string]*Department
	courses      map[string]*Course
	outcomes     map[string]*LearningOutcome
	mu           sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		universities: make(map[string]*University),
		faculties:    make(map[string]*Faculty),
		departments:  make(map[string]*Department),
		courses:      make(map[string]*Course),
		outcomes:     make(map[string]*LearningOutcome),
	}
}

func (s *MemoryStore) CreateUniversity(_ context.Context, u University) (string, error) {
	if u.Name == "" {
		return "", fmt.Errorf("university name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u.ID = generateID()
	u.CreatedAt = time.Now()
	s.universities[u.ID] = &u
	return u.ID, nil
}

func (s *MemoryStore) ListUniversities(_ context.Context) ([]University, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]University, 0, len(s.universities))
	for _, u := range s.universities {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateFaculty(_ context.Context, f Faculty) (string, error) {
	if f.Name == "" {
		return "", fmt.Errorf("faculty name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.universities[f.UniversityID]; !ok {
		return "", &ErrNotFound{Kind: "university", ID: f.UniversityID}
	}
	f.ID = generateID()
	f.CreatedAt = time.Now()
	s.faculties[f.ID] = &f
	return f.ID, nil
}

func (s *MemoryStore) ListFaculties(_ context.Context, universityID string) ([]Faculty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Faculty
	for _, f := range s.faculties {
		if f.UniversityID == universityID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateDepartment(_ context.Context, d Department) (string, error) {
	if d.Name == "" {
		return "", fmt.Errorf("department name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.faculties[d.FacultyID]; !ok {
		return "", &ErrNotFound{Kind: "faculty", ID: d.FacultyID}
	}
	d.ID = generateID()
	d.CreatedAt = time.Now()
	s.departments[d.ID] = &d
	return d.ID, nil
}

func (s *MemoryStore) ListDepartments(_ context.Context, facultyID string) ([]Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Department
	for _, d := range s.departments {
		if d.FacultyID == facultyID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateCourse(_ context.Context, c Course) (string, error) {
	if c.Code == "" || c.Title == "" {
		return "", fmt.Errorf("course code and title are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.departments[c.DepartmentID]; !ok {
		return "", &ErrNotFound{Kind: "department", ID: c.DepartmentID}
	}
	c.ID = generateID()
	c.CreatedAt = time.Now()
	s.courses[c.ID] = &c
	return c.ID, nil
}

func (s *MemoryStore) GetCourse(_ context.Context, id string) (*Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courses[id]
	if !ok {
		return nil, &ErrNotFound{Kind: "course", ID: id}
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ListCourses(_ context.Context, departmentID string, p ListParams) ([]Course, int, error) {
	p = p.normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []Course
	needle := strings.ToLower(p.Search)
	for _, c := range s.courses {
		if departmentID != "" && c.DepartmentID != departmentID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Code), needle) &&
			!strings.Contains(strings.ToLower(c.Title), needle) {
			continue
		}
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })

	total := len(all)
	start := p.offset()
	if start >= total {
		return []Course{}, total, nil
	}
	end := start + p.PerPage
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (s *MemoryStore) UpdateCourse(_ context.Context, c Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.courses[c.ID]
	if !ok {
		return &ErrNotFound{Kind: "course", ID: c.ID}
	}
	if c.Code != "" {
		cur.Code = c.Code
	}
	if c.Title != "" {
		cur.Title = c.Title
	}
	if c.InstructorID != "" {
		cur.InstructorID = c.InstructorID
	}
	return nil
}

func (s *MemoryStore) DeleteCourse(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[id]; !ok {
		return &ErrNotFound{Kind: "course", ID: id}
	}
	delete(s.courses, id)
	for oid, o := range s.outcomes {
		if o.CourseID == id {
			delete(s.outcomes, oid)
		}
	}
	return nil
}

func (s *MemoryStore) CreateOutcome(_ context.Context, courseID, description string) (*LearningOutcome, error) {
	if description == "" {
		return nil, fmt.Errorf("outcome description is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[courseID]; !ok {
		return nil, &ErrNotFound{Kind: "course", ID: courseID}
	}

	// Next number is max existing + 1, so deletes never renumber survivors.
	next := 1
	for _, o := range s.outcomes {
		if o.CourseID == courseID && o.Number >= next {
			next = o.Number + 1
		}
	}

	o := &LearningOutcome{
		ID:          generateID(),
		CourseID:    courseID,
		Number:      next,
		Description: description,
		Active:      true,
		CreatedAt:   time.Now(),
	}
	s.outcomes[o.ID] = o
	cp := *o
	return &cp, nil
}

func (s *MemoryStore) UpdateOutcome(_ context.Context, o LearningOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.outcomes[o.ID]
	if !ok {
		return &ErrNotFound{Kind: "outcome", ID: o.ID}
	}
	if o.Description != "" {
		cur.Description = o.Description
	}
	cur.Active = o.Active
	return nil
}

func (s *MemoryStore) DeleteOutcome(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.outcomes[id]; !ok {
		return &ErrNotFound{Kind: "outcome", ID: id}
	}
	delete(s.outcomes, id)
	return nil
}

func (s *MemoryStore) ListOutcomes(_ context.Context, courseID string, activeOnly bool) ([]LearningOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []LearningOutcome{}
	for _, o := range s.outcomes {
		if o.CourseID != courseID {
			continue
		}
		if activeOnly && !o.Active {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
