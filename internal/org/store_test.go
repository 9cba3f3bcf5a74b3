package org_test

import (
	"context"
	"testing"

	"github.com/crs-edu/crs-backend/internal/org"
)

// seedCourse builds university -> faculty -> department -> course and
// returns the course id.
func seedCourse(t *testing.T, s org.Store) string {
	t.Helper()
	ctx := context.Background()

	uniID, err := s.CreateUniversity(ctx, org.University{Name: "Metro University", Code: "MU"})
	if err != nil {
		t.Fatalf("CreateUniversity: %v", err)
	}
	facID, err := s.CreateFaculty(ctx, org.Faculty{UniversityID: uniID, Name: "Engineering"})
	if err != nil {
		t.Fatalf("CreateFaculty: %v", err)
	}
	depID, err := s.CreateDepartment(ctx, org.Department{FacultyID: facID, Name: "Computer Science"})
	if err != nil {
		t.Fatalf("CreateDepartment: %v", err)
	}
	courseID, err := s.CreateCourse(ctx, org.Course{DepartmentID: depID, Code: "CS301", Title: "Computer Networks"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	return courseID
}

func TestMemoryStore_Hierarchy(t *testing.T) {
	s := org.NewMemoryStore()
	ctx := context.Background()

	courseID := seedCourse(t, s)

	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		t.Fatalf("GetCourse: %v", err)
	}
	if course.Code != "CS301" || course.Title != "Computer Networks" {
		t.Errorf("course = %+v", course)
	}

	unis, err := s.ListUniversities(ctx)
	if err != nil {
		t.Fatalf("ListUniversities: %v", err)
	}
	if len(unis) != 1 || unis[0].Name != "Metro University" {
		t.Errorf("universities = %+v", unis)
	}
}

func TestMemoryStore_CreateFaculty_UnknownUniversity(t *testing.T) {
	s := org.NewMemoryStore()

	_, err := s.CreateFaculty(context.Background(), org.Faculty{UniversityID: "nope", Name: "Arts"})
	if !org.IsNotFound(err) {
		t.Errorf("error = %v, want not-found", err)
	}
}

func TestMemoryStore_ListCourses_SearchAndPaging(t *testing.T) {
	s := org.NewMemoryStore()
	ctx := context.Background()

	courseID := seedCourse(t, s)
	course, _ := s.GetCourse(ctx, courseID)
	for _, c := range []org.Course{
		{DepartmentID: course.DepartmentID, Code: "CS101", Title: "Intro to Programming"},
		{DepartmentID: course.DepartmentID, Code: "CS205", Title: "Databases"},
		{DepartmentID: course.DepartmentID, Code: "MA110", Title: "Linear Algebra"},
	} {
		if _, err := s.CreateCourse(ctx, c); err != nil {
			t.Fatalf("CreateCourse: %v", err)
		}
	}

	got, total, err := s.ListCourses(ctx, course.DepartmentID, org.ListParams{Search: "cs"})
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3 CS courses", total)
	}
	if len(got) != 3 || got[0].Code != "CS101" {
		t.Errorf("courses = %+v, want sorted by code", got)
	}

	page2, total, err := s.ListCourses(ctx, course.DepartmentID, org.ListParams{Page: 2, PerPage: 3})
	if err != nil {
		t.Fatalf("ListCourses page 2: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	if len(page2) != 1 || page2[0].Code != "MA110" {
		t.Errorf("page 2 = %+v, want the single overflow course", page2)
	}
}

func TestMemoryStore_UpdateCourse_PartialFields(t *testing.T) {
	s := org.NewMemoryStore()
	ctx := context.Background()

	courseID := seedCourse(t, s)
	if err := s.UpdateCourse(ctx, org.Course{ID: courseID, Title: "Advanced Networks"}); err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}

	course, _ := s.GetCourse(ctx, courseID)
	if course.Title != "Advanced Networks" {
		t.Errorf("Title = %q", course.Title)
	}
	if course.Code != "CS301" {
		t.Errorf("Code = %q, blank update must not clear it", course.Code)
	}
}

func TestMemoryStore_OutcomeNumbering(t *testing.T) {
	s := org.NewMemoryStore()
	ctx := context.Background()
	courseID := seedCourse(t, s)

	first, err := s.CreateOutcome(ctx, courseID, "Explain the TCP handshake")
	if err != nil {
		t.Fatalf("CreateOutcome: %v", err)
	}
	second, err := s.CreateOutcome(ctx, courseID, "Design a subnetting plan")
	if err != nil {
		t.Fatalf("CreateOutcome: %v", err)
	}
	if first.Number != 1 || second.Number != 2 {
		t.Fatalf("numbers = %d, %d, want 1, 2", first.Number, second.Number)
	}

	// Deleting the first outcome must not renumber or recycle.
	if err := s.DeleteOutcome(ctx, first.ID); err != nil {
		t.Fatalf("DeleteOutcome: %v", err)
	}
	third, err := s.CreateOutcome(ctx, courseID, "Evaluate routing protocols")
	if err != nil {
		t.Fatalf("CreateOutcome: %v", err)
	}
	if third.Number != 3 {
		t.Errorf("Number = %d, want 3 (max + 1, never reuse)", third.Number)
	}

	outcomes, err := s.ListOutcomes(ctx, courseID, false)
	if err != nil {
		t.Fatalf("ListOutcomes: %v", err)
	}
	if len(outcomes) != 2 || outcomes[0].Number != 2 || outcomes[1].Number != 3 {
		t.Errorf("outcomes = %+v, want 2 then 3", outcomes)
	}
}

func TestMemoryStore_ListOutcomes_ActiveOnly(t *testing.T) {
	s := org.NewMemoryStore()
	ctx := context.Background()
	courseID := seedCourse(t, s)

	kept, _ := s.CreateOutcome(ctx, courseID, "Active outcome")
	retired, _ := s.CreateOutcome(ctx, courseID, "Retired outcome")
	if err := s.UpdateOutcome(ctx, org.LearningOutcome{ID: retired.ID, Active: false}); err != nil {
		t.Fatalf("UpdateOutcome: %v", err)
	}

	active, err := s.ListOutcomes(ctx, courseID, true)
	if err != nil {
		t.Fatalf("ListOutcomes: %v", err)
	}
	if len(active) != 1 || active[0].ID != kept.ID {
		t.Errorf("active outcomes = %+v, want only the active one", active)
	}

	all, _ := s.ListOutcomes(ctx, courseID, false)
	if len(all) != 2 {
		t.Errorf("all outcomes = %d, want 2", len(all))
	}
}

func TestMemoryStore_DeleteCourse_CascadesOutcomes(t *testing.T) {
	s := org.NewMemoryStore()
	ctx := context.Background()
	courseID := seedCourse(t, s)

	o, _ := s.CreateOutcome(ctx, courseID, "Doomed outcome")
	if err := s.DeleteCourse(ctx, courseID); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}

	if err := s.DeleteOutcome(ctx, o.ID); !org.IsNotFound(err) {
		t.Errorf("outcome survived course deletion: %v", err)
	}
	if _, err := s.GetCourse(ctx, courseID); !org.IsNotFound(err) {
		t.Errorf("GetCourse after delete = %v, want not-found", err)
	}
}

func TestMemoryStore_NotFoundErrors(t *testing.T) {
	s := org.NewMemoryStore()
	ctx := context.Background()

	if _, err := s.GetCourse(ctx, "missing"); !org.IsNotFound(err) {
		t.Errorf("GetCourse = %v, want not-found", err)
	}
	if err := s.UpdateCourse(ctx, org.Course{ID: "missing", Title: "x"}); !org.IsNotFound(err) {
		t.Errorf("UpdateCourse = %v, want not-found", err)
	}
	if _, err := s.CreateOutcome(ctx, "missing", "desc"); !org.IsNotFound(err) {
		t.Errorf("CreateOutcome = %v, want not-found", err)
	}
}
