package httpapi

import (
	"net/http"
	"strconv"

	"github.com/crs-edu/crs-backend/internal/account"
	"github.com/crs-edu/crs-backend/internal/authz"
	"github.com/crs-edu/crs-backend/internal/org"
)

func (s *Server) handleListUniversities(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceUniversities, authz.ActionRead, authz.ScopeAll) {
		return
	}
	unis, err := s.orgs.ListUniversities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing universities failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"universities": unis})
}

func (s *Server) handleCreateUniversity(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceUniversities, authz.ActionCreate, authz.ScopeAll) {
		return
	}
	var uni org.University
	if !decodeJSON(w, r, &uni) {
		return
	}
	id, err := s.orgs.CreateUniversity(r.Context(), uni)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListFaculties(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceFaculties, authz.ActionRead, authz.ScopeUniversity) {
		return
	}
	faculties, err := s.orgs.ListFaculties(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing faculties failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"faculties": faculties})
}

func (s *Server) handleCreateFaculty(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceFaculties, authz.ActionCreate, authz.ScopeUniversity) {
		return
	}
	var f org.Faculty
	if !decodeJSON(w, r, &f) {
		return
	}
	id, err := s.orgs.CreateFaculty(r.Context(), f)
	if err != nil {
		writeOrgError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListDepartments(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceDepartments, authz.ActionRead, authz.ScopeFaculty) {
		return
	}
	departments, err := s.orgs.ListDepartments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing departments failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"departments": departments})
}

func (s *Server) handleCreateDepartment(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceDepartments, authz.ActionCreate, authz.ScopeFaculty) {
		return
	}
	var d org.Department
	if !decodeJSON(w, r, &d) {
		return
	}
	id, err := s.orgs.CreateDepartment(r.Context(), d)
	if err != nil {
		writeOrgError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceCourses, authz.ActionRead, authz.ScopeOwn) {
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	courses, total, err := s.orgs.ListCourses(r.Context(), q.Get("department_id"), org.ListParams{
		Search:  q.Get("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing courses failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"courses": courses,
		"total":   total,
	})
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceCourses, authz.ActionCreate, authz.ScopeDepartment) {
		return
	}
	var c org.Course
	if !decodeJSON(w, r, &c) {
		return
	}
	id, err := s.orgs.CreateCourse(r.Context(), c)
	if err != nil {
		writeOrgError(w, err)
		return
	}
	s.record(u.ID, "course.create", id)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceCourses, authz.ActionRead, authz.ScopeOwn) {
		return
	}
	course, err := s.orgs.GetCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		writeOrgError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceCourses, authz.ActionUpdate, authz.ScopeDepartment) {
		return
	}
	var c org.Course
	if !decodeJSON(w, r, &c) {
		return
	}
	c.ID = r.PathValue("id")
	if err := s.orgs.UpdateCourse(r.Context(), c); err != nil {
		writeOrgError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceCourses, authz.ActionDelete, authz.ScopeDepartment) {
		return
	}
	if err := s.orgs.DeleteCourse(r.Context(), r.PathValue("id")); err != nil {
		writeOrgError(w, err)
		return
	}
	s.record(u.ID, "course.delete", r.PathValue("id"))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListOutcomes(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceOutcomes, authz.ActionRead, authz.ScopeOwn) {
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"
	outcomes, err := s.orgs.ListOutcomes(r.Context(), r.PathValue("id"), activeOnly)
	if err != nil {
		writeOrgError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outcomes": outcomes})
}

func (s *Server) handleCreateOutcome(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceOutcomes, authz.ActionCreate, authz.ScopeOwn) {
		return
	}
	var req struct {
		Description string `json:"description"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	outcome, err := s.orgs.CreateOutcome(r.Context(), r.PathValue("id"), req.Description)
	if err != nil {
		writeOrgError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}

func (s *Server) handleUpdateOutcome(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceOutcomes, authz.ActionUpdate, authz.ScopeOwn) {
		return
	}
	var o org.LearningOutcome
	if !decodeJSON(w, r, &o) {
		return
	}
	o.ID = r.PathValue("id")
	if err := s.orgs.UpdateOutcome(r.Context(), o); err != nil {
		writeOrgError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteOutcome(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceOutcomes, authz.ActionDelete, authz.ScopeOwn) {
		return
	}
	if err := s.orgs.DeleteOutcome(r.Context(), r.PathValue("id")); err != nil {
		writeOrgError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeOrgError(w http.ResponseWriter, err error) {
	if org.IsNotFound(err) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}
