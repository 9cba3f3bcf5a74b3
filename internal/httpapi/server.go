// Package httpapi exposes the course response system over HTTP. Handlers
// are thin: they authenticate, check permissions, and delegate to the
// domain packages.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/crs-edu/crs-backend/internal/account"
	"github.com/crs-edu/crs-backend/internal/ai"
	"github.com/crs-edu/crs-backend/internal/audit"
	"github.com/crs-edu/crs-backend/internal/clomap"
	"github.com/crs-edu/crs-backend/internal/org"
	"github.com/crs-edu/crs-backend/internal/respond"
	"github.com/crs-edu/crs-backend/internal/template"
)

// Deps carries everything the server needs. Checks run on /readyz; a nil
// map means always ready.
type Deps struct {
	Accounts  *account.Service
	Orgs      org.Store
	Sessions  *respond.Service
	Templates *template.Loader
	Pipeline  *clomap.Pipeline
	Usage     ai.UsageTracker
	Audit     audit.Logger
	Checks    map[string]func(context.Context) error
}

// Server holds handler state.
type Server struct {
	accounts  *account.Service
	orgs      org.Store
	sessions  *respond.Service
	templates *template.Loader
	pipeline  *clomap.Pipeline
	usage     ai.UsageTracker
	audit     audit.Logger
	checks    map[string]func(context.Context) error
}

// New creates a server from its dependencies.
func New(d Deps) *Server {
	if d.Audit == nil {
		d.Audit = audit.NopLogger{}
	}
	return &Server{
		accounts:  d.Accounts,
		orgs:      d.Orgs,
		sessions:  d.Sessions,
		templates: d.Templates,
		pipeline:  d.Pipeline,
		usage:     d.Usage,
		audit:     d.Audit,
		checks:    d.Checks,
	}
}

// record writes an audit event. Audit failures are logged, never surfaced
// to the client.
func (s *Server) record(actorID, action, resourceID string) {
	if err := s.audit.Log(audit.Event{ActorID: actorID, Action: action, ResourceID: resourceID}); err != nil {
		slog.Warn("audit logging failed", "action", action, "error", err)
	}
}

// Routes builds the full route table.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.withUser(s.handleLogout))
	mux.HandleFunc("GET /api/me", s.withUser(s.handleMe))
	mux.HandleFunc("GET /api/navigation", s.withUser(s.handleNavigation))

	mux.HandleFunc("POST /api/users", s.withUser(s.handleCreateUser))
	mux.HandleFunc("GET /api/users", s.withUser(s.handleListUsers))
	mux.HandleFunc("DELETE /api/users/{id}", s.withUser(s.handleDeleteUser))

	mux.HandleFunc("GET /api/universities", s.withUser(s.handleListUniversities))
	mux.HandleFunc("POST /api/universities", s.withUser(s.handleCreateUniversity))
	mux.HandleFunc("GET /api/universities/{id}/faculties", s.withUser(s.handleListFaculties))
	mux.HandleFunc("POST /api/faculties", s.withUser(s.handleCreateFaculty))
	mux.HandleFunc("GET /api/faculties/{id}/departments", s.withUser(s.handleListDepartments))
	mux.HandleFunc("POST /api/departments", s.withUser(s.handleCreateDepartment))

	mux.HandleFunc("GET /api/courses", s.withUser(s.handleListCourses))
	mux.HandleFunc("POST /api/courses", s.withUser(s.handleCreateCourse))
	mux.HandleFunc("GET /api/courses/{id}", s.withUser(s.handleGetCourse))
	mux.HandleFunc("PUT /api/courses/{id}", s.withUser(s.handleUpdateCourse))
	mux.HandleFunc("DELETE /api/courses/{id}", s.withUser(s.handleDeleteCourse))

	mux.HandleFunc("GET /api/courses/{id}/outcomes", s.withUser(s.handleListOutcomes))
	mux.HandleFunc("POST /api/courses/{id}/outcomes", s.withUser(s.handleCreateOutcome))
	mux.HandleFunc("PUT /api/outcomes/{id}", s.withUser(s.handleUpdateOutcome))
	mux.HandleFunc("DELETE /api/outcomes/{id}", s.withUser(s.handleDeleteOutcome))

	mux.HandleFunc("POST /api/courses/{id}/analyze", s.withUser(s.handleAnalyze))
	mux.HandleFunc("POST /api/reports/export", s.withUser(s.handleExportReport))

	mux.HandleFunc("GET /api/templates", s.withUser(s.handleListTemplates))
	mux.HandleFunc("GET /api/templates/{id}", s.withUser(s.handleGetTemplate))
	mux.HandleFunc("POST /api/templates/import", s.withUser(s.handleImportTemplate))

	mux.HandleFunc("POST /api/sessions", s.withUser(s.handleOpenSession))
	mux.HandleFunc("GET /api/sessions", s.withUser(s.handleListSessions))
	mux.HandleFunc("GET /api/sessions/{id}", s.withUser(s.handleGetSession))
	mux.HandleFunc("POST /api/sessions/{id}/close", s.withUser(s.handleCloseSession))
	mux.HandleFunc("POST /api/sessions/{id}/responses", s.withUser(s.handleSubmitResponse))
	mux.HandleFunc("GET /api/sessions/{id}/responses", s.withUser(s.handleListResponses))
	mux.HandleFunc("GET /api/sessions/{id}/live", s.withUser(s.handleSessionLive))

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"failed": name,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
