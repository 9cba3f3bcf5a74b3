package httpapi

import (
	"errors"
	"net/http"

	"github.com/crs-edu/crs-backend/internal/account"
	"github.com/crs-edu/crs-backend/internal/authz"
	"github.com/crs-edu/crs-backend/internal/respond"
	"github.com/crs-edu/crs-backend/internal/template"
)

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceResponseSessions, authz.ActionCreate, authz.ScopeOwn) {
		return
	}
	var req respond.Session
	if !decodeJSON(w, r, &req) {
		return
	}
	req.TeacherID = u.ID
	sess, err := s.sessions.Open(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceResponseSessions, authz.ActionRead, authz.ScopeOwn) {
		return
	}
	sessions, err := s.sessions.List(r.Context(), r.URL.Query().Get("course_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing sessions failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceResponseSessions, authz.ActionRead, authz.ScopeOwn) {
		return
	}
	sess, err := s.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceResponseSessions, authz.ActionUpdate, authz.ScopeOwn) {
		return
	}
	if err := s.sessions.Close(r.Context(), r.PathValue("id")); err != nil {
		writeSessionError(w, err)
		return
	}
	s.record(u.ID, "session.close", r.PathValue("id"))
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceResponseSessions, authz.ActionRead, authz.ScopeOwn) {
		return
	}
	var req respond.Response
	if !decodeJSON(w, r, &req) {
		return
	}
	req.SessionID = r.PathValue("id")
	req.StudentID = u.ID
	saved, err := s.sessions.Submit(r.Context(), req)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListResponses(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceResponseSessions, authz.ActionRead, authz.ScopeOwn) {
		return
	}
	responses, err := s.sessions.Responses(r.Context(), r.PathValue("id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"responses": responses})
}

// handleSessionLive upgrades to a websocket and streams submissions.
func (s *Server) handleSessionLive(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceResponseSessions, authz.ActionRead, authz.ScopeOwn) {
		return
	}
	sessionID := r.PathValue("id")
	if _, err := s.sessions.Get(r.Context(), sessionID); err != nil {
		writeSessionError(w, err)
		return
	}
	s.sessions.Hub().ServeWS(w, r, sessionID)
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case respond.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, respond.ErrSessionClosed):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceTemplates, authz.ActionRead, authz.ScopeOwn) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": s.templates.All()})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceTemplates, authz.ActionRead, authz.ScopeOwn) {
		return
	}
	tmpl, ok := s.templates.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (s *Server) handleImportTemplate(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceTemplates, authz.ActionCreate, authz.ScopeOwn) {
		return
	}

	body, err := readBody(r, 1<<20)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body failed")
		return
	}
	tmpl, err := template.ValidateImport(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.templates.Add(*tmpl); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, tmpl)
}
