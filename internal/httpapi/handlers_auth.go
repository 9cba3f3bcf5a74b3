package httpapi

import (
	"errors"
	"net/http"

	"github.com/crs-edu/crs-backend/internal/account"
	"github.com/crs-edu/crs-backend/internal/authz"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	token, u, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  u,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ *account.User) {
	if err := s.accounts.Logout(r.Context(), bearerToken(r)); err != nil {
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, u *account.User) {
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleNavigation(w http.ResponseWriter, _ *http.Request, u *account.User) {
	writeJSON(w, http.StatusOK, map[string]any{
		"items": authz.NavigationItems(u.Role),
	})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceUsers, authz.ActionCreate, authz.ScopeUniversity) {
		return
	}

	var nu account.NewUser
	if !decodeJSON(w, r, &nu) {
		return
	}

	created, err := s.accounts.CreateUser(r.Context(), u.Role, nu)
	if err != nil {
		if errors.Is(err, account.ErrForbidden) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.record(u.ID, "user.create", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceUsers, authz.ActionRead, authz.ScopeUniversity) {
		return
	}

	users, err := s.accounts.ListUsers(r.Context(), r.URL.Query().Get("university_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing users failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceUsers, authz.ActionDelete, authz.ScopeUniversity) {
		return
	}

	err := s.accounts.DeleteUser(r.Context(), u.Role, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, account.ErrForbidden):
			writeError(w, http.StatusForbidden, err.Error())
		case account.IsNotFound(err):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "deleting user failed")
		}
		return
	}
	s.record(u.ID, "user.delete", r.PathValue("id"))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
