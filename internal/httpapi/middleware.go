package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crs-edu/crs-backend/internal/account"
	"github.com/crs-edu/crs-backend/internal/authz"
)

// withUser resolves the session token and hands the user to the wrapped
// handler. Requests without a valid session get 401.
func (s *Server) withUser(next func(http.ResponseWriter, *http.Request, *account.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}

		u, err := s.accounts.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, account.ErrSessionNotFound) || account.IsNotFound(err) {
				writeError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			slog.Error("session resolution failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		next(w, r, u)
	}
}

// bearerToken pulls the token from the Authorization header or the
// session cookie.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return tok
		}
	}
	if c, err := r.Cookie("crs_session"); err == nil {
		return c.Value
	}
	return ""
}

// require writes a 403 and returns false unless the user's role grants
// the action on the resource at the given scope.
func require(w http.ResponseWriter, u *account.User, resource string, action authz.Action, scope authz.Scope) bool {
	if !authz.HasPermission(u.Role, resource, action, scope) {
		writeError(w, http.StatusForbidden, "permission denied")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readBody reads at most limit bytes of the request body.
func readBody(r *http.Request, limit int64) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, limit))
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
