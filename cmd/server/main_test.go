package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crs-edu/crs-backend/internal/httpapi"
	"github.com/crs-edu/crs-backend/internal/platform/config"
)

// wiredMux builds the server with in-memory dependencies.
func wiredMux(t *testing.T) *http.ServeMux {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.Database.URL = ""
	cfg.Cache.URL = ""
	cfg.TemplatePath = t.TempDir()

	deps, cleanup, err := buildDeps(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildDeps() error = %v", err)
	}
	t.Cleanup(cleanup)

	return httpapi.New(*deps).Routes()
}

func TestHealthEndpoints(t *testing.T) {
	mux := wiredMux(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "readyz returns 200",
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if strings.TrimSpace(rec.Body.String()) != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	mux := wiredMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without a session", rec.Code)
	}
}
