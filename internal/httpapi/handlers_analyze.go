package httpapi

import (
	"io"
	"net/http"

	"github.com/crs-edu/crs-backend/internal/account"
	"github.com/crs-edu/crs-backend/internal/authz"
	"github.com/crs-edu/crs-backend/internal/clomap"
)

const maxUploadBytes = 20 << 20

// handleAnalyze runs the full mapping pipeline on an uploaded assessment
// document. Analysis failures are part of the result payload, not HTTP
// errors: a malformed model reply still returns 200 with an empty result.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceOutcomes, authz.ActionRead, authz.ScopeOwn) {
		return
	}

	if s.usage != nil {
		allowed, err := s.usage.Allow(u.UniversityID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "usage check failed")
			return
		}
		if !allowed {
			writeError(w, http.StatusTooManyRequests, "university AI budget exhausted")
			return
		}
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart upload with a file field")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload failed")
		return
	}

	courseID := r.PathValue("id")
	stored, err := s.orgs.ListOutcomes(r.Context(), courseID, true)
	if err != nil {
		writeOrgError(w, err)
		return
	}
	outcomes := make([]clomap.CLO, 0, len(stored))
	for _, o := range stored {
		outcomes = append(outcomes, clomap.CLO{Number: o.Number, Description: o.Description, Active: o.Active})
	}

	extraction := s.pipeline.ExtractQuestions(r.Context(), header.Filename, data)
	if !extraction.Success {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   extraction.Err,
		})
		return
	}

	result := s.pipeline.Process(r.Context(), extraction.Text, outcomes)

	if s.usage != nil {
		// Providers do not expose token counts through the pipeline
		// surface, so charge a character-based estimate.
		if err := s.usage.Record(u.UniversityID, len(extraction.Text)/4); err != nil {
			writeError(w, http.StatusInternalServerError, "usage recording failed")
			return
		}
	}

	s.record(u.ID, "analysis.run", courseID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  result,
	})
}

// handleExportReport renders a previously obtained analysis result as an
// Excel workbook. Nothing is stored server-side.
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request, u *account.User) {
	if !require(w, u, authz.ResourceReports, authz.ActionRead, authz.ScopeOwn) {
		return
	}

	var result clomap.Result
	if !decodeJSON(w, r, &result) {
		return
	}

	data, err := clomap.ExportXLSX(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="clo-mapping-report.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
