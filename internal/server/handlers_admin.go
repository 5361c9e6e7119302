package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/we-zayed/results-portal/internal/ingest"
	"github.com/we-zayed/results-portal/internal/roster"
)

// handleImportUpload ingests an uploaded xlsx workbook.
func (s *Server) handleImportUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, _, err := r.FormFile("workbook")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing workbook file field")
		return
	}
	defer file.Close()

	result, err := s.pipeline.IngestReader(file)
	if err != nil {
		slog.Error("workbook ingest failed", "error", err)
		writeError(w, http.StatusUnprocessableEntity, "could not read the workbook")
		return
	}

	s.applyResult(w, r, result)
}

type remoteImportRequest struct {
	URL        string `json:"url"`
	Format     string `json:"format,omitempty"`      // "xlsx", "csv", or empty for auto
	GradeLevel string `json:"grade_level,omitempty"` // required for csv payloads
}

// handleImportRemote fetches a published sheet and ingests it. Failures
// leave the active dataset untouched; there is no automatic retry.
func (s *Server) handleImportRemote(w http.ResponseWriter, r *http.Request) {
	var req remoteImportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	level, _ := roster.ParseGradeLevel(req.GradeLevel)

	result, err := s.fetcher.Fetch(r.Context(), req.URL, ingest.RemoteFormat(req.Format), level)
	if err != nil {
		// Caller mistakes (bad URL, disallowed host, missing grade level)
		// are not the remote source's fault.
		if errors.Is(err, ingest.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("remote import failed", "url", req.URL, "error", err)
		writeError(w, http.StatusBadGateway, "could not fetch or read the remote sheet")
		return
	}

	s.applyResult(w, r, result)
}

// applyResult replaces the active dataset when the run produced records,
// and reports "nothing usable" otherwise so the previous dataset survives.
func (s *Server) applyResult(w http.ResponseWriter, r *http.Request, result ingest.Result) {
	if result.Empty() {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "no usable rows found",
			"sheets": result.Sheets,
		})
		return
	}

	if err := s.store.ReplaceAll(r.Context(), result.Students); err != nil {
		slog.Error("dataset replacement failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store the imported dataset")
		return
	}

	if s.snapshot != nil {
		if err := s.snapshot.Save(r.Context(), result.Students); err != nil {
			slog.Warn("snapshot save failed", "error", err)
		}
	}

	slog.Info("dataset imported", "students", len(result.Students))
	writeJSON(w, http.StatusOK, map[string]any{
		"imported": len(result.Students),
		"sheets":   result.Sheets,
	})
}
