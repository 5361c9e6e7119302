package server

import (
	"net/http"
	"strings"

	"github.com/we-zayed/results-portal/internal/roster"
)

// handleLookup serves the visitor search: national ID plus grade level.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	nid := digits(r.URL.Query().Get("national_id"))
	if len(nid) < 10 {
		writeError(w, http.StatusBadRequest, "national_id must contain at least 10 digits")
		return
	}

	level, ok := roster.ParseGradeLevel(r.URL.Query().Get("grade_level"))
	if !ok {
		writeError(w, http.StatusBadRequest, "grade_level must be 1 or 2")
		return
	}

	student, found, err := s.store.Lookup(r.Context(), nid, level)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "no student with this national ID in the selected grade")
		return
	}

	writeJSON(w, http.StatusOK, student)
}

// handleDocument renders one student's result sheet via the injected
// renderer.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	student, found, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "unknown result id")
		return
	}

	w.Header().Set("Content-Type", s.renderer.ContentType())
	if err := s.renderer.RenderResult(w, student); err != nil {
		// Headers are already out; nothing useful left to send.
		return
	}
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
