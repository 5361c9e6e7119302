// Package server exposes the portal over HTTP: visitor result lookup,
// password-gated spreadsheet import, and the chat widget backend.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/we-zayed/results-portal/internal/assistant"
	"github.com/we-zayed/results-portal/internal/ingest"
	"github.com/we-zayed/results-portal/internal/roster"
)

// Server holds the portal's collaborators. Store and Renderer are injected
// interfaces; Snapshot and Assistant are optional and nil-safe.
type Server struct {
	store    roster.Store
	pipeline *ingest.Pipeline
	fetcher  *ingest.Fetcher
	snapshot *roster.Snapshot
	engine   *assistant.Engine
	renderer DocumentRenderer
	gate     *AdminGate

	maxUploadBytes int64
}

// Options configures a Server.
type Options struct {
	Store          roster.Store
	Pipeline       *ingest.Pipeline
	Fetcher        *ingest.Fetcher
	Snapshot       *roster.Snapshot // optional
	Engine         *assistant.Engine
	Renderer       DocumentRenderer // defaults to the HTML renderer
	Gate           *AdminGate
	MaxUploadBytes int64
}

// New creates a Server.
func New(opts Options) *Server {
	renderer := opts.Renderer
	if renderer == nil {
		renderer = NewHTMLRenderer()
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 16 << 20
	}
	return &Server{
		store:          opts.Store,
		pipeline:       opts.Pipeline,
		fetcher:        opts.Fetcher,
		snapshot:       opts.Snapshot,
		engine:         opts.Engine,
		renderer:       renderer,
		gate:           opts.Gate,
		maxUploadBytes: maxUpload,
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/results", s.handleLookup)
	mux.HandleFunc("GET /api/results/{id}/document", s.handleDocument)

	mux.HandleFunc("POST /api/admin/import", s.requireAdmin(s.handleImportUpload))
	mux.HandleFunc("POST /api/admin/import/remote", s.requireAdmin(s.handleImportRemote))

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /ws/chat", s.handleChatSocket)

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Count(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
