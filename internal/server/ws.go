package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	wsReadLimit   = 8 << 10
	wsTurnTimeout = 2 * time.Minute
)

// handleChatSocket runs a widget chat session over a WebSocket. Each
// connection is its own session; closing the socket ends it.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		writeError(w, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	conn.SetReadLimit(wsReadLimit)
	defer conn.CloseNow()

	sessionID := chatSession(r.URL.Query().Get("session_id"), r)
	defer s.engine.EndSession(sessionID)

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			// Normal close or client gone either way.
			return
		}

		// Same schema as the REST path; an invalid turn gets an error
		// payload instead of silently passing through.
		req, err := decodeChatRequest(data)
		if err != nil {
			if err := wsjson.Write(r.Context(), conn, map[string]string{"error": err.Error()}); err != nil {
				return
			}
			continue
		}

		turnCtx, cancel := context.WithTimeout(r.Context(), wsTurnTimeout)
		reply := s.engine.Chat(turnCtx, sessionID, req.Message)
		cancel()

		if err := wsjson.Write(r.Context(), conn, chatResponse{Role: "model", Text: reply}); err != nil {
			return
		}
	}
}
