package server

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/xeipuuv/gojsonschema"
)

var errInvalidChatBody = errors.New("message is required and must be a non-empty string")

// chatRequestSchema validates widget turns before they reach the engine.
const chatRequestSchema = `{
	"type": "object",
	"required": ["message"],
	"properties": {
		"message": {"type": "string", "minLength": 1, "maxLength": 4000},
		"session_id": {"type": "string", "maxLength": 128}
	},
	"additionalProperties": false
}`

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Role string `json:"role"` // always "model", the widget's vocabulary
	Text string `json:"text"`
}

// handleChat serves one REST chat turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		writeError(w, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := decodeChatRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply := s.engine.Chat(r.Context(), chatSession(req.SessionID, r), req.Message)
	writeJSON(w, http.StatusOK, chatResponse{Role: "model", Text: reply})
}

func decodeChatRequest(body []byte) (chatRequest, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(chatRequestSchema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		return chatRequest{}, errInvalidChatBody
	}
	if !result.Valid() {
		return chatRequest{}, errInvalidChatBody
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return chatRequest{}, errInvalidChatBody
	}
	return req, nil
}

// chatSession derives a session key: the client-provided ID when present,
// otherwise the remote host, so widget turns from the same visitor still
// share history. The port is dropped; it changes per request.
func chatSession(id string, r *http.Request) string {
	if id != "" {
		return id
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
