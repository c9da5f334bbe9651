package server

import (
	"encoding/json"
	"net/http"

	"girlmathbackend/internal/ai"
)

type chatRequest struct {
	Message     string       `json:"message"`
	ChatHistory []ai.Message `json:"chat_history"`
}

type chatResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Role    string `json:"role"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "chat service is not configured")
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message must not be empty")
		return
	}

	reply, err := s.chat.Send(r.Context(), req.Message, req.ChatHistory)
	if err != nil {
		s.log.Error().Err(err).Msg("chat proxy failed")
		writeJSON(w, http.StatusOK, chatResponse{
			Success: false,
			Message: "Sorry, I encountered an error: " + err.Error(),
			Role:    "assistant",
			Error:   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Success: true, Message: reply, Role: "assistant"})
}
