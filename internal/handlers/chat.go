package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"flowfit-backend/internal/models"
)

// Chat sends one message to the coach. Coach failures still return 200 with
// the synthesized assistant reply.
func (h *SessionHandler) Chat(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	st, ex, err := h.workout.SendMessage(r.Context(), id, req.Message)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: ex.Reply, Messages: st.Messages})
}
