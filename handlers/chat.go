package handlers

import (
	"net/http"

	"github.com/ray-remotestate/pizzeria/chat"
)

type chatRequest struct {
	Message string         `json:"message"`
	History []chat.Message `json:"history"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.Assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reply, err := h.Assistant.SendMessage(r.Context(), req.Message, req.History)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": reply})
}
