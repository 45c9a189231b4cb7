package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/model"
	"github.com/riyakoli232311/SHG-management/internal/service"
)

type ChatHandler struct {
	assistant *service.AssistantService
	logger    *logrus.Logger
}

func NewChatHandler(assistant *service.AssistantService, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{assistant: assistant, logger: logger}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.Chat).Methods("POST")
	router.HandleFunc("/history/{sessionId}", h.History).Methods("GET")
	router.HandleFunc("/history/{sessionId}", h.ClearHistory).Methods("DELETE")
	router.HandleFunc("/quick-reply", h.QuickReplies).Methods("POST")
	router.HandleFunc("/context", h.Context).Methods("GET")
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.assistant.Chat(r.Context(), shgID, req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, resp)
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	session, err := h.assistant.History(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"history":   session.History,
			"createdAt": session.CreatedAt,
		},
	})
}

func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	if err := h.assistant.ClearHistory(r.Context(), sessionID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondMessage(w, http.StatusOK, "Conversation history cleared")
}

func (h *ChatHandler) QuickReplies(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]any{
		"quickReplies": h.assistant.QuickReplies(),
	})
}

// Context exposes the raw snapshot the assistant answers from.
func (h *ChatHandler) Context(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	stats, err := h.assistant.Context(r.Context(), shgID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, stats)
}
