package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/model"
	"github.com/riyakoli232311/SHG-management/internal/service"
)

type SHGHandler struct {
	shgService *service.SHGService
	logger     *logrus.Logger
}

func NewSHGHandler(shgService *service.SHGService, logger *logrus.Logger) *SHGHandler {
	return &SHGHandler{shgService: shgService, logger: logger}
}

func (h *SHGHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/setup", h.Setup).Methods("POST")
	router.HandleFunc("", h.Get).Methods("GET")
	router.HandleFunc("", h.Update).Methods("PUT")
}

func (h *SHGHandler) Setup(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req model.SHGRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	shg, err := h.shgService.Setup(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusCreated, shg)
}

func (h *SHGHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	shg, err := h.shgService.Get(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, shg)
}

func (h *SHGHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req model.SHGRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	shg, err := h.shgService.Update(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, shg)
}
