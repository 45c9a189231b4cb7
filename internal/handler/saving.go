package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/model"
	"github.com/riyakoli232311/SHG-management/internal/repository"
	"github.com/riyakoli232311/SHG-management/internal/service"
)

type SavingHandler struct {
	savingService *service.SavingService
	logger        *logrus.Logger
}

func NewSavingHandler(savingService *service.SavingService, logger *logrus.Logger) *SavingHandler {
	return &SavingHandler{savingService: savingService, logger: logger}
}

func (h *SavingHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.Record).Methods("POST")
	router.HandleFunc("", h.List).Methods("GET")
	router.HandleFunc("/{savingId}", h.Delete).Methods("DELETE")
}

func (h *SavingHandler) Record(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	var req model.SavingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	saving, err := h.savingService.Record(r.Context(), shgID, req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusCreated, saving)
}

// List supports ?member_id=, or ?month=&year= together.
func (h *SavingHandler) List(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	var filter repository.SavingFilter
	query := r.URL.Query()

	if raw := query.Get("member_id"); raw != "" {
		memberID, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid member ID")
			return
		}
		filter.MemberID = &memberID
	}
	if raw := query.Get("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		filter.Month = &month
	}
	if raw := query.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		filter.Year = &year
	}

	list, err := h.savingService.List(r.Context(), shgID, filter)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    list.Savings,
		"total":   list.Total,
	})
}

func (h *SavingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	savingID, err := uuid.Parse(mux.Vars(r)["savingId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid saving ID")
		return
	}

	if err := h.savingService.Delete(r.Context(), shgID, savingID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondMessage(w, http.StatusOK, "Saving deleted")
}
