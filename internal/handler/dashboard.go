package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/service"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *logrus.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, logger: logger}
}

func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.Stats).Methods("GET")
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	stats, err := h.dashboardService.Stats(r.Context(), shgID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, stats)
}
