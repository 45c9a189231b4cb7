package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/service"
)

type ReportHandler struct {
	reportService *service.ReportService
	logger        *logrus.Logger
}

func NewReportHandler(reportService *service.ReportService, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{reportService: reportService, logger: logger}
}

func (h *ReportHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/export", h.Export).Methods("GET")
}

// Export streams the group's financial report as XML.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	report, err := h.reportService.BuildXML(r.Context(), shgID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", `attachment; filename="shg-report.xml"`)
	w.WriteHeader(http.StatusOK)
	w.Write(report)
}
