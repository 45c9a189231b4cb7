package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/model"
	"github.com/riyakoli232311/SHG-management/internal/service"
)

type RepaymentHandler struct {
	repaymentService *service.RepaymentService
	logger           *logrus.Logger
}

func NewRepaymentHandler(repaymentService *service.RepaymentService, logger *logrus.Logger) *RepaymentHandler {
	return &RepaymentHandler{repaymentService: repaymentService, logger: logger}
}

func (h *RepaymentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.List).Methods("GET")
	router.HandleFunc("/{repaymentId}/pay", h.Pay).Methods("POST")
}

// List supports ?loan_id=, ?member_id= or ?status=. The status filter matches
// the derived status, so status=overdue works.
func (h *RepaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	var filter model.RepaymentFilter
	query := r.URL.Query()

	if raw := query.Get("loan_id"); raw != "" {
		loanID, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid loan ID")
			return
		}
		filter.LoanID = &loanID
	}
	if raw := query.Get("member_id"); raw != "" {
		memberID, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid member ID")
			return
		}
		filter.MemberID = &memberID
	}
	if raw := query.Get("status"); raw != "" {
		filter.Status = &raw
	}

	list, err := h.repaymentService.List(r.Context(), shgID, filter)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"data":           list.Repayments,
		"totalCollected": list.TotalCollected,
		"pendingCount":   list.PendingCount,
		"overdueCount":   list.OverdueCount,
	})
}

func (h *RepaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	repaymentID, err := uuid.Parse(mux.Vars(r)["repaymentId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid repayment ID")
		return
	}

	var req model.PayRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}

	repayment, err := h.repaymentService.Pay(r.Context(), shgID, repaymentID, req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, repayment)
}
