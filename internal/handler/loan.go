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

type LoanHandler struct {
	loanService      *service.LoanService
	repaymentService *service.RepaymentService
	logger           *logrus.Logger
}

func NewLoanHandler(loanService *service.LoanService, repaymentService *service.RepaymentService, logger *logrus.Logger) *LoanHandler {
	return &LoanHandler{
		loanService:      loanService,
		repaymentService: repaymentService,
		logger:           logger,
	}
}

func (h *LoanHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.Disburse).Methods("POST")
	router.HandleFunc("", h.List).Methods("GET")
	router.HandleFunc("/{loanId}", h.Get).Methods("GET")
	router.HandleFunc("/{loanId}", h.Update).Methods("PUT")
	router.HandleFunc("/{loanId}/schedule", h.Schedule).Methods("GET")
}

func (h *LoanHandler) Disburse(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	var req model.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	loan, err := h.loanService.Disburse(r.Context(), shgID, req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusCreated, loan)
}

// List supports ?member_id= or ?status=.
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	var filter model.LoanFilter
	query := r.URL.Query()

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

	list, err := h.loanService.List(r.Context(), shgID, filter)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"data":           list.Loans,
		"totalDisbursed": list.TotalDisbursed,
	})
}

func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid loan ID")
		return
	}

	loan, err := h.loanService.Get(r.Context(), shgID, loanID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, loan)
}

func (h *LoanHandler) Update(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid loan ID")
		return
	}

	var req model.UpdateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	loan, err := h.loanService.Update(r.Context(), shgID, loanID, req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, loan)
}

// Schedule returns the loan's installments with derived statuses.
func (h *LoanHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid loan ID")
		return
	}

	if _, err := h.loanService.Get(r.Context(), shgID, loanID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	list, err := h.repaymentService.List(r.Context(), shgID, model.RepaymentFilter{LoanID: &loanID})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, list.Repayments)
}
