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

type MemberHandler struct {
	memberService *service.MemberService
	logger        *logrus.Logger
}

func NewMemberHandler(memberService *service.MemberService, logger *logrus.Logger) *MemberHandler {
	return &MemberHandler{memberService: memberService, logger: logger}
}

func (h *MemberHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.Create).Methods("POST")
	router.HandleFunc("", h.List).Methods("GET")
	router.HandleFunc("/{memberId}", h.Get).Methods("GET")
	router.HandleFunc("/{memberId}", h.Update).Methods("PUT")
	router.HandleFunc("/{memberId}", h.Delete).Methods("DELETE")
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	var req model.MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	member, err := h.memberService.Create(r.Context(), shgID, req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusCreated, member)
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	members, err := h.memberService.List(r.Context(), shgID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	if members == nil {
		members = []model.Member{}
	}
	respondData(w, http.StatusOK, members)
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	memberID, err := uuid.Parse(mux.Vars(r)["memberId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	member, err := h.memberService.Get(r.Context(), shgID, memberID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, member)
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	memberID, err := uuid.Parse(mux.Vars(r)["memberId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	var req model.MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	member, err := h.memberService.Update(r.Context(), shgID, memberID, req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, member)
}

func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	shgID, ok := shgIDFromContext(r)
	if !ok {
		respondError(w, http.StatusForbidden, "SHG profile not set up yet")
		return
	}

	memberID, err := uuid.Parse(mux.Vars(r)["memberId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	if err := h.memberService.Delete(r.Context(), shgID, memberID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondMessage(w, http.StatusOK, "Member deleted")
}
