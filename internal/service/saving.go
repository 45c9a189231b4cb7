package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/model"
	"github.com/riyakoli232311/SHG-management/internal/repository"
)

type SavingService struct {
	savingRepo *repository.SavingRepository
	memberRepo *repository.MemberRepository
	logger     *logrus.Logger
}

func NewSavingService(
	savingRepo *repository.SavingRepository,
	memberRepo *repository.MemberRepository,
	logger *logrus.Logger,
) *SavingService {
	return &SavingService{savingRepo: savingRepo, memberRepo: memberRepo, logger: logger}
}

// Record stores a monthly contribution. A repeat entry for the same member
// and month replaces the earlier amount.
func (s *SavingService) Record(ctx context.Context, shgID uuid.UUID, req model.SavingRequest) (*model.Saving, error) {
	if req.MemberID == uuid.Nil {
		return nil, fmt.Errorf("%w: member_id is required", ErrValidation)
	}
	if req.Amount == nil || !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if req.Month < 1 || req.Month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", ErrValidation)
	}
	if req.Year < 2000 {
		return nil, fmt.Errorf("%w: year is invalid", ErrValidation)
	}

	ok, err := s.memberRepo.ExistsInSHG(ctx, shgID, req.MemberID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: member not found", ErrNotFound)
	}

	now := time.Now()
	saving := &model.Saving{
		ID:          uuid.New(),
		SHGID:       shgID,
		MemberID:    req.MemberID,
		Month:       req.Month,
		Year:        req.Year,
		Amount:      *req.Amount,
		PaymentMode: "cash",
		Date:        now,
		CreatedAt:   now,
	}
	if req.PaymentMode != nil {
		saving.PaymentMode = *req.PaymentMode
	}
	if req.Date != nil {
		saving.Date = *req.Date
	}

	out, err := s.savingRepo.Upsert(ctx, saving)
	if err != nil {
		s.logger.WithError(err).Error("Failed to record saving")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"member_id": req.MemberID,
		"month":     req.Month,
		"year":      req.Year,
		"amount":    req.Amount.String(),
	}).Info("Saving recorded")

	return out, nil
}

// List returns contributions with their running total.
func (s *SavingService) List(ctx context.Context, shgID uuid.UUID, filter repository.SavingFilter) (*model.SavingList, error) {
	savings, err := s.savingRepo.List(ctx, shgID, filter)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, saving := range savings {
		total = total.Add(saving.Amount)
	}

	if savings == nil {
		savings = []model.Saving{}
	}
	return &model.SavingList{Savings: savings, Total: total}, nil
}

func (s *SavingService) Delete(ctx context.Context, shgID, id uuid.UUID) error {
	if err := s.savingRepo.Delete(ctx, shgID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: saving not found", ErrNotFound)
		}
		s.logger.WithError(err).Error("Failed to delete saving")
		return err
	}

	s.logger.WithField("saving_id", id).Info("Saving deleted")
	return nil
}
