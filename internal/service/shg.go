package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/model"
	"github.com/riyakoli232311/SHG-management/internal/repository"
)

type SHGService struct {
	shgRepo *repository.SHGRepository
	logger  *logrus.Logger
}

func NewSHGService(shgRepo *repository.SHGRepository, logger *logrus.Logger) *SHGService {
	return &SHGService{shgRepo: shgRepo, logger: logger}
}

// Setup creates the group profile. A user owns at most one SHG; a second
// setup attempt is rejected.
func (s *SHGService) Setup(ctx context.Context, userID uuid.UUID, req model.SHGRequest) (*model.SHG, error) {
	if req.Name == nil || *req.Name == "" {
		return nil, fmt.Errorf("%w: SHG name is required", ErrValidation)
	}

	if _, err := s.shgRepo.GetByUserID(ctx, userID); err == nil {
		return nil, fmt.Errorf("%w: SHG already set up", ErrConflict)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check SHG: %w", err)
	}

	now := time.Now()
	shg := &model.SHG{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      *req.Name,
		State:     "Rajasthan",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.State != nil {
		shg.State = *req.State
	}
	shg.RegistrationNumber = req.RegistrationNumber
	shg.Village = req.Village
	shg.Block = req.Block
	shg.District = req.District
	shg.FormationDate = req.FormationDate
	shg.BankName = req.BankName
	shg.BankAccount = req.BankAccount
	shg.IFSC = req.IFSC

	if err := s.shgRepo.Create(ctx, shg); err != nil {
		s.logger.WithError(err).Error("Failed to create SHG")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"shg_id": shg.ID,
		"name":   shg.Name,
	}).Info("SHG profile created")

	return shg, nil
}

func (s *SHGService) Get(ctx context.Context, userID uuid.UUID) (*model.SHG, error) {
	shg, err := s.shgRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: SHG not set up yet", ErrNotFound)
		}
		return nil, err
	}
	return shg, nil
}

func (s *SHGService) Update(ctx context.Context, userID uuid.UUID, req model.SHGRequest) (*model.SHG, error) {
	shg, err := s.shgRepo.Update(ctx, userID, req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: SHG not set up yet", ErrNotFound)
		}
		s.logger.WithError(err).Error("Failed to update SHG")
		return nil, err
	}

	s.logger.WithField("shg_id", shg.ID).Info("SHG profile updated")
	return shg, nil
}
