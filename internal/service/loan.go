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

	"github.com/riyakoli232311/SHG-management/internal/emi"
	"github.com/riyakoli232311/SHG-management/internal/model"
)

// Defaults applied when a disbursement omits terms.
var defaultInterestRate = decimal.NewFromInt(2)

const defaultTenureMonths = 12

// LoanStore is the persistence surface the loan service needs.
type LoanStore interface {
	CreateWithSchedule(ctx context.Context, loan *model.Loan, schedule []model.Repayment) error
	GetByID(ctx context.Context, shgID, id uuid.UUID) (*model.Loan, error)
	List(ctx context.Context, shgID uuid.UUID, filter model.LoanFilter) ([]model.Loan, error)
	Update(ctx context.Context, shgID, id uuid.UUID, req model.UpdateLoanRequest) (*model.Loan, error)
}

// MemberChecker verifies roster membership before money moves.
type MemberChecker interface {
	ExistsInSHG(ctx context.Context, shgID, memberID uuid.UUID) (bool, error)
}

type LoanService struct {
	loans   LoanStore
	members MemberChecker
	logger  *logrus.Logger
}

func NewLoanService(loans LoanStore, members MemberChecker, logger *logrus.Logger) *LoanService {
	return &LoanService{loans: loans, members: members, logger: logger}
}

// Disburse creates a loan and its full EMI schedule atomically. The schedule
// is fixed at disbursement: one installment per month of tenure, each for the
// computed EMI amount.
func (s *LoanService) Disburse(ctx context.Context, shgID uuid.UUID, req model.CreateLoanRequest) (*model.Loan, error) {
	if req.MemberID == uuid.Nil {
		return nil, fmt.Errorf("%w: member_id is required", ErrValidation)
	}
	if req.LoanAmount == nil || !req.LoanAmount.IsPositive() {
		return nil, fmt.Errorf("%w: loan_amount must be positive", ErrValidation)
	}

	rate := defaultInterestRate
	if req.InterestRate != nil {
		rate = *req.InterestRate
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("%w: interest_rate cannot be negative", ErrValidation)
	}

	tenure := defaultTenureMonths
	if req.TenureMonths != nil {
		tenure = *req.TenureMonths
	}

	disbursedDate := time.Now()
	if req.DisbursedDate != nil {
		disbursedDate = *req.DisbursedDate
	}

	ok, err := s.members.ExistsInSHG(ctx, shgID, req.MemberID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: member not found", ErrNotFound)
	}

	emiAmount, err := emi.Compute(*req.LoanAmount, rate, tenure)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	entries, err := emi.Schedule(*req.LoanAmount, rate, tenure, disbursedDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := time.Now()
	loan := &model.Loan{
		ID:            uuid.New(),
		SHGID:         shgID,
		MemberID:      req.MemberID,
		LoanAmount:    *req.LoanAmount,
		InterestRate:  rate,
		TenureMonths:  tenure,
		EMIAmount:     emiAmount,
		Purpose:       req.Purpose,
		DisbursedDate: disbursedDate,
		Status:        model.LoanStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	schedule := make([]model.Repayment, 0, len(entries))
	for _, entry := range entries {
		schedule = append(schedule, model.Repayment{
			ID:            uuid.New(),
			SHGID:         shgID,
			LoanID:        loan.ID,
			MemberID:      req.MemberID,
			InstallmentNo: entry.Sequence,
			EMIAmount:     entry.AmountDue,
			DueDate:       entry.DueDate,
			AmountPaid:    decimal.Zero,
			Penalty:       decimal.Zero,
			Status:        emi.StatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	if err := s.loans.CreateWithSchedule(ctx, loan, schedule); err != nil {
		s.logger.WithError(err).Error("Failed to disburse loan")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"loan_id":    loan.ID,
		"member_id":  req.MemberID,
		"amount":     loan.LoanAmount.String(),
		"emi_amount": emiAmount.String(),
		"tenure":     tenure,
	}).Info("Loan disbursed")

	return loan, nil
}

func (s *LoanService) Get(ctx context.Context, shgID, id uuid.UUID) (*model.Loan, error) {
	loan, err := s.loans.GetByID(ctx, shgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: loan not found", ErrNotFound)
		}
		return nil, err
	}
	return loan, nil
}

// List returns loans with the disbursed total across the listing.
func (s *LoanService) List(ctx context.Context, shgID uuid.UUID, filter model.LoanFilter) (*model.LoanList, error) {
	loans, err := s.loans.List(ctx, shgID, filter)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, loan := range loans {
		total = total.Add(loan.LoanAmount)
	}

	if loans == nil {
		loans = []model.Loan{}
	}
	return &model.LoanList{Loans: loans, TotalDisbursed: total}, nil
}

func (s *LoanService) Update(ctx context.Context, shgID, id uuid.UUID, req model.UpdateLoanRequest) (*model.Loan, error) {
	if req.Status != nil {
		switch *req.Status {
		case model.LoanStatusActive, model.LoanStatusClosed, model.LoanStatusDefaulted:
		default:
			return nil, fmt.Errorf("%w: unknown loan status %q", ErrValidation, *req.Status)
		}
	}

	loan, err := s.loans.Update(ctx, shgID, id, req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: loan not found", ErrNotFound)
		}
		s.logger.WithError(err).Error("Failed to update loan")
		return nil, err
	}

	s.logger.WithField("loan_id", id).Info("Loan updated")
	return loan, nil
}
