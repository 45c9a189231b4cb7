package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/riyakoli232311/SHG-management/internal/emi"
	"github.com/riyakoli232311/SHG-management/internal/model"
	"github.com/riyakoli232311/SHG-management/internal/repository"
)

// DashboardService aggregates the group's records into one snapshot. The four
// source tables are fetched concurrently since none depends on another.
type DashboardService struct {
	memberRepo    *repository.MemberRepository
	savingRepo    *repository.SavingRepository
	loanRepo      *repository.LoanRepository
	repaymentRepo *repository.RepaymentRepository
	logger        *logrus.Logger
}

func NewDashboardService(
	memberRepo *repository.MemberRepository,
	savingRepo *repository.SavingRepository,
	loanRepo *repository.LoanRepository,
	repaymentRepo *repository.RepaymentRepository,
	logger *logrus.Logger,
) *DashboardService {
	return &DashboardService{
		memberRepo:    memberRepo,
		savingRepo:    savingRepo,
		loanRepo:      loanRepo,
		repaymentRepo: repaymentRepo,
		logger:        logger,
	}
}

func (s *DashboardService) Stats(ctx context.Context, shgID uuid.UUID) (*model.DashboardStats, error) {
	var (
		members    []repository.MemberRecord
		savings    []model.Saving
		loans      []model.Loan
		repayments []model.Repayment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.memberRepo.ListBySHG(gctx, shgID)
		return err
	})
	g.Go(func() error {
		var err error
		savings, err = s.savingRepo.ListBySHG(gctx, shgID)
		return err
	})
	g.Go(func() error {
		var err error
		loans, err = s.loanRepo.ListBySHG(gctx, shgID)
		return err
	})
	g.Go(func() error {
		var err error
		repayments, err = s.repaymentRepo.ListBySHG(gctx, shgID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Error("Failed to collect dashboard stats")
		return nil, err
	}

	stats := &model.DashboardStats{
		TotalMembers:     len(members),
		MembersByVillage: make(map[string]int),
	}

	for _, rec := range members {
		if rec.Member.Status == model.MemberStatusActive {
			stats.ActiveMembers++
		}
		if rec.Member.Village != nil && *rec.Member.Village != "" {
			stats.MembersByVillage[*rec.Member.Village]++
		}
	}

	totalSavings := decimal.Zero
	for _, saving := range savings {
		totalSavings = totalSavings.Add(saving.Amount)
	}
	stats.TotalSavings = totalSavings
	if stats.TotalMembers > 0 {
		stats.AverageSavingsPerMember = totalSavings.
			Div(decimal.NewFromInt(int64(stats.TotalMembers))).Round(2)
	} else {
		stats.AverageSavingsPerMember = decimal.Zero
	}

	totalDisbursed := decimal.Zero
	for _, loan := range loans {
		totalDisbursed = totalDisbursed.Add(loan.LoanAmount)
		if loan.Status == model.LoanStatusActive {
			stats.ActiveLoansCount++
		}
	}
	stats.TotalLoansDisbursed = totalDisbursed

	views := make([]emi.InstallmentView, 0, len(repayments))
	for _, rep := range repayments {
		views = append(views, rep.View())
	}
	rollup := emi.Summarize(views, time.Now())
	stats.TotalRepaymentsCollected = rollup.TotalCollected
	stats.PendingRepayments = rollup.PendingCount
	stats.OverdueRepayments = rollup.OverdueCount

	return stats, nil
}
