package service

import (
	"context"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/emi"
	"github.com/riyakoli232311/SHG-management/internal/repository"
)

// ReportService builds the XML export of a group's financial position, used
// for filing with federation and bank linkage programs.
type ReportService struct {
	stats         StatsProvider
	loanRepo      *repository.LoanRepository
	repaymentRepo *repository.RepaymentRepository
	logger        *logrus.Logger
}

func NewReportService(
	stats StatsProvider,
	loanRepo *repository.LoanRepository,
	repaymentRepo *repository.RepaymentRepository,
	logger *logrus.Logger,
) *ReportService {
	return &ReportService{
		stats:         stats,
		loanRepo:      loanRepo,
		repaymentRepo: repaymentRepo,
		logger:        logger,
	}
}

// BuildXML renders the group snapshot plus a per-loan repayment progress
// breakdown as an XML document.
func (s *ReportService) BuildXML(ctx context.Context, shgID uuid.UUID) ([]byte, error) {
	stats, err := s.stats.Stats(ctx, shgID)
	if err != nil {
		return nil, err
	}

	loans, err := s.loanRepo.ListBySHG(ctx, shgID)
	if err != nil {
		return nil, err
	}

	repayments, err := s.repaymentRepo.ListBySHG(ctx, shgID)
	if err != nil {
		return nil, err
	}

	paidByLoan := make(map[uuid.UUID]decimal.Decimal)
	for _, rep := range repayments {
		paidByLoan[rep.LoanID] = paidByLoan[rep.LoanID].Add(rep.AmountPaid)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("ShgReport")
	root.CreateAttr("generated", time.Now().Format(time.RFC3339))

	summary := root.CreateElement("Summary")
	summary.CreateElement("TotalMembers").SetText(itoa(stats.TotalMembers))
	summary.CreateElement("ActiveMembers").SetText(itoa(stats.ActiveMembers))
	summary.CreateElement("TotalSavings").SetText(stats.TotalSavings.StringFixed(2))
	summary.CreateElement("TotalLoansDisbursed").SetText(stats.TotalLoansDisbursed.StringFixed(2))
	summary.CreateElement("TotalRepaymentsCollected").SetText(stats.TotalRepaymentsCollected.StringFixed(2))
	summary.CreateElement("PendingRepayments").SetText(itoa(stats.PendingRepayments))
	summary.CreateElement("OverdueRepayments").SetText(itoa(stats.OverdueRepayments))

	villages := root.CreateElement("Villages")
	for village, count := range stats.MembersByVillage {
		el := villages.CreateElement("Village")
		el.CreateAttr("name", village)
		el.CreateAttr("members", itoa(count))
	}

	loansEl := root.CreateElement("Loans")
	for _, loan := range loans {
		paid := paidByLoan[loan.ID]
		progress := emi.ProgressPercent(paid, loan.EMIAmount, loan.TenureMonths)

		el := loansEl.CreateElement("Loan")
		el.CreateAttr("id", loan.ID.String())
		el.CreateAttr("status", loan.Status)
		el.CreateElement("Member").SetText(loan.MemberName)
		el.CreateElement("Amount").SetText(loan.LoanAmount.StringFixed(2))
		el.CreateElement("InterestRate").SetText(loan.InterestRate.String())
		el.CreateElement("TenureMonths").SetText(itoa(loan.TenureMonths))
		el.CreateElement("EmiAmount").SetText(loan.EMIAmount.StringFixed(2))
		el.CreateElement("DisbursedDate").SetText(loan.DisbursedDate.Format("2006-01-02"))
		el.CreateElement("AmountRepaid").SetText(paid.StringFixed(2))
		el.CreateElement("RepaymentProgress").SetText(itoa(progress))
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"shg_id": shgID,
		"loans":  len(loans),
	}).Info("Report generated")

	return out, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
