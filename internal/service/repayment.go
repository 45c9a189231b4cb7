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

// RepaymentStore is the persistence surface the repayment service needs.
type RepaymentStore interface {
	GetByID(ctx context.Context, shgID, id uuid.UUID) (*model.Repayment, error)
	List(ctx context.Context, shgID uuid.UUID, filter model.RepaymentFilter) ([]model.Repayment, error)
	MarkPaid(ctx context.Context, shgID, id uuid.UUID, paidDate time.Time) (bool, error)
	CountUnpaidByLoan(ctx context.Context, loanID uuid.UUID) (int, error)
	ListDueUnpaid(ctx context.Context, before time.Time) ([]model.Repayment, error)
	OwnerEmail(ctx context.Context, shgID uuid.UUID) (string, error)
}

// LoanCloser flips a loan's lifecycle status once its schedule completes.
type LoanCloser interface {
	UpdateStatus(ctx context.Context, loanID uuid.UUID, status string) error
}

// ReminderSender delivers the due-installment digest to a group's owner.
type ReminderSender interface {
	SendRepaymentReminder(to string, dueToday, overdue int, totalDue decimal.Decimal) error
}

// RepaymentService reads schedules and records payments. The database stores
// only pending|paid; overdue is derived against today's date on every read,
// so an installment needs no background job to "become" overdue.
type RepaymentService struct {
	repayments RepaymentStore
	loans      LoanCloser
	reminders  ReminderSender
	logger     *logrus.Logger
	now        func() time.Time
}

func NewRepaymentService(
	repayments RepaymentStore,
	loans LoanCloser,
	reminders ReminderSender,
	logger *logrus.Logger,
) *RepaymentService {
	return &RepaymentService{
		repayments: repayments,
		loans:      loans,
		reminders:  reminders,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns installments with derived statuses applied, plus the rollup
// figures: total collected, pending count, overdue count. A status filter is
// matched against the derived status, so filtering by overdue works even
// though overdue is never stored.
func (s *RepaymentService) List(ctx context.Context, shgID uuid.UUID, filter model.RepaymentFilter) (*model.RepaymentList, error) {
	statusFilter := filter.Status
	filter.Status = nil

	repayments, err := s.repayments.List(ctx, shgID, filter)
	if err != nil {
		return nil, err
	}

	today := s.now()
	views := make([]emi.InstallmentView, 0, len(repayments))
	for i := range repayments {
		repayments[i].Status = emi.DisplayStatus(repayments[i].Status, repayments[i].DueDate, today)
		views = append(views, repayments[i].View())
	}
	rollup := emi.Summarize(views, today)

	if statusFilter != nil {
		filtered := make([]model.Repayment, 0, len(repayments))
		for _, rep := range repayments {
			if string(rep.Status) == *statusFilter {
				filtered = append(filtered, rep)
			}
		}
		repayments = filtered
	}

	if repayments == nil {
		repayments = []model.Repayment{}
	}
	return &model.RepaymentList{
		Repayments:     repayments,
		TotalCollected: rollup.TotalCollected,
		PendingCount:   rollup.PendingCount,
		OverdueCount:   rollup.OverdueCount,
	}, nil
}

// Pay records a payment against one installment. A paid installment stays
// paid: repeat payments are rejected, and the conditional update underneath
// keeps the transition at-most-once under concurrent requests. When the last
// installment of a loan is paid the loan moves to closed.
func (s *RepaymentService) Pay(ctx context.Context, shgID, id uuid.UUID, req model.PayRequest) (*model.Repayment, error) {
	rep, err := s.repayments.GetByID(ctx, shgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: repayment not found", ErrNotFound)
		}
		return nil, err
	}

	if rep.Status == emi.StatusPaid {
		return nil, fmt.Errorf("%w: installment %d", ErrAlreadyPaid, rep.InstallmentNo)
	}

	paidDate := s.now()
	if req.PaidDate != nil {
		paidDate = *req.PaidDate
	}

	ok, err := s.repayments.MarkPaid(ctx, shgID, id, paidDate)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another request won the race between our read and the update.
		return nil, fmt.Errorf("%w: installment %d", ErrAlreadyPaid, rep.InstallmentNo)
	}

	s.logger.WithFields(logrus.Fields{
		"repayment_id":   id,
		"loan_id":        rep.LoanID,
		"installment_no": rep.InstallmentNo,
	}).Info("Repayment recorded")

	unpaid, err := s.repayments.CountUnpaidByLoan(ctx, rep.LoanID)
	if err != nil {
		return nil, err
	}
	if unpaid == 0 {
		if err := s.loans.UpdateStatus(ctx, rep.LoanID, model.LoanStatusClosed); err != nil {
			return nil, err
		}
		s.logger.WithField("loan_id", rep.LoanID).Info("Loan fully repaid, closed")
	}

	updated, err := s.repayments.GetByID(ctx, shgID, id)
	if err != nil {
		return nil, err
	}
	updated.Status = emi.DisplayStatus(updated.Status, updated.DueDate, s.now())

	return updated, nil
}

// SendDueReminders emails each group owner a digest of installments due today
// or already overdue. Run daily by the scheduler.
func (s *RepaymentService) SendDueReminders(ctx context.Context) error {
	today := s.now()
	endOfDay := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, today.Location())

	due, err := s.repayments.ListDueUnpaid(ctx, endOfDay)
	if err != nil {
		return fmt.Errorf("failed to list due repayments: %w", err)
	}
	if len(due) == 0 {
		s.logger.Info("No due repayments, skipping reminders")
		return nil
	}

	type digest struct {
		dueToday int
		overdue  int
		totalDue decimal.Decimal
	}
	perSHG := make(map[uuid.UUID]*digest)
	for _, rep := range due {
		d := perSHG[rep.SHGID]
		if d == nil {
			d = &digest{totalDue: decimal.Zero}
			perSHG[rep.SHGID] = d
		}
		if emi.DisplayStatus(rep.Status, rep.DueDate, today) == emi.StatusOverdue {
			d.overdue++
		} else {
			d.dueToday++
		}
		d.totalDue = d.totalDue.Add(rep.EMIAmount)
	}

	for shgID, d := range perSHG {
		email, err := s.repayments.OwnerEmail(ctx, shgID)
		if err != nil {
			s.logger.WithError(err).WithField("shg_id", shgID).Error("Failed to resolve owner email")
			continue
		}

		if err := s.reminders.SendRepaymentReminder(email, d.dueToday, d.overdue, d.totalDue); err != nil {
			s.logger.WithError(err).WithField("shg_id", shgID).Error("Failed to send reminder")
			continue
		}

		s.logger.WithFields(logrus.Fields{
			"shg_id":    shgID,
			"due_today": d.dueToday,
			"overdue":   d.overdue,
		}).Info("Reminder sent")
	}

	return nil
}
