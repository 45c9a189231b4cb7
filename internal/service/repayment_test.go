package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riyakoli232311/SHG-management/internal/emi"
	"github.com/riyakoli232311/SHG-management/internal/model"
)

type fakeRepaymentStore struct {
	reps       map[uuid.UUID]*model.Repayment
	ownerEmail string
	// denyMarkPaid simulates a concurrent payment winning the conditional
	// update between the caller's read and write.
	denyMarkPaid bool
}

func newFakeRepaymentStore() *fakeRepaymentStore {
	return &fakeRepaymentStore{
		reps:       make(map[uuid.UUID]*model.Repayment),
		ownerEmail: "owner@example.com",
	}
}

func (f *fakeRepaymentStore) add(rep model.Repayment) uuid.UUID {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	f.reps[rep.ID] = &rep
	return rep.ID
}

func (f *fakeRepaymentStore) GetByID(_ context.Context, shgID, id uuid.UUID) (*model.Repayment, error) {
	rep, ok := f.reps[id]
	if !ok || rep.SHGID != shgID {
		return nil, sql.ErrNoRows
	}
	copied := *rep
	return &copied, nil
}

func (f *fakeRepaymentStore) List(_ context.Context, shgID uuid.UUID, filter model.RepaymentFilter) ([]model.Repayment, error) {
	var out []model.Repayment
	for _, rep := range f.reps {
		if rep.SHGID != shgID {
			continue
		}
		if filter.LoanID != nil && rep.LoanID != *filter.LoanID {
			continue
		}
		if filter.MemberID != nil && rep.MemberID != *filter.MemberID {
			continue
		}
		out = append(out, *rep)
	}
	return out, nil
}

func (f *fakeRepaymentStore) MarkPaid(_ context.Context, shgID, id uuid.UUID, paidDate time.Time) (bool, error) {
	rep, ok := f.reps[id]
	if !ok || rep.SHGID != shgID || rep.Status == emi.StatusPaid || f.denyMarkPaid {
		return false, nil
	}
	rep.Status = emi.StatusPaid
	rep.PaidDate = &paidDate
	rep.AmountPaid = rep.EMIAmount
	return true, nil
}

func (f *fakeRepaymentStore) CountUnpaidByLoan(_ context.Context, loanID uuid.UUID) (int, error) {
	count := 0
	for _, rep := range f.reps {
		if rep.LoanID == loanID && rep.Status != emi.StatusPaid {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepaymentStore) ListDueUnpaid(_ context.Context, before time.Time) ([]model.Repayment, error) {
	var out []model.Repayment
	for _, rep := range f.reps {
		if rep.Status != emi.StatusPaid && !rep.DueDate.After(before) {
			out = append(out, *rep)
		}
	}
	return out, nil
}

func (f *fakeRepaymentStore) OwnerEmail(_ context.Context, _ uuid.UUID) (string, error) {
	return f.ownerEmail, nil
}

type fakeLoanCloser struct {
	statuses map[uuid.UUID]string
}

func (f *fakeLoanCloser) UpdateStatus(_ context.Context, loanID uuid.UUID, status string) error {
	if f.statuses == nil {
		f.statuses = make(map[uuid.UUID]string)
	}
	f.statuses[loanID] = status
	return nil
}

type fakeReminderSender struct {
	sent []struct {
		to       string
		dueToday int
		overdue  int
		totalDue decimal.Decimal
	}
}

func (f *fakeReminderSender) SendRepaymentReminder(to string, dueToday, overdue int, totalDue decimal.Decimal) error {
	f.sent = append(f.sent, struct {
		to       string
		dueToday int
		overdue  int
		totalDue decimal.Decimal
	}{to, dueToday, overdue, totalDue})
	return nil
}

func installment(shgID, loanID uuid.UUID, no int, due time.Time, status emi.Status) model.Repayment {
	rep := model.Repayment{
		SHGID:         shgID,
		LoanID:        loanID,
		MemberID:      uuid.New(),
		InstallmentNo: no,
		EMIAmount:     decimal.NewFromInt(889),
		DueDate:       due,
		AmountPaid:    decimal.Zero,
		Penalty:       decimal.Zero,
		Status:        status,
	}
	if status == emi.StatusPaid {
		rep.AmountPaid = rep.EMIAmount
	}
	return rep
}

func newRepaymentService(store *fakeRepaymentStore, closer *fakeLoanCloser, sender *fakeReminderSender, now time.Time) *RepaymentService {
	svc := NewRepaymentService(store, closer, sender, testLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func TestRepaymentServicePay(t *testing.T) {
	shgID := uuid.New()
	loanID := uuid.New()
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

	store := newFakeRepaymentStore()
	id := store.add(installment(shgID, loanID, 1, now.AddDate(0, 0, 5), emi.StatusPending))
	store.add(installment(shgID, loanID, 2, now.AddDate(0, 1, 5), emi.StatusPending))

	closer := &fakeLoanCloser{}
	svc := newRepaymentService(store, closer, &fakeReminderSender{}, now)

	paid, err := svc.Pay(context.Background(), shgID, id, model.PayRequest{})
	require.NoError(t, err)

	assert.Equal(t, emi.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidDate)
	assert.True(t, paid.AmountPaid.Equal(paid.EMIAmount))
	assert.Empty(t, closer.statuses, "loan must stay open with an unpaid installment left")
}

func TestRepaymentServicePayClosesLoan(t *testing.T) {
	shgID := uuid.New()
	loanID := uuid.New()
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

	store := newFakeRepaymentStore()
	store.add(installment(shgID, loanID, 1, now.AddDate(0, -1, 0), emi.StatusPaid))
	last := store.add(installment(shgID, loanID, 2, now.AddDate(0, 0, 1), emi.StatusPending))

	closer := &fakeLoanCloser{}
	svc := newRepaymentService(store, closer, &fakeReminderSender{}, now)

	_, err := svc.Pay(context.Background(), shgID, last, model.PayRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.LoanStatusClosed, closer.statuses[loanID])
}

func TestRepaymentServicePayAlreadyPaid(t *testing.T) {
	shgID := uuid.New()
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

	store := newFakeRepaymentStore()
	id := store.add(installment(shgID, uuid.New(), 1, now.AddDate(0, 0, -3), emi.StatusPaid))

	svc := newRepaymentService(store, &fakeLoanCloser{}, &fakeReminderSender{}, now)

	_, err := svc.Pay(context.Background(), shgID, id, model.PayRequest{})
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestRepaymentServicePayLostRace(t *testing.T) {
	shgID := uuid.New()
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

	store := newFakeRepaymentStore()
	store.denyMarkPaid = true
	id := store.add(installment(shgID, uuid.New(), 1, now, emi.StatusPending))

	svc := newRepaymentService(store, &fakeLoanCloser{}, &fakeReminderSender{}, now)

	_, err := svc.Pay(context.Background(), shgID, id, model.PayRequest{})
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestRepaymentServicePayNotFound(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	svc := newRepaymentService(newFakeRepaymentStore(), &fakeLoanCloser{}, &fakeReminderSender{}, now)

	_, err := svc.Pay(context.Background(), uuid.New(), uuid.New(), model.PayRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepaymentServiceListDerivesOverdue(t *testing.T) {
	shgID := uuid.New()
	loanID := uuid.New()
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

	store := newFakeRepaymentStore()
	store.add(installment(shgID, loanID, 1, now.AddDate(0, -1, 0), emi.StatusPaid))
	store.add(installment(shgID, loanID, 2, now.AddDate(0, 0, -3), emi.StatusPending))
	store.add(installment(shgID, loanID, 3, now.AddDate(0, 0, 20), emi.StatusPending))

	svc := newRepaymentService(store, &fakeLoanCloser{}, &fakeReminderSender{}, now)

	list, err := svc.List(context.Background(), shgID, model.RepaymentFilter{})
	require.NoError(t, err)

	assert.Len(t, list.Repayments, 3)
	assert.True(t, list.TotalCollected.Equal(decimal.NewFromInt(889)))
	assert.Equal(t, 1, list.PendingCount)
	assert.Equal(t, 1, list.OverdueCount)

	statuses := map[emi.Status]int{}
	for _, rep := range list.Repayments {
		statuses[rep.Status]++
	}
	assert.Equal(t, 1, statuses[emi.StatusPaid])
	assert.Equal(t, 1, statuses[emi.StatusPending])
	assert.Equal(t, 1, statuses[emi.StatusOverdue])
}

func TestRepaymentServiceListFilterByDerivedStatus(t *testing.T) {
	shgID := uuid.New()
	loanID := uuid.New()
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

	store := newFakeRepaymentStore()
	store.add(installment(shgID, loanID, 1, now.AddDate(0, 0, -3), emi.StatusPending))
	store.add(installment(shgID, loanID, 2, now.AddDate(0, 0, 20), emi.StatusPending))

	svc := newRepaymentService(store, &fakeLoanCloser{}, &fakeReminderSender{}, now)

	overdue := string(emi.StatusOverdue)
	list, err := svc.List(context.Background(), shgID, model.RepaymentFilter{Status: &overdue})
	require.NoError(t, err)

	// The stored status is pending; only the derived status matches the filter.
	require.Len(t, list.Repayments, 1)
	assert.Equal(t, emi.StatusOverdue, list.Repayments[0].Status)
}

func TestRepaymentServiceSendDueReminders(t *testing.T) {
	shgID := uuid.New()
	loanID := uuid.New()
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

	store := newFakeRepaymentStore()
	store.add(installment(shgID, loanID, 1, now.AddDate(0, 0, -5), emi.StatusPending))
	store.add(installment(shgID, loanID, 2, time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC), emi.StatusPending))
	store.add(installment(shgID, loanID, 3, now.AddDate(0, 1, 0), emi.StatusPending))

	sender := &fakeReminderSender{}
	svc := newRepaymentService(store, &fakeLoanCloser{}, sender, now)

	require.NoError(t, svc.SendDueReminders(context.Background()))

	require.Len(t, sender.sent, 1)
	sent := sender.sent[0]
	assert.Equal(t, "owner@example.com", sent.to)
	assert.Equal(t, 1, sent.overdue)
	assert.Equal(t, 1, sent.dueToday)
	assert.True(t, sent.totalDue.Equal(decimal.NewFromInt(1778)))
}

func TestRepaymentServiceSendDueRemindersNoneDue(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	sender := &fakeReminderSender{}
	svc := newRepaymentService(newFakeRepaymentStore(), &fakeLoanCloser{}, sender, now)

	require.NoError(t, svc.SendDueReminders(context.Background()))
	assert.Empty(t, sender.sent)
}
