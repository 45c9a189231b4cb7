package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riyakoli232311/SHG-management/internal/emi"
	"github.com/riyakoli232311/SHG-management/internal/model"
)

type fakeLoanStore struct {
	loans     map[uuid.UUID]*model.Loan
	schedules map[uuid.UUID][]model.Repayment
}

func newFakeLoanStore() *fakeLoanStore {
	return &fakeLoanStore{
		loans:     make(map[uuid.UUID]*model.Loan),
		schedules: make(map[uuid.UUID][]model.Repayment),
	}
}

func (f *fakeLoanStore) CreateWithSchedule(_ context.Context, loan *model.Loan, schedule []model.Repayment) error {
	f.loans[loan.ID] = loan
	f.schedules[loan.ID] = schedule
	return nil
}

func (f *fakeLoanStore) GetByID(_ context.Context, shgID, id uuid.UUID) (*model.Loan, error) {
	loan, ok := f.loans[id]
	if !ok || loan.SHGID != shgID {
		return nil, sql.ErrNoRows
	}
	return loan, nil
}

func (f *fakeLoanStore) List(_ context.Context, shgID uuid.UUID, _ model.LoanFilter) ([]model.Loan, error) {
	var out []model.Loan
	for _, loan := range f.loans {
		if loan.SHGID == shgID {
			out = append(out, *loan)
		}
	}
	return out, nil
}

func (f *fakeLoanStore) Update(_ context.Context, shgID, id uuid.UUID, req model.UpdateLoanRequest) (*model.Loan, error) {
	loan, ok := f.loans[id]
	if !ok || loan.SHGID != shgID {
		return nil, sql.ErrNoRows
	}
	if req.Status != nil {
		loan.Status = *req.Status
	}
	if req.Purpose != nil {
		loan.Purpose = req.Purpose
	}
	return loan, nil
}

type fakeMemberChecker struct {
	members map[uuid.UUID]bool
}

func (f *fakeMemberChecker) ExistsInSHG(_ context.Context, _, memberID uuid.UUID) (bool, error) {
	return f.members[memberID], nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }
func intPtr(n int) *int                         { return &n }

func TestLoanServiceDisburse(t *testing.T) {
	shgID := uuid.New()
	memberID := uuid.New()
	store := newFakeLoanStore()
	members := &fakeMemberChecker{members: map[uuid.UUID]bool{memberID: true}}
	svc := NewLoanService(store, members, testLogger())

	disbursed := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	loan, err := svc.Disburse(context.Background(), shgID, model.CreateLoanRequest{
		MemberID:      memberID,
		LoanAmount:    decPtr(decimal.NewFromInt(10000)),
		InterestRate:  decPtr(decimal.NewFromInt(12)),
		TenureMonths:  intPtr(12),
		DisbursedDate: &disbursed,
	})
	require.NoError(t, err)

	assert.Equal(t, model.LoanStatusActive, loan.Status)
	assert.True(t, loan.EMIAmount.Equal(decimal.NewFromInt(888)),
		"emi = %s", loan.EMIAmount)

	schedule := store.schedules[loan.ID]
	require.Len(t, schedule, 12)
	for i, inst := range schedule {
		assert.Equal(t, i+1, inst.InstallmentNo)
		assert.Equal(t, emi.StatusPending, inst.Status)
		assert.True(t, inst.EMIAmount.Equal(loan.EMIAmount))
		assert.True(t, inst.AmountPaid.IsZero())
	}
	assert.Equal(t, time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), schedule[11].DueDate)
}

func TestLoanServiceDisburseDefaults(t *testing.T) {
	shgID := uuid.New()
	memberID := uuid.New()
	store := newFakeLoanStore()
	members := &fakeMemberChecker{members: map[uuid.UUID]bool{memberID: true}}
	svc := NewLoanService(store, members, testLogger())

	loan, err := svc.Disburse(context.Background(), shgID, model.CreateLoanRequest{
		MemberID:   memberID,
		LoanAmount: decPtr(decimal.NewFromInt(6000)),
	})
	require.NoError(t, err)

	assert.True(t, loan.InterestRate.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, 12, loan.TenureMonths)
	assert.Len(t, store.schedules[loan.ID], 12)
}

func TestLoanServiceDisburseUnknownMember(t *testing.T) {
	svc := NewLoanService(newFakeLoanStore(), &fakeMemberChecker{members: map[uuid.UUID]bool{}}, testLogger())

	_, err := svc.Disburse(context.Background(), uuid.New(), model.CreateLoanRequest{
		MemberID:   uuid.New(),
		LoanAmount: decPtr(decimal.NewFromInt(5000)),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoanServiceDisburseInvalid(t *testing.T) {
	memberID := uuid.New()
	svc := NewLoanService(newFakeLoanStore(), &fakeMemberChecker{members: map[uuid.UUID]bool{memberID: true}}, testLogger())

	cases := []struct {
		name string
		req  model.CreateLoanRequest
	}{
		{"missing member", model.CreateLoanRequest{LoanAmount: decPtr(decimal.NewFromInt(5000))}},
		{"missing amount", model.CreateLoanRequest{MemberID: memberID}},
		{"zero amount", model.CreateLoanRequest{MemberID: memberID, LoanAmount: decPtr(decimal.Zero)}},
		{"negative rate", model.CreateLoanRequest{
			MemberID:     memberID,
			LoanAmount:   decPtr(decimal.NewFromInt(5000)),
			InterestRate: decPtr(decimal.NewFromInt(-1)),
		}},
		{"zero tenure", model.CreateLoanRequest{
			MemberID:     memberID,
			LoanAmount:   decPtr(decimal.NewFromInt(5000)),
			TenureMonths: intPtr(0),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Disburse(context.Background(), uuid.New(), tc.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLoanServiceListTotals(t *testing.T) {
	shgID := uuid.New()
	memberID := uuid.New()
	store := newFakeLoanStore()
	members := &fakeMemberChecker{members: map[uuid.UUID]bool{memberID: true}}
	svc := NewLoanService(store, members, testLogger())

	for _, amount := range []int64{10000, 6000} {
		_, err := svc.Disburse(context.Background(), shgID, model.CreateLoanRequest{
			MemberID:   memberID,
			LoanAmount: decPtr(decimal.NewFromInt(amount)),
		})
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background(), shgID, model.LoanFilter{})
	require.NoError(t, err)
	assert.Len(t, list.Loans, 2)
	assert.True(t, list.TotalDisbursed.Equal(decimal.NewFromInt(16000)))
}

func TestLoanServiceUpdateStatus(t *testing.T) {
	shgID := uuid.New()
	memberID := uuid.New()
	store := newFakeLoanStore()
	members := &fakeMemberChecker{members: map[uuid.UUID]bool{memberID: true}}
	svc := NewLoanService(store, members, testLogger())

	loan, err := svc.Disburse(context.Background(), shgID, model.CreateLoanRequest{
		MemberID:   memberID,
		LoanAmount: decPtr(decimal.NewFromInt(5000)),
	})
	require.NoError(t, err)

	status := model.LoanStatusDefaulted
	updated, err := svc.Update(context.Background(), shgID, loan.ID, model.UpdateLoanRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.LoanStatusDefaulted, updated.Status)

	bad := "written-off"
	_, err = svc.Update(context.Background(), shgID, loan.ID, model.UpdateLoanRequest{Status: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(context.Background(), shgID, uuid.New(), model.UpdateLoanRequest{Status: &status})
	assert.ErrorIs(t, err, ErrNotFound)
}
