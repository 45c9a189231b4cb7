package emi

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	today := time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)
	day := func(month time.Month, d int) time.Time {
		return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
	}

	installments := []InstallmentView{
		{AmountDue: d("889"), AmountPaid: d("889"), DueDate: day(time.February, 1), Status: StatusPaid},
		{AmountDue: d("889"), AmountPaid: d("889"), DueDate: day(time.March, 1), Status: StatusPaid},
		{AmountDue: d("889"), AmountPaid: decimal.Zero, DueDate: day(time.April, 1), Status: StatusPending}, // derived overdue
		{AmountDue: d("889"), AmountPaid: decimal.Zero, DueDate: day(time.June, 1), Status: StatusPending},
		{AmountDue: d("889"), AmountPaid: decimal.Zero, DueDate: day(time.July, 1), Status: StatusPending},
	}

	roll := Summarize(installments, today)
	assert.Equal(t, int64(1778), roll.TotalCollected.IntPart())
	assert.Equal(t, 2, roll.PendingCount)
	assert.Equal(t, 1, roll.OverdueCount)
}

func TestSummarize_Empty(t *testing.T) {
	roll := Summarize(nil, time.Now())
	assert.True(t, roll.TotalCollected.IsZero())
	assert.Zero(t, roll.PendingCount)
	assert.Zero(t, roll.OverdueCount)
}

// Collected total must equal the sum of amount-paid over exactly the stored
// paid installments, and the fold must be order-independent.
func TestSummarize_RandomizedProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	today := time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)

	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(40) + 1
		installments := make([]InstallmentView, 0, n)
		wantCollected := decimal.Zero
		for i := 0; i < n; i++ {
			amount := decimal.NewFromInt(rng.Int63n(2000) + 100)
			due := today.AddDate(0, 0, rng.Intn(200)-100)
			inst := InstallmentView{AmountDue: amount, AmountPaid: decimal.Zero, DueDate: due, Status: StatusPending}
			if rng.Intn(2) == 0 {
				inst.Status = StatusPaid
				inst.AmountPaid = amount
				wantCollected = wantCollected.Add(amount)
			}
			installments = append(installments, inst)
		}

		roll := Summarize(installments, today)
		require.True(t, roll.TotalCollected.Equal(wantCollected),
			"collected %s, want %s", roll.TotalCollected, wantCollected)

		shuffled := make([]InstallmentView, n)
		copy(shuffled, installments)
		rng.Shuffle(n, func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		again := Summarize(shuffled, today)
		assert.True(t, again.TotalCollected.Equal(roll.TotalCollected))
		assert.Equal(t, roll.PendingCount, again.PendingCount)
		assert.Equal(t, roll.OverdueCount, again.OverdueCount)
	}
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 30, ProgressPercent(d("2511"), d("837"), 10))
	assert.Equal(t, 100, ProgressPercent(d("8370"), d("837"), 10))
	assert.Equal(t, 0, ProgressPercent(decimal.Zero, d("837"), 10))
	assert.Equal(t, 0, ProgressPercent(d("100"), decimal.Zero, 10), "zero total payable reports zero")
	// 4445 / 10668 = 41.66...% -> 42
	assert.Equal(t, 42, ProgressPercent(d("4445"), d("889"), 12))
}
