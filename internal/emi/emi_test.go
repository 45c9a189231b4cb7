package emi

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestCompute_KnownValues(t *testing.T) {
	cases := []struct {
		name      string
		principal string
		rate      string
		tenure    int
		want      int64
	}{
		{"10000 at 12% for 12 months", "10000", "12", 12, 888},
		{"6000 at 12% for 8 months", "6000", "12", 8, 784},
		{"8000 at 10% for 10 months", "8000", "10", 10, 837},
		{"5000 at 12% for 6 months", "5000", "12", 6, 863},
		{"20000 at 12% for 24 months", "20000", "12", 24, 941},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			emi, err := Compute(d(tc.principal), d(tc.rate), tc.tenure)
			require.NoError(t, err)
			assert.Equal(t, tc.want, emi.IntPart())
			assert.True(t, emi.Equal(emi.Round(0)), "EMI must be a whole currency unit, got %s", emi)
		})
	}
}

func TestCompute_ZeroRate(t *testing.T) {
	emi, err := Compute(d("12000"), decimal.Zero, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), emi.IntPart())

	// Non-divisible principal rounds half-up.
	emi, err = Compute(d("1000"), decimal.Zero, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(333), emi.IntPart())

	emi, err = Compute(d("1001"), decimal.Zero, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(501), emi.IntPart(), "500.5 rounds up")
}

func TestCompute_InvalidInput(t *testing.T) {
	_, err := Compute(decimal.Zero, d("12"), 12)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Compute(d("-500"), d("12"), 12)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Compute(d("10000"), d("12"), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Compute(d("10000"), d("12"), -3)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCompute_AlwaysPositive(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		principal := decimal.NewFromInt(rng.Int63n(500_000) + 1)
		rate := decimal.NewFromFloat(rng.Float64() * 36)
		tenure := rng.Intn(60) + 1

		emi, err := Compute(principal, rate, tenure)
		require.NoError(t, err)
		assert.True(t, emi.IsPositive(),
			"EMI must be positive for P=%s R=%s N=%d, got %s", principal, rate, tenure, emi)
	}
}

func TestCompute_HighRateAcceptedNumerically(t *testing.T) {
	emi, err := Compute(d("10000"), d("150"), 12)
	require.NoError(t, err)
	assert.True(t, emi.IsPositive())
	// At 150% p.a. the EMI clearly exceeds the zero-rate installment.
	assert.True(t, emi.GreaterThan(d("834")))
}

func TestSchedule_LengthAndShape(t *testing.T) {
	disbursed := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	entries, err := Schedule(d("10000"), d("12"), 12, disbursed)
	require.NoError(t, err)
	require.Len(t, entries, 12)

	emi, err := Compute(d("10000"), d("12"), 12)
	require.NoError(t, err)

	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Sequence)
		assert.True(t, entry.AmountDue.Equal(emi), "every installment carries the flat EMI")
	}
	assert.Equal(t, time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), entries[0].DueDate)
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), entries[11].DueDate)
}

func TestSchedule_DueDatesMonotonic(t *testing.T) {
	disbursed := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	entries, err := Schedule(d("24000"), d("10"), 24, disbursed)
	require.NoError(t, err)

	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i].DueDate.After(entries[i-1].DueDate),
			"due dates must be strictly increasing: %s then %s", entries[i-1].DueDate, entries[i].DueDate)
	}
}

func TestSchedule_Idempotent(t *testing.T) {
	disbursed := time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)
	first, err := Schedule(d("15000"), d("12"), 18, disbursed)
	require.NoError(t, err)
	second, err := Schedule(d("15000"), d("12"), 18, disbursed)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Sequence, second[i].Sequence)
		assert.True(t, first[i].DueDate.Equal(second[i].DueDate))
		assert.True(t, first[i].AmountDue.Equal(second[i].AmountDue))
	}
}

func TestSchedule_InvalidInput(t *testing.T) {
	_, err := Schedule(d("10000"), d("12"), 0, time.Now())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Schedule(d("10000"), d("12"), 12, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddMonthsClamped(t *testing.T) {
	cases := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{
			"plain month",
			time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), 1,
			time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			"Jan 31 clamps to leap-year Feb 29",
			time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), 1,
			time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			"Jan 31 clamps to Feb 28 outside leap years",
			time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC), 1,
			time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			"Aug 31 clamps to Sep 30",
			time.Date(2024, time.August, 31, 0, 0, 0, 0, time.UTC), 1,
			time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			"day preserved across year boundary",
			time.Date(2024, time.November, 30, 0, 0, 0, 0, time.UTC), 3,
			time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			"multiple months from Jan 31 land on month ends",
			time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), 3,
			time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AddMonthsClamped(tc.start, tc.months))
		})
	}
}

func TestDisplayStatus(t *testing.T) {
	today := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)

	t.Run("paid is sticky regardless of date", func(t *testing.T) {
		past := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		future := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, StatusPaid, DisplayStatus(StatusPaid, past, today))
		assert.Equal(t, StatusPaid, DisplayStatus(StatusPaid, future, today))
	})

	t.Run("pending past due derives overdue", func(t *testing.T) {
		due := time.Date(2024, time.May, 9, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, StatusOverdue, DisplayStatus(StatusPending, due, today))
	})

	t.Run("due today stays pending", func(t *testing.T) {
		due := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, StatusPending, DisplayStatus(StatusPending, due, today))
	})

	t.Run("due in the future stays pending", func(t *testing.T) {
		due := time.Date(2024, time.May, 11, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, StatusPending, DisplayStatus(StatusPending, due, today))
	})

	t.Run("time of day does not affect the comparison", func(t *testing.T) {
		due := time.Date(2024, time.May, 10, 23, 59, 0, 0, time.UTC)
		now := time.Date(2024, time.May, 10, 0, 1, 0, 0, time.UTC)
		assert.Equal(t, StatusPending, DisplayStatus(StatusPending, due, now))
	})
}

func TestEndToEnd_LoanScenario(t *testing.T) {
	// 8000 at 10% p.a. for 10 months, paid on time for 3 months.
	principal := d("8000")
	rate := d("10")
	tenure := 10
	disbursed := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	emi, err := Compute(principal, rate, tenure)
	require.NoError(t, err)
	assert.Equal(t, int64(837), emi.IntPart())

	entries, err := Schedule(principal, rate, tenure, disbursed)
	require.NoError(t, err)
	require.Len(t, entries, tenure)

	totalPaid := decimal.Zero
	for i := 0; i < 3; i++ {
		totalPaid = totalPaid.Add(entries[i].AmountDue)
	}
	assert.Equal(t, int64(2511), totalPaid.IntPart())
	assert.Equal(t, 30, ProgressPercent(totalPaid, emi, tenure))
}
