// Package emi implements the loan amortization core: EMI calculation,
// repayment schedule generation and the derived display status of an
// installment. Everything here is pure computation over decimal amounts;
// persistence and HTTP concerns live elsewhere.
package emi

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned for a non-positive principal, a tenure below
// one month or an invalid disbursement date.
var ErrInvalidInput = errors.New("invalid loan input")

// Status of a repayment installment. Overdue is never stored, only derived.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

var (
	one = decimal.NewFromInt(1)
	// Annual percentage to monthly fraction: rate / 100 / 12.
	rateDivisor = decimal.NewFromInt(1200)
)

// Compute returns the equated monthly installment for a reducing-balance loan,
// rounded half-up to the whole currency unit.
//
// Negative or extreme rates are accepted numerically; only non-positive
// principal and tenure are rejected here. Callers validate rates.
func Compute(principal, annualRatePercent decimal.Decimal, tenureMonths int) (decimal.Decimal, error) {
	if tenureMonths < 1 {
		return decimal.Zero, ErrInvalidInput
	}
	if !principal.IsPositive() {
		return decimal.Zero, ErrInvalidInput
	}

	r := annualRatePercent.Div(rateDivisor)
	if r.IsZero() {
		// Interest-free loan: the annuity formula would divide by zero here.
		return principal.Div(decimal.NewFromInt(int64(tenureMonths))).Round(0), nil
	}

	// emi = P * r * (1+r)^n / ((1+r)^n - 1)
	compound := one.Add(r).Pow(decimal.NewFromInt(int64(tenureMonths)))
	emi := principal.Mul(r).Mul(compound).Div(compound.Sub(one))
	return emi.Round(0), nil
}

// ScheduleEntry is one month of a generated repayment schedule.
type ScheduleEntry struct {
	Sequence  int
	DueDate   time.Time
	AmountDue decimal.Decimal
}

// Schedule generates the full repayment schedule for a loan: one entry per
// tenure month, the first due one calendar month after disbursement. The
// final installment keeps the flat EMI; rounding remainders are not absorbed.
//
// The generation is deterministic: identical inputs always produce an
// identical schedule.
func Schedule(principal, annualRatePercent decimal.Decimal, tenureMonths int, disbursedDate time.Time) ([]ScheduleEntry, error) {
	if disbursedDate.IsZero() {
		return nil, ErrInvalidInput
	}
	amount, err := Compute(principal, annualRatePercent, tenureMonths)
	if err != nil {
		return nil, err
	}

	entries := make([]ScheduleEntry, 0, tenureMonths)
	for i := 1; i <= tenureMonths; i++ {
		entries = append(entries, ScheduleEntry{
			Sequence:  i,
			DueDate:   AddMonthsClamped(disbursedDate, i),
			AmountDue: amount,
		})
	}
	return entries, nil
}

// AddMonthsClamped advances a date by whole calendar months, preserving the
// day of month where the target month has that day and clamping to the last
// valid day otherwise (Jan 31 + 1 month = Feb 28/29). This differs from
// time.AddDate, which normalizes Jan 31 + 1 month into early March.
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}

// DisplayStatus projects the live status of an installment as of today.
// Paid is sticky; an unpaid installment strictly past its due date presents
// as overdue. The projection is computed on every read and never persisted.
func DisplayStatus(stored Status, dueDate, today time.Time) Status {
	if stored == StatusPaid {
		return StatusPaid
	}
	if dateOnly(dueDate).Before(dateOnly(today)) {
		return StatusOverdue
	}
	return StatusPending
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
