package emi

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentView is the minimal slice of an installment the rollups need.
type InstallmentView struct {
	AmountDue  decimal.Decimal
	AmountPaid decimal.Decimal
	DueDate    time.Time
	Status     Status
}

// Rollup aggregates a set of installments for reporting. Counts are over the
// derived display status, the collected total over the stored paid status.
type Rollup struct {
	TotalCollected decimal.Decimal
	PendingCount   int
	OverdueCount   int
}

// Summarize folds installments into a Rollup as of today. The fold is a plain
// commutative sum, so the result does not depend on input order.
func Summarize(installments []InstallmentView, today time.Time) Rollup {
	roll := Rollup{TotalCollected: decimal.Zero}
	for _, inst := range installments {
		switch DisplayStatus(inst.Status, inst.DueDate, today) {
		case StatusPaid:
			roll.TotalCollected = roll.TotalCollected.Add(inst.AmountPaid)
		case StatusPending:
			roll.PendingCount++
		case StatusOverdue:
			roll.OverdueCount++
		}
	}
	return roll
}

// ProgressPercent reports how much of the total payable (emi * tenure) has
// been collected, rounded to the nearest whole percent.
func ProgressPercent(totalPaid, emiAmount decimal.Decimal, tenureMonths int) int {
	totalPayable := emiAmount.Mul(decimal.NewFromInt(int64(tenureMonths)))
	if !totalPayable.IsPositive() {
		return 0
	}
	pct := totalPaid.Mul(decimal.NewFromInt(100)).Div(totalPayable).Round(0)
	return int(pct.IntPart())
}
