package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riyakoli232311/SHG-management/internal/emi"
)

const (
	LoanStatusActive    = "active"
	LoanStatusClosed    = "closed"
	LoanStatusDefaulted = "defaulted"
)

type Loan struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	SHGID         uuid.UUID       `json:"shg_id" db:"shg_id"`
	MemberID      uuid.UUID       `json:"member_id" db:"member_id"`
	MemberName    string          `json:"member_name,omitempty"`
	LoanAmount    decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	InterestRate  decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	TenureMonths  int             `json:"tenure_months" db:"tenure_months"`
	EMIAmount     decimal.Decimal `json:"emi_amount" db:"emi_amount"`
	Purpose       *string         `json:"purpose" db:"purpose"`
	DisbursedDate time.Time       `json:"disbursed_date" db:"disbursed_date"`
	Status        string          `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// Repayment is one EMI installment of a loan's schedule. Status holds only
// pending|paid; overdue is derived at read time (emi.DisplayStatus).
type Repayment struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	SHGID         uuid.UUID       `json:"shg_id" db:"shg_id"`
	LoanID        uuid.UUID       `json:"loan_id" db:"loan_id"`
	MemberID      uuid.UUID       `json:"member_id" db:"member_id"`
	MemberName    string          `json:"member_name,omitempty"`
	LoanAmount    decimal.Decimal `json:"loan_amount,omitempty"`
	InstallmentNo int             `json:"installment_no" db:"installment_no"`
	EMIAmount     decimal.Decimal `json:"emi_amount" db:"emi_amount"`
	DueDate       time.Time       `json:"due_date" db:"due_date"`
	PaidDate      *time.Time      `json:"paid_date" db:"paid_date"`
	AmountPaid    decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	Penalty       decimal.Decimal `json:"penalty" db:"penalty"`
	Status        emi.Status      `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// View projects the installment into the shape the rollup core consumes.
func (r Repayment) View() emi.InstallmentView {
	return emi.InstallmentView{
		AmountDue:  r.EMIAmount,
		AmountPaid: r.AmountPaid,
		DueDate:    r.DueDate,
		Status:     r.Status,
	}
}

type CreateLoanRequest struct {
	MemberID      uuid.UUID        `json:"member_id"`
	LoanAmount    *decimal.Decimal `json:"loan_amount"`
	InterestRate  *decimal.Decimal `json:"interest_rate"`
	TenureMonths  *int             `json:"tenure_months"`
	Purpose       *string          `json:"purpose"`
	DisbursedDate *time.Time       `json:"disbursed_date"`
}

type UpdateLoanRequest struct {
	Status  *string `json:"status"`
	Purpose *string `json:"purpose"`
}

type LoanFilter struct {
	MemberID *uuid.UUID
	Status   *string
}

// LoanList is the listing payload: rows plus the disbursed total.
type LoanList struct {
	Loans          []Loan          `json:"data"`
	TotalDisbursed decimal.Decimal `json:"totalDisbursed"`
}

type RepaymentFilter struct {
	LoanID   *uuid.UUID
	MemberID *uuid.UUID
	Status   *string
}

// RepaymentList carries the listing rows with their derived statuses applied
// plus the rollup figures reported alongside them.
type RepaymentList struct {
	Repayments     []Repayment     `json:"data"`
	TotalCollected decimal.Decimal `json:"totalCollected"`
	PendingCount   int             `json:"pendingCount"`
	OverdueCount   int             `json:"overdueCount"`
}

type PayRequest struct {
	PaidDate *time.Time `json:"paid_date"`
}
