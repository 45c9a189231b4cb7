package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Saving is one member's contribution for a month. The (member, month, year)
// triple is unique; recording again replaces the earlier entry.
type Saving struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	SHGID       uuid.UUID       `json:"shg_id" db:"shg_id"`
	MemberID    uuid.UUID       `json:"member_id" db:"member_id"`
	MemberName  string          `json:"member_name,omitempty"`
	Month       int             `json:"month" db:"month"`
	Year        int             `json:"year" db:"year"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	PaymentMode string          `json:"payment_mode" db:"payment_mode"`
	Date        time.Time       `json:"date" db:"date"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type SavingRequest struct {
	MemberID    uuid.UUID        `json:"member_id"`
	Month       int              `json:"month"`
	Year        int              `json:"year"`
	Amount      *decimal.Decimal `json:"amount"`
	PaymentMode *string          `json:"payment_mode"`
	Date        *time.Time       `json:"date"`
}

// SavingList is the listing payload: rows plus their running total.
type SavingList struct {
	Savings []Saving        `json:"data"`
	Total   decimal.Decimal `json:"total"`
}
