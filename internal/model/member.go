package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
)

type Member struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	SHGID      uuid.UUID       `json:"shg_id" db:"shg_id"`
	Name       string          `json:"name" db:"name"`
	Phone      *string         `json:"phone" db:"phone"`
	Village    *string         `json:"village" db:"village"`
	Age        *int            `json:"age" db:"age"`
	Income     decimal.Decimal `json:"income" db:"income"`
	Aadhaar    *string         `json:"aadhar,omitempty"` // decrypted on read, never stored in plain text
	Status     string          `json:"status" db:"status"`
	JoinedDate time.Time       `json:"joined_date" db:"joined_date"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

type MemberRequest struct {
	Name       *string          `json:"name"`
	Phone      *string          `json:"phone"`
	Village    *string          `json:"village"`
	Age        *int             `json:"age"`
	Income     *decimal.Decimal `json:"income"`
	Aadhaar    *string          `json:"aadhar"`
	Status     *string          `json:"status"`
	JoinedDate *time.Time       `json:"joined_date"`
}
