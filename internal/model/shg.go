package model

import (
	"time"

	"github.com/google/uuid"
)

// SHG is the group profile a user sets up once after signup. All domain
// records (members, savings, loans, repayments) are scoped to one SHG.
type SHG struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	UserID             uuid.UUID  `json:"user_id" db:"user_id"`
	Name               string     `json:"name" db:"name"`
	RegistrationNumber *string    `json:"registration_number" db:"registration_number"`
	Village            *string    `json:"village" db:"village"`
	Block              *string    `json:"block" db:"block"`
	District           *string    `json:"district" db:"district"`
	State              string     `json:"state" db:"state"`
	FormationDate      *time.Time `json:"formation_date" db:"formation_date"`
	BankName           *string    `json:"bank_name" db:"bank_name"`
	BankAccount        *string    `json:"bank_account" db:"bank_account"`
	IFSC               *string    `json:"ifsc" db:"ifsc"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// SHGRequest carries the setup payload; on update nil fields keep the stored
// value (COALESCE semantics).
type SHGRequest struct {
	Name               *string    `json:"name"`
	RegistrationNumber *string    `json:"registration_number"`
	Village            *string    `json:"village"`
	Block              *string    `json:"block"`
	District           *string    `json:"district"`
	State              *string    `json:"state"`
	FormationDate      *time.Time `json:"formation_date"`
	BankName           *string    `json:"bank_name"`
	BankAccount        *string    `json:"bank_account"`
	IFSC               *string    `json:"ifsc"`
}
