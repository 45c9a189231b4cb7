package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/model"
)

type LoanRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewLoanRepository(db *sql.DB, logger *logrus.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger}
}

const loanColumns = `
        l.id, l.shg_id, l.member_id, m.name, l.loan_amount, l.interest_rate,
        l.tenure_months, l.emi_amount, l.purpose, l.disbursed_date, l.status,
        l.created_at, l.updated_at
`

func scanLoanRow(scan func(dest ...any) error) (*model.Loan, error) {
	var loan model.Loan
	err := scan(
		&loan.ID,
		&loan.SHGID,
		&loan.MemberID,
		&loan.MemberName,
		&loan.LoanAmount,
		&loan.InterestRate,
		&loan.TenureMonths,
		&loan.EMIAmount,
		&loan.Purpose,
		&loan.DisbursedDate,
		&loan.Status,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// CreateWithSchedule persists a loan together with its full repayment
// schedule in one transaction, so a half-written schedule can never exist.
func (r *LoanRepository) CreateWithSchedule(ctx context.Context, loan *model.Loan, schedule []model.Repayment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO loans (id, shg_id, member_id, loan_amount, interest_rate, tenure_months,
                            emi_amount, purpose, disbursed_date, status, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		loan.ID,
		loan.SHGID,
		loan.MemberID,
		loan.LoanAmount,
		loan.InterestRate,
		loan.TenureMonths,
		loan.EMIAmount,
		loan.Purpose,
		loan.DisbursedDate,
		loan.Status,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO repayments (id, shg_id, loan_id, member_id, installment_no, emi_amount,
                                 due_date, amount_paid, penalty, status, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare schedule insert: %w", err)
	}
	defer stmt.Close()

	for _, inst := range schedule {
		_, err := stmt.ExecContext(
			ctx,
			inst.ID,
			inst.SHGID,
			inst.LoanID,
			inst.MemberID,
			inst.InstallmentNo,
			inst.EMIAmount,
			inst.DueDate,
			inst.AmountPaid,
			inst.Penalty,
			inst.Status,
			inst.CreatedAt,
			inst.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create installment %d: %w", inst.InstallmentNo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit loan creation: %w", err)
	}

	return nil
}

func (r *LoanRepository) GetByID(ctx context.Context, shgID, id uuid.UUID) (*model.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans l JOIN members m ON m.id = l.member_id
        WHERE l.id = $1 AND l.shg_id = $2
    `

	loan, err := scanLoanRow(r.db.QueryRowContext(ctx, query, id, shgID).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return loan, nil
}

func (r *LoanRepository) List(ctx context.Context, shgID uuid.UUID, filter model.LoanFilter) ([]model.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans l JOIN members m ON m.id = l.member_id
        WHERE l.shg_id = $1
    `
	args := []any{shgID}

	switch {
	case filter.MemberID != nil:
		query += ` AND l.member_id = $2`
		args = append(args, *filter.MemberID)
	case filter.Status != nil:
		query += ` AND l.status = $2`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY l.disbursed_date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		loan, err := scanLoanRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, *loan)
	}

	return loans, rows.Err()
}

func (r *LoanRepository) ListBySHG(ctx context.Context, shgID uuid.UUID) ([]model.Loan, error) {
	return r.List(ctx, shgID, model.LoanFilter{})
}

func (r *LoanRepository) Update(ctx context.Context, shgID, id uuid.UUID, req model.UpdateLoanRequest) (*model.Loan, error) {
	query := `
        UPDATE loans SET
            status = COALESCE($1, status),
            purpose = COALESCE($2, purpose),
            updated_at = now()
        WHERE id = $3 AND shg_id = $4
        RETURNING id
    `

	var returned uuid.UUID
	err := r.db.QueryRowContext(ctx, query, req.Status, req.Purpose, id, shgID).Scan(&returned)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	return r.GetByID(ctx, shgID, id)
}

func (r *LoanRepository) UpdateStatus(ctx context.Context, loanID uuid.UUID, status string) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE loans SET status = $1, updated_at = now() WHERE id = $2`,
		status, loanID,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan status: %w", err)
	}

	return nil
}
