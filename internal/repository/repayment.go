package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/model"
)

type RepaymentRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewRepaymentRepository(db *sql.DB, logger *logrus.Logger) *RepaymentRepository {
	return &RepaymentRepository{db: db, logger: logger}
}

const repaymentColumns = `
        r.id, r.shg_id, r.loan_id, r.member_id, m.name, l.loan_amount,
        r.installment_no, r.emi_amount, r.due_date, r.paid_date, r.amount_paid,
        r.penalty, r.status, r.created_at, r.updated_at
`

func scanRepaymentRow(scan func(dest ...any) error) (*model.Repayment, error) {
	var rep model.Repayment
	err := scan(
		&rep.ID,
		&rep.SHGID,
		&rep.LoanID,
		&rep.MemberID,
		&rep.MemberName,
		&rep.LoanAmount,
		&rep.InstallmentNo,
		&rep.EMIAmount,
		&rep.DueDate,
		&rep.PaidDate,
		&rep.AmountPaid,
		&rep.Penalty,
		&rep.Status,
		&rep.CreatedAt,
		&rep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *RepaymentRepository) GetByID(ctx context.Context, shgID, id uuid.UUID) (*model.Repayment, error) {
	query := `
        SELECT ` + repaymentColumns + `
        FROM repayments r
        JOIN members m ON m.id = r.member_id
        JOIN loans l ON l.id = r.loan_id
        WHERE r.id = $1 AND r.shg_id = $2
    `

	rep, err := scanRepaymentRow(r.db.QueryRowContext(ctx, query, id, shgID).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get repayment: %w", err)
	}

	return rep, nil
}

func (r *RepaymentRepository) List(ctx context.Context, shgID uuid.UUID, filter model.RepaymentFilter) ([]model.Repayment, error) {
	query := `
        SELECT ` + repaymentColumns + `
        FROM repayments r
        JOIN members m ON m.id = r.member_id
        JOIN loans l ON l.id = r.loan_id
        WHERE r.shg_id = $1
    `
	args := []any{shgID}
	order := ` ORDER BY r.due_date DESC`

	switch {
	case filter.LoanID != nil:
		query += ` AND r.loan_id = $2`
		args = append(args, *filter.LoanID)
		order = ` ORDER BY r.due_date ASC`
	case filter.MemberID != nil:
		query += ` AND r.member_id = $2`
		args = append(args, *filter.MemberID)
	case filter.Status != nil:
		query += ` AND r.status = $2`
		args = append(args, *filter.Status)
		order = ` ORDER BY r.due_date ASC`
	}
	query += order

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query repayments: %w", err)
	}
	defer rows.Close()

	var repayments []model.Repayment
	for rows.Next() {
		rep, err := scanRepaymentRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repayment: %w", err)
		}
		repayments = append(repayments, *rep)
	}

	return repayments, rows.Err()
}

func (r *RepaymentRepository) ListBySHG(ctx context.Context, shgID uuid.UUID) ([]model.Repayment, error) {
	return r.List(ctx, shgID, model.RepaymentFilter{})
}

// MarkPaid flips an installment to paid if and only if it is not paid yet.
// The status guard in the WHERE clause makes the transition at-most-once even
// under concurrent requests; callers treat a zero-row result as a lost race.
func (r *RepaymentRepository) MarkPaid(ctx context.Context, shgID, id uuid.UUID, paidDate time.Time) (bool, error) {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE repayments SET
             status = 'paid',
             paid_date = $1,
             amount_paid = emi_amount,
             updated_at = now()
         WHERE id = $2 AND shg_id = $3 AND status <> 'paid'`,
		paidDate, id, shgID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark repayment paid: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check update result: %w", err)
	}

	return affected == 1, nil
}

// CountUnpaidByLoan reports how many installments of a loan are not paid yet.
func (r *RepaymentRepository) CountUnpaidByLoan(ctx context.Context, loanID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM repayments WHERE loan_id = $1 AND status <> 'paid'`,
		loanID,
	).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("failed to count unpaid repayments: %w", err)
	}

	return count, nil
}

// ListDueUnpaid returns unpaid installments due on or before the given date,
// grouped by SHG for the reminder digest.
func (r *RepaymentRepository) ListDueUnpaid(ctx context.Context, before time.Time) ([]model.Repayment, error) {
	query := `
        SELECT ` + repaymentColumns + `
        FROM repayments r
        JOIN members m ON m.id = r.member_id
        JOIN loans l ON l.id = r.loan_id
        WHERE r.status <> 'paid' AND r.due_date <= $1
        ORDER BY r.shg_id, r.due_date
    `

	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query due repayments: %w", err)
	}
	defer rows.Close()

	var repayments []model.Repayment
	for rows.Next() {
		rep, err := scanRepaymentRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repayment: %w", err)
		}
		repayments = append(repayments, *rep)
	}

	return repayments, rows.Err()
}

// OwnerEmail resolves the login email of the user who owns a group.
func (r *RepaymentRepository) OwnerEmail(ctx context.Context, shgID uuid.UUID) (string, error) {
	var email string
	err := r.db.QueryRowContext(
		ctx,
		`SELECT u.email FROM users u JOIN shg_info s ON s.user_id = u.id WHERE s.id = $1`,
		shgID,
	).Scan(&email)

	if err != nil {
		return "", fmt.Errorf("failed to resolve owner email: %w", err)
	}

	return email, nil
}
