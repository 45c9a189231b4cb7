package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/model"
)

type SavingRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewSavingRepository(db *sql.DB, logger *logrus.Logger) *SavingRepository {
	return &SavingRepository{db: db, logger: logger}
}

// SavingFilter narrows a listing to one member or one month.
type SavingFilter struct {
	MemberID *uuid.UUID
	Month    *int
	Year     *int
}

// Upsert records a contribution; a second entry for the same member and month
// replaces the earlier one via ON CONFLICT.
func (r *SavingRepository) Upsert(ctx context.Context, saving *model.Saving) (*model.Saving, error) {
	query := `
        INSERT INTO savings (id, shg_id, member_id, month, year, amount, payment_mode, date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (member_id, month, year)
        DO UPDATE SET amount = EXCLUDED.amount,
                      payment_mode = EXCLUDED.payment_mode,
                      date = EXCLUDED.date
        RETURNING id, shg_id, member_id, month, year, amount, payment_mode, date, created_at
    `

	var out model.Saving
	err := r.db.QueryRowContext(
		ctx,
		query,
		saving.ID,
		saving.SHGID,
		saving.MemberID,
		saving.Month,
		saving.Year,
		saving.Amount,
		saving.PaymentMode,
		saving.Date,
		saving.CreatedAt,
	).Scan(
		&out.ID,
		&out.SHGID,
		&out.MemberID,
		&out.Month,
		&out.Year,
		&out.Amount,
		&out.PaymentMode,
		&out.Date,
		&out.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to record saving: %w", err)
	}

	return &out, nil
}

func (r *SavingRepository) List(ctx context.Context, shgID uuid.UUID, filter SavingFilter) ([]model.Saving, error) {
	query := `
        SELECT s.id, s.shg_id, s.member_id, m.name, s.month, s.year,
               s.amount, s.payment_mode, s.date, s.created_at
        FROM savings s
        JOIN members m ON m.id = s.member_id
        WHERE s.shg_id = $1
    `
	args := []any{shgID}

	switch {
	case filter.MemberID != nil:
		query += ` AND s.member_id = $2 ORDER BY s.year DESC, s.month DESC`
		args = append(args, *filter.MemberID)
	case filter.Month != nil && filter.Year != nil:
		query += ` AND s.month = $2 AND s.year = $3 ORDER BY m.name ASC`
		args = append(args, *filter.Month, *filter.Year)
	default:
		query += ` ORDER BY s.year DESC, s.month DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query savings: %w", err)
	}
	defer rows.Close()

	var savings []model.Saving
	for rows.Next() {
		var s model.Saving
		if err := rows.Scan(
			&s.ID,
			&s.SHGID,
			&s.MemberID,
			&s.MemberName,
			&s.Month,
			&s.Year,
			&s.Amount,
			&s.PaymentMode,
			&s.Date,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan saving: %w", err)
		}
		savings = append(savings, s)
	}

	return savings, rows.Err()
}

func (r *SavingRepository) ListBySHG(ctx context.Context, shgID uuid.UUID) ([]model.Saving, error) {
	return r.List(ctx, shgID, SavingFilter{})
}

func (r *SavingRepository) Delete(ctx context.Context, shgID, id uuid.UUID) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM savings WHERE id = $1 AND shg_id = $2`,
		id, shgID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete saving: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
