package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/model"
)

type SHGRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewSHGRepository(db *sql.DB, logger *logrus.Logger) *SHGRepository {
	return &SHGRepository{db: db, logger: logger}
}

const shgColumns = `
        id, user_id, name, registration_number, village, block, district,
        state, formation_date, bank_name, bank_account, ifsc, created_at, updated_at
`

func scanSHG(row *sql.Row) (*model.SHG, error) {
	var shg model.SHG
	err := row.Scan(
		&shg.ID,
		&shg.UserID,
		&shg.Name,
		&shg.RegistrationNumber,
		&shg.Village,
		&shg.Block,
		&shg.District,
		&shg.State,
		&shg.FormationDate,
		&shg.BankName,
		&shg.BankAccount,
		&shg.IFSC,
		&shg.CreatedAt,
		&shg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &shg, nil
}

func (r *SHGRepository) Create(ctx context.Context, shg *model.SHG) error {
	query := `
        INSERT INTO shg_info (id, user_id, name, registration_number, village, block,
                              district, state, formation_date, bank_name, bank_account,
                              ifsc, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `

	_, err := r.db.ExecContext(
		ctx,
		query,
		shg.ID,
		shg.UserID,
		shg.Name,
		shg.RegistrationNumber,
		shg.Village,
		shg.Block,
		shg.District,
		shg.State,
		shg.FormationDate,
		shg.BankName,
		shg.BankAccount,
		shg.IFSC,
		shg.CreatedAt,
		shg.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create SHG: %w", err)
	}

	return nil
}

func (r *SHGRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.SHG, error) {
	query := `SELECT ` + shgColumns + ` FROM shg_info WHERE user_id = $1`

	shg, err := scanSHG(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get SHG: %w", err)
	}

	return shg, nil
}

// Update applies COALESCE semantics: nil request fields keep stored values.
func (r *SHGRepository) Update(ctx context.Context, userID uuid.UUID, req model.SHGRequest) (*model.SHG, error) {
	query := `
        UPDATE shg_info SET
            name = COALESCE($1, name),
            registration_number = COALESCE($2, registration_number),
            village = COALESCE($3, village),
            block = COALESCE($4, block),
            district = COALESCE($5, district),
            state = COALESCE($6, state),
            formation_date = COALESCE($7, formation_date),
            bank_name = COALESCE($8, bank_name),
            bank_account = COALESCE($9, bank_account),
            ifsc = COALESCE($10, ifsc),
            updated_at = now()
        WHERE user_id = $11
        RETURNING ` + shgColumns

	shg, err := scanSHG(r.db.QueryRowContext(
		ctx,
		query,
		req.Name,
		req.RegistrationNumber,
		req.Village,
		req.Block,
		req.District,
		req.State,
		req.FormationDate,
		req.BankName,
		req.BankAccount,
		req.IFSC,
		userID,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to update SHG: %w", err)
	}

	return shg, nil
}
