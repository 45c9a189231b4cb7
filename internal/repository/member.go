package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/model"
)

// MemberRecord is the stored shape of a member: the Aadhaar number is kept
// only as armored ciphertext plus an HMAC digest for uniqueness checks.
type MemberRecord struct {
	Member           model.Member
	AadhaarEncrypted *string
	AadhaarHMAC      *string
}

type MemberRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewMemberRepository(db *sql.DB, logger *logrus.Logger) *MemberRepository {
	return &MemberRepository{db: db, logger: logger}
}

const memberColumns = `
        id, shg_id, name, phone, village, age, income,
        aadhaar_encrypted, aadhaar_hmac, status, joined_date, created_at, updated_at
`

func scanMemberRow(scan func(dest ...any) error) (*MemberRecord, error) {
	var rec MemberRecord
	err := scan(
		&rec.Member.ID,
		&rec.Member.SHGID,
		&rec.Member.Name,
		&rec.Member.Phone,
		&rec.Member.Village,
		&rec.Member.Age,
		&rec.Member.Income,
		&rec.AadhaarEncrypted,
		&rec.AadhaarHMAC,
		&rec.Member.Status,
		&rec.Member.JoinedDate,
		&rec.Member.CreatedAt,
		&rec.Member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *MemberRepository) Create(ctx context.Context, rec *MemberRecord) error {
	query := `
        INSERT INTO members (id, shg_id, name, phone, village, age, income,
                             aadhaar_encrypted, aadhaar_hmac, status, joined_date,
                             created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `

	_, err := r.db.ExecContext(
		ctx,
		query,
		rec.Member.ID,
		rec.Member.SHGID,
		rec.Member.Name,
		rec.Member.Phone,
		rec.Member.Village,
		rec.Member.Age,
		rec.Member.Income,
		rec.AadhaarEncrypted,
		rec.AadhaarHMAC,
		rec.Member.Status,
		rec.Member.JoinedDate,
		rec.Member.CreatedAt,
		rec.Member.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" {
				return fmt.Errorf("member with this aadhar already exists")
			}
		}
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

func (r *MemberRepository) GetByID(ctx context.Context, shgID, id uuid.UUID) (*MemberRecord, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 AND shg_id = $2`

	rec, err := scanMemberRow(r.db.QueryRowContext(ctx, query, id, shgID).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return rec, nil
}

func (r *MemberRepository) ListBySHG(ctx context.Context, shgID uuid.UUID) ([]MemberRecord, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE shg_id = $1 ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, shgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var records []MemberRecord
	for rows.Next() {
		rec, err := scanMemberRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

func (r *MemberRepository) Update(ctx context.Context, shgID, id uuid.UUID, rec *MemberRecord, req model.MemberRequest) (*MemberRecord, error) {
	query := `
        UPDATE members SET
            name = COALESCE($1, name),
            phone = COALESCE($2, phone),
            village = COALESCE($3, village),
            age = COALESCE($4, age),
            income = COALESCE($5, income),
            aadhaar_encrypted = COALESCE($6, aadhaar_encrypted),
            aadhaar_hmac = COALESCE($7, aadhaar_hmac),
            status = COALESCE($8, status),
            joined_date = COALESCE($9, joined_date),
            updated_at = now()
        WHERE id = $10 AND shg_id = $11
        RETURNING ` + memberColumns

	updated, err := scanMemberRow(r.db.QueryRowContext(
		ctx,
		query,
		req.Name,
		req.Phone,
		req.Village,
		req.Age,
		req.Income,
		rec.AadhaarEncrypted,
		rec.AadhaarHMAC,
		req.Status,
		req.JoinedDate,
		id,
		shgID,
	).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	return updated, nil
}

func (r *MemberRepository) Delete(ctx context.Context, shgID, id uuid.UUID) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM members WHERE id = $1 AND shg_id = $2`,
		id, shgID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
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

// ExistsInSHG verifies a member belongs to the given group before loans or
// savings are recorded against them.
func (r *MemberRepository) ExistsInSHG(ctx context.Context, shgID, memberID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM members WHERE id = $1 AND shg_id = $2)`,
		memberID, shgID,
	).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("failed to check member: %w", err)
	}

	return exists, nil
}
