package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/crypto"
	"github.com/riyakoli232311/SHG-management/internal/model"
	"github.com/riyakoli232311/SHG-management/internal/repository"
)

// MemberService manages the group roster. Aadhaar numbers are encrypted
// before they reach the database; an HMAC digest of the number enforces
// uniqueness without storing the plain value.
type MemberService struct {
	memberRepo *repository.MemberRepository
	pgp        *crypto.PGPManager
	hmacKey    []byte
	logger     *logrus.Logger
}

func NewMemberService(
	memberRepo *repository.MemberRepository,
	pgp *crypto.PGPManager,
	hmacKey []byte,
	logger *logrus.Logger,
) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		pgp:        pgp,
		hmacKey:    hmacKey,
		logger:     logger,
	}
}

func (s *MemberService) aadhaarDigest(aadhaar string) string {
	mac := hmac.New(sha256.New, s.hmacKey)
	mac.Write([]byte(aadhaar))
	return hex.EncodeToString(mac.Sum(nil))
}

func validAadhaar(aadhaar string) bool {
	if len(aadhaar) != 12 {
		return false
	}
	for _, c := range aadhaar {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// sealAadhaar produces the stored pair (ciphertext, digest) for a number.
func (s *MemberService) sealAadhaar(aadhaar string) (*string, *string, error) {
	if !validAadhaar(aadhaar) {
		return nil, nil, fmt.Errorf("%w: aadhar must be 12 digits", ErrValidation)
	}

	ciphertext, err := s.pgp.Encrypt(aadhaar)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encrypt aadhar: %w", err)
	}
	digest := s.aadhaarDigest(aadhaar)

	return &ciphertext, &digest, nil
}

// openRecord decrypts the stored Aadhaar back onto the member, if present.
func (s *MemberService) openRecord(rec *repository.MemberRecord) (*model.Member, error) {
	member := rec.Member
	if rec.AadhaarEncrypted != nil {
		plain, err := s.pgp.Decrypt(*rec.AadhaarEncrypted)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt aadhar: %w", err)
		}
		member.Aadhaar = &plain
	}
	return &member, nil
}

func (s *MemberService) Create(ctx context.Context, shgID uuid.UUID, req model.MemberRequest) (*model.Member, error) {
	if req.Name == nil || *req.Name == "" {
		return nil, fmt.Errorf("%w: member name is required", ErrValidation)
	}

	now := time.Now()
	rec := &repository.MemberRecord{
		Member: model.Member{
			ID:         uuid.New(),
			SHGID:      shgID,
			Name:       *req.Name,
			Phone:      req.Phone,
			Village:    req.Village,
			Age:        req.Age,
			Income:     decimal.Zero,
			Status:     model.MemberStatusActive,
			JoinedDate: now,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
	if req.Income != nil {
		rec.Member.Income = *req.Income
	}
	if req.Status != nil {
		rec.Member.Status = *req.Status
	}
	if req.JoinedDate != nil {
		rec.Member.JoinedDate = *req.JoinedDate
	}
	if req.Aadhaar != nil && *req.Aadhaar != "" {
		ciphertext, digest, err := s.sealAadhaar(*req.Aadhaar)
		if err != nil {
			return nil, err
		}
		rec.AadhaarEncrypted = ciphertext
		rec.AadhaarHMAC = digest
	}

	if err := s.memberRepo.Create(ctx, rec); err != nil {
		s.logger.WithError(err).Error("Failed to create member")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"member_id": rec.Member.ID,
		"shg_id":    shgID,
	}).Info("Member added")

	return s.openRecord(rec)
}

func (s *MemberService) Get(ctx context.Context, shgID, id uuid.UUID) (*model.Member, error) {
	rec, err := s.memberRepo.GetByID(ctx, shgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: member not found", ErrNotFound)
		}
		return nil, err
	}
	return s.openRecord(rec)
}

func (s *MemberService) List(ctx context.Context, shgID uuid.UUID) ([]model.Member, error) {
	records, err := s.memberRepo.ListBySHG(ctx, shgID)
	if err != nil {
		return nil, err
	}

	members := make([]model.Member, 0, len(records))
	for i := range records {
		member, err := s.openRecord(&records[i])
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}

	return members, nil
}

func (s *MemberService) Update(ctx context.Context, shgID, id uuid.UUID, req model.MemberRequest) (*model.Member, error) {
	rec := &repository.MemberRecord{}
	if req.Aadhaar != nil && *req.Aadhaar != "" {
		ciphertext, digest, err := s.sealAadhaar(*req.Aadhaar)
		if err != nil {
			return nil, err
		}
		rec.AadhaarEncrypted = ciphertext
		rec.AadhaarHMAC = digest
	}

	updated, err := s.memberRepo.Update(ctx, shgID, id, rec, req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: member not found", ErrNotFound)
		}
		s.logger.WithError(err).Error("Failed to update member")
		return nil, err
	}

	s.logger.WithField("member_id", id).Info("Member updated")
	return s.openRecord(updated)
}

func (s *MemberService) Delete(ctx context.Context, shgID, id uuid.UUID) error {
	if err := s.memberRepo.Delete(ctx, shgID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: member not found", ErrNotFound)
		}
		s.logger.WithError(err).Error("Failed to delete member")
		return err
	}

	s.logger.WithField("member_id", id).Info("Member removed")
	return nil
}
