package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/tripbook/internal/models"
)

// VerificationRepository persists one-time verification codes.
type VerificationRepository interface {
	// Create inserts a freshly issued code.
	Create(ctx context.Context, code *models.VerificationCode) error

	// CountSince counts codes issued to phone strictly after since.
	CountSince(ctx context.Context, phone string, since time.Time) (int64, error)

	// FindActive returns the newest unused, unexpired code matching all fields.
	FindActive(ctx context.Context, phone, code string, typ models.VerificationType, now time.Time) (*models.VerificationCode, error)

	// MarkUsed flips used to true. It reports false when the code was already used.
	MarkUsed(ctx context.Context, id uuid.UUID) (bool, error)
}

type verificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository builds a VerificationRepository on db.
func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) Create(ctx context.Context, code *models.VerificationCode) error {
	if err := conn(ctx, r.db).Create(code).Error; err != nil {
		return fmt.Errorf("insert verification code: %w", err)
	}
	return nil
}

func (r *verificationRepository) CountSince(ctx context.Context, phone string, since time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.VerificationCode{}).
		Where("phone = ? AND created_at > ?", phone, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count verification codes: %w", err)
	}
	return count, nil
}

func (r *verificationRepository) FindActive(ctx context.Context, phone, code string, typ models.VerificationType, now time.Time) (*models.VerificationCode, error) {
	var found models.VerificationCode
	err := conn(ctx, r.db).
		Where("phone = ? AND code = ? AND type = ? AND used = ? AND expires_at > ?", phone, code, typ, false, now).
		Order("created_at desc").
		First(&found).Error
	if err != nil {
		return nil, translate(err)
	}
	return &found, nil
}

func (r *verificationRepository) MarkUsed(ctx context.Context, id uuid.UUID) (bool, error) {
	res := conn(ctx, r.db).Model(&models.VerificationCode{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	if res.Error != nil {
		return false, fmt.Errorf("mark verification code used: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
