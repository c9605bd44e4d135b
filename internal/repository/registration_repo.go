package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/example/tripbook/internal/models"
)

// RegistrationRepository persists tickets handed out by the first
// registration step.
type RegistrationRepository interface {
	Create(ctx context.Context, ticket *models.RegistrationTicket) error

	// Consume marks the ticket used if it belongs to phone, is unused and
	// has not expired. It reports whether a ticket was consumed.
	Consume(ctx context.Context, phone, token string, now time.Time) (bool, error)
}

type registrationRepository struct {
	db *gorm.DB
}

// NewRegistrationRepository builds a RegistrationRepository on db.
func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) Create(ctx context.Context, ticket *models.RegistrationTicket) error {
	if err := conn(ctx, r.db).Create(ticket).Error; err != nil {
		return fmt.Errorf("insert registration ticket: %w", err)
	}
	return nil
}

func (r *registrationRepository) Consume(ctx context.Context, phone, token string, now time.Time) (bool, error) {
	res := conn(ctx, r.db).Model(&models.RegistrationTicket{}).
		Where("token = ? AND phone = ? AND used_at IS NULL AND expires_at > ?", token, phone, now).
		Updates(map[string]interface{}{
			"used_at":    now,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("consume registration ticket: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
