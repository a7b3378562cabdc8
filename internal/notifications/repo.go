package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodbridge/donations-backend/pkg/db/models"
	"github.com/foodbridge/donations-backend/pkg/enums"
)

// Repository exposes the per-user seen ledger. Every write is idempotent:
// marking twice and clearing an absent row are both no-ops.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	MarkSeen(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent, at time.Time) error
	IsSeen(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) (bool, error)
	Clear(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) error
	ClearTx(ctx context.Context, tx *gorm.DB, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) error
	ListSeen(ctx context.Context, userPhone string, role enums.Role) ([]models.SeenFlag, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a seen-ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) MarkSeen(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent, at time.Time) error {
	flag := models.SeenFlag{
		UserPhone:  userPhone,
		Role:       role,
		DonationID: donationID,
		Event:      event,
		SeenAt:     at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&flag).Error
}

func (r *repositoryImpl) IsSeen(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SeenFlag{}).
		Where("user_phone = ? AND role = ? AND donation_id = ? AND event = ?", userPhone, role, donationID, event).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) Clear(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) error {
	return r.db.WithContext(ctx).
		Where("user_phone = ? AND role = ? AND donation_id = ? AND event = ?", userPhone, role, donationID, event).
		Delete(&models.SeenFlag{}).Error
}

// ClearTx clears a flag through the supplied transaction handle so the
// write commits or rolls back with the caller's other mutations. A nil tx
// falls back to the repository's own connection.
func (r *repositoryImpl) ClearTx(ctx context.Context, tx *gorm.DB, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) error {
	return r.WithTx(tx).Clear(ctx, userPhone, role, donationID, event)
}

func (r *repositoryImpl) ListSeen(ctx context.Context, userPhone string, role enums.Role) ([]models.SeenFlag, error) {
	var flags []models.SeenFlag
	err := r.db.WithContext(ctx).
		Where("user_phone = ? AND role = ?", userPhone, role).
		Find(&flags).Error
	if err != nil {
		return nil, err
	}
	return flags, nil
}
