package donations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodbridge/donations-backend/pkg/db/models"
	"github.com/foodbridge/donations-backend/pkg/enums"
	"github.com/foodbridge/donations-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a donations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	if err := r.db.WithContext(ctx).Create(donation).Error; err != nil {
		return nil, err
	}
	return donation, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	var donation models.Donation
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&donation).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.Donation, error) {
	var records []models.Donation
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.DonationStatusActive).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) ListVisibleToCollector(ctx context.Context, collectorPhone string) ([]models.Donation, error) {
	var records []models.Donation
	err := r.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND collector_phone = ?)",
			enums.DonationStatusActive, enums.DonationStatusAccepted, collectorPhone).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) ListByDonor(ctx context.Context, donorPhone string, params pagination.Params) (*DonationList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("donor_phone = ?", donorPhone)
	return r.listPage(ctx, query, params)
}

func (r *repository) ListByCollector(ctx context.Context, collectorPhone string, params pagination.Params) (*DonationList, error) {
	return r.ListByCollectorAndStatus(ctx, collectorPhone, nil, params)
}

func (r *repository) ListByCollectorAndStatus(ctx context.Context, collectorPhone string, statuses []enums.DonationStatus, params pagination.Params) (*DonationList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("collector_phone = ?", collectorPhone)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	return r.listPage(ctx, query, params)
}

func (r *repository) listPage(ctx context.Context, query *gorm.DB, params pagination.Params) (*DonationList, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	decodedCursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var records []models.Donation
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limitWithBuffer).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(records) > normalizedLimit {
		records = records[:normalizedLimit]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	return &DonationList{
		Donations:  records,
		NextCursor: nextCursor,
	}, nil
}

func (r *repository) ClaimDonation(ctx context.Context, id uuid.UUID, collectorPhone, collectorName string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("id = ? AND status = ?", id, enums.DonationStatusActive).
		Updates(map[string]any{
			"status":                  enums.DonationStatusAccepted,
			"collector_phone":         collectorPhone,
			"collector_name":          collectorName,
			"accepted_at":             at,
			"acceptance_cancelled_at": nil,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) MarkPickedUp(ctx context.Context, id uuid.UUID, collectorPhone string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("id = ? AND status = ? AND collector_phone = ?", id, enums.DonationStatusAccepted, collectorPhone).
		Updates(map[string]any{
			"status":       enums.DonationStatusPickedUp,
			"picked_up_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) ReleaseClaim(ctx context.Context, id uuid.UUID, collectorPhone string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("id = ? AND status = ? AND collector_phone = ?", id, enums.DonationStatusAccepted, collectorPhone).
		Updates(map[string]any{
			"status":                  enums.DonationStatusActive,
			"collector_phone":         nil,
			"collector_name":          nil,
			"accepted_at":             nil,
			"acceptance_cancelled_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) CancelActive(ctx context.Context, id uuid.UUID, donorPhone string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("id = ? AND status = ? AND donor_phone = ?", id, enums.DonationStatusActive, donorPhone).
		Updates(map[string]any{
			"status":       enums.DonationStatusCancelled,
			"cancelled_at": at,
		})
	return res.RowsAffected, res.Error
}
