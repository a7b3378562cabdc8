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

// Repository defines persistence operations for the donation pool. The
// guarded transition methods compare the expected status (and collector,
// where relevant) inside the UPDATE itself and report how many rows moved,
// so two racing callers cannot both win the same record.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, donation *models.Donation) (*models.Donation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	ListActive(ctx context.Context) ([]models.Donation, error)
	ListVisibleToCollector(ctx context.Context, collectorPhone string) ([]models.Donation, error)
	ListByDonor(ctx context.Context, donorPhone string, params pagination.Params) (*DonationList, error)
	ListByCollector(ctx context.Context, collectorPhone string, params pagination.Params) (*DonationList, error)
	ListByCollectorAndStatus(ctx context.Context, collectorPhone string, statuses []enums.DonationStatus, params pagination.Params) (*DonationList, error)
	ClaimDonation(ctx context.Context, id uuid.UUID, collectorPhone, collectorName string, at time.Time) (int64, error)
	MarkPickedUp(ctx context.Context, id uuid.UUID, collectorPhone string, at time.Time) (int64, error)
	ReleaseClaim(ctx context.Context, id uuid.UUID, collectorPhone string, at time.Time) (int64, error)
	CancelActive(ctx context.Context, id uuid.UUID, donorPhone string, at time.Time) (int64, error)
}
