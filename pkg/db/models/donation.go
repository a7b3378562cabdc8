package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodbridge/donations-backend/pkg/enums"
)

// Donation is a surplus-food offer and its lifecycle state. Records are
// never deleted; terminal statuses keep the row for history views.
type Donation struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DonorPhone     string               `gorm:"column:donor_phone;type:text;not null;index" json:"donor_phone"`
	DonorName      string               `gorm:"column:donor_name;type:text;not null" json:"donor_name"`
	Food           string               `gorm:"column:food;type:text;not null" json:"food"`
	Quantity       string               `gorm:"column:quantity;type:text;not null" json:"quantity"`
	Availability   string               `gorm:"column:availability;type:text;not null" json:"availability"`
	LocationLabel  string               `gorm:"column:location_label;type:text;not null" json:"location_label"`
	Lat            *float64             `gorm:"column:lat" json:"lat"`
	Lon            *float64             `gorm:"column:lon" json:"lon"`
	Status         enums.DonationStatus `gorm:"column:status;type:text;not null;default:'active';index" json:"status"`
	CollectorPhone *string              `gorm:"column:collector_phone;type:text;index" json:"collector_phone,omitempty"`
	CollectorName  *string              `gorm:"column:collector_name;type:text" json:"collector_name,omitempty"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	AcceptedAt     *time.Time           `gorm:"column:accepted_at" json:"accepted_at,omitempty"`
	PickedUpAt     *time.Time           `gorm:"column:picked_up_at" json:"picked_up_at,omitempty"`
	CancelledAt    *time.Time           `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	// AcceptanceCancelledAt survives the revert to active so the donor can
	// still be told their claim fell through. Cleared on the next claim.
	AcceptanceCancelledAt *time.Time `gorm:"column:acceptance_cancelled_at" json:"acceptance_cancelled_at,omitempty"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// HasCoordinates reports whether both coordinates are resolved.
func (d Donation) HasCoordinates() bool {
	return d.Lat != nil && d.Lon != nil
}
