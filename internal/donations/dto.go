package donations

import (
	"github.com/google/uuid"

	"github.com/foodbridge/donations-backend/pkg/db/models"
)

// CreateDonationInput captures the fields a donor submits for a new offer.
// Lat/Lon are optional manual coordinates; when absent the location label
// is resolved through the geocoding collaborator.
type CreateDonationInput struct {
	DonorPhone    string
	DonorName     string
	Food          string
	Quantity      string
	Availability  string
	LocationLabel string
	Lat           *float64
	Lon           *float64
}

// AcceptInput identifies the donation a collector wants to claim.
type AcceptInput struct {
	DonationID     uuid.UUID
	CollectorPhone string
	CollectorName  string
}

// PickupInput confirms retrieval of a claimed donation.
type PickupInput struct {
	DonationID     uuid.UUID
	CollectorPhone string
}

// CancelAcceptanceInput releases a claim back to the pool.
type CancelAcceptanceInput struct {
	DonationID     uuid.UUID
	CollectorPhone string
}

// CancelInput withdraws an unclaimed donation.
type CancelInput struct {
	DonationID uuid.UUID
	DonorPhone string
}

// NearbyQueryInput bounds the collector matching view. A nil Origin selects
// the origin-independent fallback view. RadiusKM of zero means the
// configured default.
type NearbyQueryInput struct {
	CollectorPhone string
	Origin         *NearbyOrigin
	RadiusKM       float64
}

// NearbyOrigin is the collector's current search position.
type NearbyOrigin struct {
	Lat float64
	Lon float64
}

// NearbyDonation is one entry in the matching view. DistanceKM is rounded
// for display and nil when no origin was supplied or the record has no
// resolved coordinates. Mine marks donations claimed by the requester.
type NearbyDonation struct {
	Donation   models.Donation `json:"donation"`
	DistanceKM *float64        `json:"distance_km,omitempty"`
	Mine       bool            `json:"mine"`
}

// DonationList wraps a paginated history page plus the next page cursor.
type DonationList struct {
	Donations  []models.Donation `json:"donations"`
	NextCursor string            `json:"next_cursor,omitempty"`
}
