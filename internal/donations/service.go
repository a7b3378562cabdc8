package donations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodbridge/donations-backend/pkg/db/models"
	"github.com/foodbridge/donations-backend/pkg/enums"
	pkgerrors "github.com/foodbridge/donations-backend/pkg/errors"
	"github.com/foodbridge/donations-backend/pkg/geo"
	"github.com/foodbridge/donations-backend/pkg/geocode"
	"github.com/foodbridge/donations-backend/pkg/metrics"
	"github.com/foodbridge/donations-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type moderationGate interface {
	IsBlocked(ctx context.Context, phone string) (bool, error)
}

// seenResetter clears acknowledgment flags through the transition's own
// transaction handle, so a rolled-back transition leaves the ledger
// untouched.
type seenResetter interface {
	ClearTx(ctx context.Context, tx *gorm.DB, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) error
}

// Service is the only entry point through which donation transitions are
// requested. Each mutation validates the actor, applies the guarded store
// transition, then resets the counterpart's acknowledgment flag.
type Service interface {
	Create(ctx context.Context, input CreateDonationInput) (*models.Donation, error)
	Accept(ctx context.Context, input AcceptInput) (*models.Donation, error)
	ConfirmPickup(ctx context.Context, input PickupInput) (*models.Donation, error)
	CancelAcceptance(ctx context.Context, input CancelAcceptanceInput) (*models.Donation, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Donation, error)
	Nearby(ctx context.Context, input NearbyQueryInput) ([]NearbyDonation, error)
	HistoryByDonor(ctx context.Context, donorPhone string, params pagination.Params) (*DonationList, error)
	HistoryByCollector(ctx context.Context, collectorPhone string, statuses []enums.DonationStatus, params pagination.Params) (*DonationList, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	geocoder   geocode.Geocoder
	moderation moderationGate
	seen       seenResetter
	metrics    *metrics.LifecycleMetrics
	radiusKM   float64
	now        func() time.Time
}

// NewService builds the lifecycle coordinator with the required dependencies.
func NewService(repo Repository, tx txRunner, geocoder geocode.Geocoder, moderation moderationGate, seen seenResetter, lifecycle *metrics.LifecycleMetrics, radiusKM float64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("donations repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if geocoder == nil {
		return nil, fmt.Errorf("geocoder required")
	}
	if moderation == nil {
		return nil, fmt.Errorf("moderation gate required")
	}
	if seen == nil {
		return nil, fmt.Errorf("seen resetter required")
	}
	if radiusKM <= 0 {
		return nil, fmt.Errorf("radius must be positive")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		geocoder:   geocoder,
		moderation: moderation,
		seen:       seen,
		metrics:    lifecycle,
		radiusKM:   radiusKM,
		now:        time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateDonationInput) (*models.Donation, error) {
	donorPhone := strings.TrimSpace(input.DonorPhone)
	if donorPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "donor identity missing")
	}
	missing := []string{}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"food", input.Food},
		{"quantity", input.Quantity},
		{"availability", input.Availability},
		{"location_label", input.LocationLabel},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").
			WithDetails(map[string]any{"fields": missing})
	}
	if (input.Lat == nil) != (input.Lon == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lat and lon must be supplied together")
	}

	if err := s.requireNotBlocked(ctx, donorPhone); err != nil {
		return nil, err
	}

	lat, lon := input.Lat, input.Lon
	if lat == nil {
		point, err := s.geocoder.Geocode(ctx, input.LocationLabel)
		if err != nil {
			if errors.Is(err, geocode.ErrNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeLocationUnresolved, "location could not be resolved")
			}
			return nil, err
		}
		lat, lon = &point.Lat, &point.Lon
	}

	donation := &models.Donation{
		DonorPhone:    donorPhone,
		DonorName:     strings.TrimSpace(input.DonorName),
		Food:          strings.TrimSpace(input.Food),
		Quantity:      strings.TrimSpace(input.Quantity),
		Availability:  strings.TrimSpace(input.Availability),
		LocationLabel: strings.TrimSpace(input.LocationLabel),
		Lat:           lat,
		Lon:           lon,
		Status:        enums.DonationStatusActive,
	}
	created, err := s.repo.Create(ctx, donation)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create donation")
	}
	return created, nil
}

func (s *service) Accept(ctx context.Context, input AcceptInput) (*models.Donation, error) {
	collectorPhone := strings.TrimSpace(input.CollectorPhone)
	if input.DonationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}
	if collectorPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "collector identity missing")
	}
	if err := s.requireNotBlocked(ctx, collectorPhone); err != nil {
		return nil, err
	}

	var result *models.Donation
	err := s.transition(ctx, "accept", func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		donation, err := loadDonation(ctx, repo, input.DonationID)
		if err != nil {
			return err
		}
		if donation.Status != enums.DonationStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "donation is not open for claims")
		}

		at := s.now().UTC()
		rows, err := repo.ClaimDonation(ctx, donation.ID, collectorPhone, strings.TrimSpace(input.CollectorName), at)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim donation")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "donation was claimed by someone else")
		}

		if err := s.seen.ClearTx(ctx, tx, donation.DonorPhone, enums.RoleDonor, donation.ID, enums.NotificationEventAccepted); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset acceptance notification")
		}

		result, err = loadDonation(ctx, repo, donation.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ConfirmPickup(ctx context.Context, input PickupInput) (*models.Donation, error) {
	collectorPhone := strings.TrimSpace(input.CollectorPhone)
	if input.DonationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}
	if collectorPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "collector identity missing")
	}
	if err := s.requireNotBlocked(ctx, collectorPhone); err != nil {
		return nil, err
	}

	var result *models.Donation
	err := s.transition(ctx, "pickup", func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		donation, err := loadDonation(ctx, repo, input.DonationID)
		if err != nil {
			return err
		}
		if donation.Status != enums.DonationStatusAccepted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "donation is not awaiting pickup")
		}
		if donation.CollectorPhone == nil || *donation.CollectorPhone != collectorPhone {
			return pkgerrors.New(pkgerrors.CodeForbidden, "donation is claimed by a different collector")
		}

		rows, err := repo.MarkPickedUp(ctx, donation.ID, collectorPhone, s.now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark donation picked up")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "donation changed while confirming pickup")
		}

		if err := s.seen.ClearTx(ctx, tx, donation.DonorPhone, enums.RoleDonor, donation.ID, enums.NotificationEventPickedUp); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset pickup notification")
		}

		result, err = loadDonation(ctx, repo, donation.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) CancelAcceptance(ctx context.Context, input CancelAcceptanceInput) (*models.Donation, error) {
	collectorPhone := strings.TrimSpace(input.CollectorPhone)
	if input.DonationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}
	if collectorPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "collector identity missing")
	}
	if err := s.requireNotBlocked(ctx, collectorPhone); err != nil {
		return nil, err
	}

	var result *models.Donation
	err := s.transition(ctx, "cancel_acceptance", func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		donation, err := loadDonation(ctx, repo, input.DonationID)
		if err != nil {
			return err
		}
		if donation.Status != enums.DonationStatusAccepted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "donation has no claim to release")
		}
		if donation.CollectorPhone == nil || *donation.CollectorPhone != collectorPhone {
			return pkgerrors.New(pkgerrors.CodeForbidden, "donation is claimed by a different collector")
		}

		rows, err := repo.ReleaseClaim(ctx, donation.ID, collectorPhone, s.now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release claim")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "donation changed while releasing claim")
		}

		if err := s.seen.ClearTx(ctx, tx, donation.DonorPhone, enums.RoleDonor, donation.ID, enums.NotificationEventAcceptanceCancelled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset claim release notification")
		}

		result, err = loadDonation(ctx, repo, donation.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Donation, error) {
	donorPhone := strings.TrimSpace(input.DonorPhone)
	if input.DonationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}
	if donorPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "donor identity missing")
	}
	if err := s.requireNotBlocked(ctx, donorPhone); err != nil {
		return nil, err
	}

	var result *models.Donation
	err := s.transition(ctx, "cancel", func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		donation, err := loadDonation(ctx, repo, input.DonationID)
		if err != nil {
			return err
		}
		if donation.DonorPhone != donorPhone {
			return pkgerrors.New(pkgerrors.CodeForbidden, "donation belongs to a different donor")
		}
		if donation.Status != enums.DonationStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only unclaimed donations can be cancelled")
		}

		rows, err := repo.CancelActive(ctx, donation.ID, donorPhone, s.now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel donation")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "donation changed while cancelling")
		}

		if err := s.seen.ClearTx(ctx, tx, donation.DonorPhone, enums.RoleDonor, donation.ID, enums.NotificationEventCancelled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset cancellation notification")
		}

		result, err = loadDonation(ctx, repo, donation.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Nearby(ctx context.Context, input NearbyQueryInput) ([]NearbyDonation, error) {
	collectorPhone := strings.TrimSpace(input.CollectorPhone)
	if collectorPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "collector identity missing")
	}

	records, err := s.repo.ListVisibleToCollector(ctx, collectorPhone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list visible donations")
	}

	// No origin means the origin-independent fallback view, unfiltered by
	// distance.
	if input.Origin == nil {
		results := make([]NearbyDonation, 0, len(records))
		for _, record := range records {
			results = append(results, NearbyDonation{
				Donation: record,
				Mine:     isClaimedBy(record, collectorPhone),
			})
		}
		return results, nil
	}

	radius := input.RadiusKM
	if radius <= 0 {
		radius = s.radiusKM
	}
	origin := geo.Point{Lat: input.Origin.Lat, Lon: input.Origin.Lon}

	results := make([]NearbyDonation, 0, len(records))
	for _, record := range records {
		mine := isClaimedBy(record, collectorPhone)

		var distance *float64
		if record.HasCoordinates() {
			d := geo.DistanceKM(origin, geo.Point{Lat: *record.Lat, Lon: *record.Lon})
			rounded := geo.RoundKM(d)
			distance = &rounded
			// Inclusion uses the unrounded distance. A collector's own
			// claim stays visible regardless of range.
			if !mine && d > radius {
				continue
			}
		} else if !mine {
			continue
		}

		results = append(results, NearbyDonation{
			Donation:   record,
			DistanceKM: distance,
			Mine:       mine,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].DistanceKM, results[j].DistanceKM
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
	return results, nil
}

func (s *service) HistoryByDonor(ctx context.Context, donorPhone string, params pagination.Params) (*DonationList, error) {
	donorPhone = strings.TrimSpace(donorPhone)
	if donorPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "donor identity missing")
	}
	list, err := s.repo.ListByDonor(ctx, donorPhone, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list donor history")
	}
	return list, nil
}

func (s *service) HistoryByCollector(ctx context.Context, collectorPhone string, statuses []enums.DonationStatus, params pagination.Params) (*DonationList, error) {
	collectorPhone = strings.TrimSpace(collectorPhone)
	if collectorPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "collector identity missing")
	}
	for _, status := range statuses {
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").WithDetails(map[string]any{"status": string(status)})
		}
	}
	list, err := s.repo.ListByCollectorAndStatus(ctx, collectorPhone, statuses, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list collector history")
	}
	return list, nil
}

// transition runs one guarded state change and records its outcome.
func (s *service) transition(ctx context.Context, name string, fn func(tx *gorm.DB) error) error {
	start := s.now()
	err := s.tx.WithTx(ctx, fn)
	s.metrics.ObserveDuration(name, s.now().Sub(start))
	if err != nil {
		s.metrics.IncFailure(name, failureReason(err))
		return err
	}
	s.metrics.IncSuccess(name)
	return nil
}

func (s *service) requireNotBlocked(ctx context.Context, phone string) error {
	blocked, err := s.moderation.IsBlocked(ctx, phone)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check moderation gate")
	}
	if blocked {
		return pkgerrors.New(pkgerrors.CodeForbidden, "account is blocked")
	}
	return nil
}

func loadDonation(ctx context.Context, repo Repository, id uuid.UUID) (*models.Donation, error) {
	donation, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donation")
	}
	return donation, nil
}

func isClaimedBy(donation models.Donation, collectorPhone string) bool {
	return donation.Status == enums.DonationStatusAccepted &&
		donation.CollectorPhone != nil &&
		*donation.CollectorPhone == collectorPhone
}

func failureReason(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return strings.ToLower(string(typed.Code()))
	}
	return "internal"
}
