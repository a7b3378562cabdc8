package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodbridge/donations-backend/internal/donations"
	"github.com/foodbridge/donations-backend/pkg/db/models"
	"github.com/foodbridge/donations-backend/pkg/enums"
	pkgerrors "github.com/foodbridge/donations-backend/pkg/errors"
	"github.com/foodbridge/donations-backend/pkg/pagination"
)

type ledgerKey struct {
	UserPhone  string
	Role       enums.Role
	DonationID uuid.UUID
	Event      enums.NotificationEvent
}

type stubLedgerRepo struct {
	flags map[ledgerKey]time.Time
}

func newStubLedgerRepo() *stubLedgerRepo {
	return &stubLedgerRepo{flags: map[ledgerKey]time.Time{}}
}

func (s *stubLedgerRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubLedgerRepo) MarkSeen(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent, at time.Time) error {
	key := ledgerKey{userPhone, role, donationID, event}
	if _, ok := s.flags[key]; !ok {
		s.flags[key] = at
	}
	return nil
}

func (s *stubLedgerRepo) IsSeen(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) (bool, error) {
	_, ok := s.flags[ledgerKey{userPhone, role, donationID, event}]
	return ok, nil
}

func (s *stubLedgerRepo) Clear(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) error {
	delete(s.flags, ledgerKey{userPhone, role, donationID, event})
	return nil
}

func (s *stubLedgerRepo) ClearTx(ctx context.Context, tx *gorm.DB, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) error {
	return s.Clear(ctx, userPhone, role, donationID, event)
}

func (s *stubLedgerRepo) ListSeen(ctx context.Context, userPhone string, role enums.Role) ([]models.SeenFlag, error) {
	var out []models.SeenFlag
	for key, at := range s.flags {
		if key.UserPhone == userPhone && key.Role == role {
			out = append(out, models.SeenFlag{
				UserPhone:  key.UserPhone,
				Role:       key.Role,
				DonationID: key.DonationID,
				Event:      key.Event,
				SeenAt:     at,
			})
		}
	}
	return out, nil
}

type stubDonationSource struct {
	byDonor     map[string][]models.Donation
	byCollector map[string][]models.Donation
}

func (s *stubDonationSource) ListByDonor(ctx context.Context, donorPhone string, params pagination.Params) (*donations.DonationList, error) {
	return &donations.DonationList{Donations: s.byDonor[donorPhone]}, nil
}

func (s *stubDonationSource) ListByCollector(ctx context.Context, collectorPhone string, params pagination.Params) (*donations.DonationList, error) {
	return &donations.DonationList{Donations: s.byCollector[collectorPhone]}, nil
}

type stubUserSource struct {
	known map[string]bool
}

func (s *stubUserSource) Exists(ctx context.Context, phone string) (bool, error) {
	return s.known[phone], nil
}

type ledgerFixture struct {
	service Service
	repo    *stubLedgerRepo
	source  *stubDonationSource
	users   *stubUserSource
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	repo := newStubLedgerRepo()
	source := &stubDonationSource{
		byDonor:     map[string][]models.Donation{},
		byCollector: map[string][]models.Donation{},
	}
	users := &stubUserSource{known: map[string]bool{}}

	svc, err := NewService(repo, source, users)
	require.NoError(t, err)
	return &ledgerFixture{service: svc, repo: repo, source: source, users: users}
}

func donorDonation(donor string, status enums.DonationStatus) models.Donation {
	return models.Donation{
		ID:         uuid.New(),
		DonorPhone: donor,
		Food:       "sambar rice",
		Quantity:   "3 kg",
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestMarkSeenUnknownUserIsNoOp(t *testing.T) {
	f := newLedgerFixture(t)

	err := f.service.MarkSeen(context.Background(), "9300000001", enums.RoleDonor, uuid.New(), enums.NotificationEventAccepted)
	require.NoError(t, err)
	assert.Empty(t, f.repo.flags)
}

func TestMarkSeenIdempotentThroughService(t *testing.T) {
	f := newLedgerFixture(t)
	f.users.known["9300000011"] = true
	donationID := uuid.New()

	require.NoError(t, f.service.MarkSeen(context.Background(), "9300000011", enums.RoleDonor, donationID, enums.NotificationEventAccepted))
	require.NoError(t, f.service.MarkSeen(context.Background(), "9300000011", enums.RoleDonor, donationID, enums.NotificationEventAccepted))

	seen, err := f.service.IsSeen(context.Background(), "9300000011", enums.RoleDonor, donationID, enums.NotificationEventAccepted)
	require.NoError(t, err)
	assert.True(t, seen)
	assert.Len(t, f.repo.flags, 1)
}

func TestMarkSeenRejectsUnknownEvent(t *testing.T) {
	f := newLedgerFixture(t)

	err := f.service.MarkSeen(context.Background(), "9300000021", enums.RoleDonor, uuid.New(), enums.NotificationEvent("exploded"))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	err = f.service.MarkSeen(context.Background(), "9300000021", enums.Role("admin"), uuid.New(), enums.NotificationEventAccepted)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestPendingSurfacesLifecycleEventsOnce(t *testing.T) {
	f := newLedgerFixture(t)
	donor := "9300000031"
	f.users.known[donor] = true

	accepted := donorDonation(donor, enums.DonationStatusAccepted)
	f.source.byDonor[donor] = []models.Donation{accepted}

	pending, err := f.service.Pending(context.Background(), donor, enums.RoleDonor)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, enums.NotificationEventAccepted, pending[0].Event)
	assert.Equal(t, accepted.ID, pending[0].Donation.ID)

	require.NoError(t, f.service.MarkSeen(context.Background(), donor, enums.RoleDonor, accepted.ID, enums.NotificationEventAccepted))

	pending, err = f.service.Pending(context.Background(), donor, enums.RoleDonor)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// pickup surfaces a fresh event, independent of the seen accepted flag
	pickedUp := accepted
	pickedUp.Status = enums.DonationStatusPickedUp
	f.source.byDonor[donor] = []models.Donation{pickedUp}

	pending, err = f.service.Pending(context.Background(), donor, enums.RoleDonor)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, enums.NotificationEventPickedUp, pending[0].Event)

	seen, err := f.service.IsSeen(context.Background(), donor, enums.RoleDonor, accepted.ID, enums.NotificationEventAccepted)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestPendingSurfacesAcceptanceCancellation(t *testing.T) {
	f := newLedgerFixture(t)
	donor := "9300000041"
	f.users.known[donor] = true

	released := donorDonation(donor, enums.DonationStatusActive)
	at := time.Now().UTC()
	released.AcceptanceCancelledAt = &at
	f.source.byDonor[donor] = []models.Donation{released}

	pending, err := f.service.Pending(context.Background(), donor, enums.RoleDonor)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, enums.NotificationEventAcceptanceCancelled, pending[0].Event)
}

func TestPendingFreshActiveDonationIsQuiet(t *testing.T) {
	f := newLedgerFixture(t)
	donor := "9300000051"
	f.users.known[donor] = true

	f.source.byDonor[donor] = []models.Donation{donorDonation(donor, enums.DonationStatusActive)}

	pending, err := f.service.Pending(context.Background(), donor, enums.RoleDonor)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPendingCollectorTracksPickups(t *testing.T) {
	f := newLedgerFixture(t)
	collector := "9300000061"
	f.users.known[collector] = true

	picked := donorDonation("9300000062", enums.DonationStatusPickedUp)
	picked.CollectorPhone = &collector
	f.source.byCollector[collector] = []models.Donation{picked}

	pending, err := f.service.Pending(context.Background(), collector, enums.RoleCollector)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, enums.NotificationEventPickedUp, pending[0].Event)
}
