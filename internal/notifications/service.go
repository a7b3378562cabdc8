package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foodbridge/donations-backend/internal/donations"
	"github.com/foodbridge/donations-backend/pkg/db/models"
	"github.com/foodbridge/donations-backend/pkg/enums"
	pkgerrors "github.com/foodbridge/donations-backend/pkg/errors"
	"github.com/foodbridge/donations-backend/pkg/pagination"
)

// donationSource supplies the donation records whose state drives a user's
// pending feed. Events are derived from state rather than stored, so the
// ledger only has to remember acknowledgments.
type donationSource interface {
	ListByDonor(ctx context.Context, donorPhone string, params pagination.Params) (*donations.DonationList, error)
	ListByCollector(ctx context.Context, collectorPhone string, params pagination.Params) (*donations.DonationList, error)
}

type userSource interface {
	Exists(ctx context.Context, phone string) (bool, error)
}

// PendingNotification is one unacknowledged lifecycle event for a viewer.
type PendingNotification struct {
	Donation models.Donation         `json:"donation"`
	Event    enums.NotificationEvent `json:"event"`
}

// Service defines the seen-ledger operations plus the derived pending feed.
type Service interface {
	MarkSeen(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) error
	Clear(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) error
	IsSeen(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) (bool, error)
	Pending(ctx context.Context, userPhone string, role enums.Role) ([]PendingNotification, error)
}

type service struct {
	repo      Repository
	donations donationSource
	users     userSource
	now       func() time.Time
}

// NewService wires the seen-ledger dependencies.
func NewService(repo Repository, donationSrc donationSource, users userSource) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "seen ledger repository required")
	}
	if donationSrc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "donation source required")
	}
	if users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user source required")
	}
	return &service{
		repo:      repo,
		donations: donationSrc,
		users:     users,
		now:       time.Now,
	}, nil
}

func (s *service) MarkSeen(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) error {
	userPhone, err := s.validateKey(userPhone, role, donationID, event)
	if err != nil {
		return err
	}

	known, err := s.users.Exists(ctx, userPhone)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up user")
	}
	// unknown users are a silent no-op, the ledger never fails a viewer
	if !known {
		return nil
	}

	if err := s.repo.MarkSeen(ctx, userPhone, role, donationID, event, s.now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark event seen")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) error {
	userPhone, err := s.validateKey(userPhone, role, donationID, event)
	if err != nil {
		return err
	}
	if err := s.repo.Clear(ctx, userPhone, role, donationID, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear seen flag")
	}
	return nil
}

func (s *service) IsSeen(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) (bool, error) {
	userPhone, err := s.validateKey(userPhone, role, donationID, event)
	if err != nil {
		return false, err
	}
	seen, err := s.repo.IsSeen(ctx, userPhone, role, donationID, event)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read seen flag")
	}
	return seen, nil
}

func (s *service) Pending(ctx context.Context, userPhone string, role enums.Role) ([]PendingNotification, error) {
	userPhone = strings.TrimSpace(userPhone)
	if userPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	params := pagination.Params{Limit: pagination.MaxLimit}
	var list *donations.DonationList
	var err error
	switch role {
	case enums.RoleDonor:
		list, err = s.donations.ListByDonor(ctx, userPhone, params)
	default:
		list, err = s.donations.ListByCollector(ctx, userPhone, params)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list donations for feed")
	}

	seenFlags, err := s.repo.ListSeen(ctx, userPhone, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seen flags")
	}
	seen := make(map[string]bool, len(seenFlags))
	for _, flag := range seenFlags {
		seen[flagKey(flag.DonationID, flag.Event)] = true
	}

	pending := []PendingNotification{}
	for _, donation := range list.Donations {
		for _, event := range eventsFor(donation, role) {
			if seen[flagKey(donation.ID, event)] {
				continue
			}
			pending = append(pending, PendingNotification{Donation: donation, Event: event})
		}
	}
	return pending, nil
}

func (s *service) validateKey(userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) (string, error) {
	userPhone = strings.TrimSpace(userPhone)
	if userPhone == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !role.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if donationID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}
	if !event.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid notification event")
	}
	return userPhone, nil
}

// eventsFor derives the surfaced events from a donation's current state.
// Donors hear about the other party's moves plus their own cancellation,
// which reuses the seen mechanism to hide history entries. Collectors only
// track their completed pickups.
func eventsFor(donation models.Donation, role enums.Role) []enums.NotificationEvent {
	if role == enums.RoleDonor {
		switch donation.Status {
		case enums.DonationStatusAccepted:
			return []enums.NotificationEvent{enums.NotificationEventAccepted}
		case enums.DonationStatusPickedUp:
			return []enums.NotificationEvent{enums.NotificationEventPickedUp}
		case enums.DonationStatusCancelled:
			return []enums.NotificationEvent{enums.NotificationEventCancelled}
		case enums.DonationStatusActive:
			if donation.AcceptanceCancelledAt != nil {
				return []enums.NotificationEvent{enums.NotificationEventAcceptanceCancelled}
			}
		}
		return nil
	}
	if donation.Status == enums.DonationStatusPickedUp {
		return []enums.NotificationEvent{enums.NotificationEventPickedUp}
	}
	return nil
}

func flagKey(donationID uuid.UUID, event enums.NotificationEvent) string {
	return donationID.String() + "|" + string(event)
}
