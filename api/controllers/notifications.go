package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/foodbridge/donations-backend/api/middleware"
	"github.com/foodbridge/donations-backend/api/responses"
	"github.com/foodbridge/donations-backend/api/validators"
	"github.com/foodbridge/donations-backend/internal/notifications"
	"github.com/foodbridge/donations-backend/pkg/enums"
	pkgerrors "github.com/foodbridge/donations-backend/pkg/errors"
	"github.com/foodbridge/donations-backend/pkg/logger"
)

type seenFlagRequest struct {
	DonationID string `json:"donation_id" validate:"required,uuid4"`
	Role       string `json:"role" validate:"required"`
	Event      string `json:"event" validate:"required"`
}

// PendingNotifications returns unacknowledged lifecycle events for the
// caller in the requested role.
func PendingNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		role, err := enums.ParseRole(strings.TrimSpace(r.URL.Query().Get("role")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		pending, err := svc.Pending(r.Context(), middleware.ActorPhoneFromContext(r.Context()), role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"notifications": pending})
	}
}

// MarkNotificationSeen records that the caller acknowledged an event.
func MarkNotificationSeen(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return seenFlagHandler(svc, logg, func(r *http.Request, svc notifications.Service, role enums.Role, id uuid.UUID, event enums.NotificationEvent) error {
		return svc.MarkSeen(r.Context(), middleware.ActorPhoneFromContext(r.Context()), role, id, event)
	})
}

// ClearNotificationSeen removes an acknowledgment so the event resurfaces.
func ClearNotificationSeen(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return seenFlagHandler(svc, logg, func(r *http.Request, svc notifications.Service, role enums.Role, id uuid.UUID, event enums.NotificationEvent) error {
		return svc.Clear(r.Context(), middleware.ActorPhoneFromContext(r.Context()), role, id, event)
	})
}

func seenFlagHandler(svc notifications.Service, logg *logger.Logger, apply func(*http.Request, notifications.Service, enums.Role, uuid.UUID, enums.NotificationEvent) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		var body seenFlagRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donationID, err := uuid.Parse(body.DonationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid donation id"))
			return
		}
		role, err := enums.ParseRole(body.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}
		event, err := enums.ParseNotificationEvent(body.Event)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event"))
			return
		}

		if err := apply(r, svc, role, donationID, event); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
