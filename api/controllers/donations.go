package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/foodbridge/donations-backend/api/middleware"
	"github.com/foodbridge/donations-backend/api/responses"
	"github.com/foodbridge/donations-backend/api/validators"
	"github.com/foodbridge/donations-backend/internal/donations"
	"github.com/foodbridge/donations-backend/pkg/enums"
	pkgerrors "github.com/foodbridge/donations-backend/pkg/errors"
	"github.com/foodbridge/donations-backend/pkg/logger"
	"github.com/foodbridge/donations-backend/pkg/pagination"
)

type createDonationRequest struct {
	Name         string   `json:"name" validate:"required,min=2,max=120"`
	Food         string   `json:"food" validate:"required,min=2,max=200"`
	Quantity     string   `json:"quantity" validate:"required,max=100"`
	Availability string   `json:"availability" validate:"required,max=200"`
	Location     string   `json:"location" validate:"required,max=300"`
	Lat          *float64 `json:"lat" validate:"omitempty,min=-90,max=90"`
	Lon          *float64 `json:"lon" validate:"omitempty,min=-180,max=180"`
}

type acceptDonationRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

// CreateDonation posts a new surplus food offer for the calling donor.
func CreateDonation(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		var body createDonationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donation, err := svc.Create(r.Context(), donations.CreateDonationInput{
			DonorPhone:    middleware.ActorPhoneFromContext(r.Context()),
			DonorName:     validators.SanitizeString(body.Name, 120),
			Food:          validators.SanitizeString(body.Food, 200),
			Quantity:      validators.SanitizeString(body.Quantity, 100),
			Availability:  validators.SanitizeString(body.Availability, 200),
			LocationLabel: validators.SanitizeString(body.Location, 300),
			Lat:           body.Lat,
			Lon:           body.Lon,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"donation": donation})
	}
}

// AcceptDonation claims an active donation for the calling collector.
func AcceptDonation(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		donationID, err := donationIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body acceptDonationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donation, err := svc.Accept(r.Context(), donations.AcceptInput{
			DonationID:     donationID,
			CollectorPhone: middleware.ActorPhoneFromContext(r.Context()),
			CollectorName:  validators.SanitizeString(body.Name, 120),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"donation": donation})
	}
}

// PickupDonation confirms the calling collector retrieved their claim.
func PickupDonation(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		donationID, err := donationIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donation, err := svc.ConfirmPickup(r.Context(), donations.PickupInput{
			DonationID:     donationID,
			CollectorPhone: middleware.ActorPhoneFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"donation": donation})
	}
}

// CancelAcceptance releases the calling collector's claim back to the pool.
func CancelAcceptance(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		donationID, err := donationIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donation, err := svc.CancelAcceptance(r.Context(), donations.CancelAcceptanceInput{
			DonationID:     donationID,
			CollectorPhone: middleware.ActorPhoneFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"donation": donation})
	}
}

// CancelDonation withdraws the calling donor's unclaimed offer.
func CancelDonation(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		donationID, err := donationIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donation, err := svc.Cancel(r.Context(), donations.CancelInput{
			DonationID: donationID,
			DonorPhone: middleware.ActorPhoneFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"donation": donation})
	}
}

// NearbyDonations returns the matching view for the calling collector.
// lat and lon must be supplied together; omitting both selects the
// origin-independent fallback view.
func NearbyDonations(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		lat, err := validators.ParseQueryFloat(r, "lat", -90, 90)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lon, err := validators.ParseQueryFloat(r, "lon", -180, 180)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if (lat == nil) != (lon == nil) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "lat and lon must be provided together"))
			return
		}

		input := donations.NearbyQueryInput{
			CollectorPhone: middleware.ActorPhoneFromContext(r.Context()),
		}
		if lat != nil {
			input.Origin = &donations.NearbyOrigin{Lat: *lat, Lon: *lon}
		}

		radius, err := validators.ParseQueryFloat(r, "radius_km", 0.1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if radius != nil {
			input.RadiusKM = *radius
		}

		results, err := svc.Nearby(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"donations": results})
	}
}

// MyDonations lists the calling donor's offers newest first.
func MyDonations(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.HistoryByDonor(r.Context(), middleware.ActorPhoneFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// CollectedDonations lists donations the calling collector has claimed,
// optionally narrowed by a comma-separated status filter.
func CollectedDonations(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		statuses, err := statusFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.HistoryByCollector(r.Context(), middleware.ActorPhoneFromContext(r.Context()), statuses, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func donationIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "donationID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid donation id")
	}
	return id, nil
}

func statusFilter(r *http.Request) ([]enums.DonationStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return nil, nil
	}
	var statuses []enums.DonationStatus
	for _, part := range strings.Split(raw, ",") {
		status, err := enums.ParseDonationStatus(strings.TrimSpace(part))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func listParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	}, nil
}
