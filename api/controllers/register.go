package controllers

import (
	"net/http"

	"github.com/foodbridge/donations-backend/api/responses"
	"github.com/foodbridge/donations-backend/api/validators"
	"github.com/foodbridge/donations-backend/internal/users"
	pkgerrors "github.com/foodbridge/donations-backend/pkg/errors"
	"github.com/foodbridge/donations-backend/pkg/logger"
)

type registerRequest struct {
	Phone string `json:"phone" validate:"required,phone"`
	Name  string `json:"name" validate:"required,min=2,max=120"`
	Email string `json:"email" validate:"omitempty,email"`
}

// Register onboards a user identified by their phone number.
func Register(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var body registerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), users.RegisterInput{
			Phone: body.Phone,
			Name:  validators.SanitizeString(body.Name, 120),
			Email: validators.SanitizeString(body.Email, 254),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"user": user})
	}
}
