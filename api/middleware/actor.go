package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/foodbridge/donations-backend/api/responses"
	pkgerrors "github.com/foodbridge/donations-backend/pkg/errors"
	"github.com/foodbridge/donations-backend/pkg/logger"
)

const actorPhoneHeader = "X-User-Phone"

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// RequireActor resolves the caller's identity from the X-User-Phone header
// and rejects requests that do not carry a well-formed phone number.
func RequireActor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			phone := strings.TrimSpace(r.Header.Get(actorPhoneHeader))
			if phone == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "X-User-Phone header required"))
				return
			}
			if !phonePattern.MatchString(phone) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "phone must be a 10 digit number"))
				return
			}

			ctx = WithActorPhone(ctx, phone)
			if logg != nil {
				ctx = logg.WithUserPhone(ctx, phone)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
