package controllers

import (
	"net/http"

	"go.uber.org/multierr"

	"github.com/foodbridge/donations-backend/api/responses"
	"github.com/foodbridge/donations-backend/pkg/config"
	"github.com/foodbridge/donations-backend/pkg/db"
	pkgerrors "github.com/foodbridge/donations-backend/pkg/errors"
	"github.com/foodbridge/donations-backend/pkg/logger"
	pkgredis "github.com/foodbridge/donations-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FoodBridge-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when every backing store answers.
func HealthReady(cfg *config.Config, logg *logger.Logger, database db.Pinger, cache pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-FoodBridge-Env", cfg.App.Env)

		var errs error
		if database != nil {
			if err := database.Ping(ctx); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				errs = multierr.Append(errs, err)
			}
		}

		if errs != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "dependency check failed"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
