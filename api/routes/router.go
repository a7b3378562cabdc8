package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/foodbridge/donations-backend/api/controllers"
	"github.com/foodbridge/donations-backend/api/middleware"
	"github.com/foodbridge/donations-backend/internal/donations"
	"github.com/foodbridge/donations-backend/internal/notifications"
	"github.com/foodbridge/donations-backend/internal/users"
	"github.com/foodbridge/donations-backend/pkg/config"
	"github.com/foodbridge/donations-backend/pkg/db"
	"github.com/foodbridge/donations-backend/pkg/logger"
	"github.com/foodbridge/donations-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	usersService users.Service,
	donationsService donations.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	registerPolicy := middleware.NewRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
	)
	mutationPolicy := middleware.NewRateLimitPolicy(
		"mutations",
		cfg.RateLimit.MutationWindow,
		cfg.RateLimit.MutationLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.RateLimitByIP(registerPolicy, redisClient, logg)).
			With(middleware.Idempotency(redisClient, logg)).
			Post("/register", controllers.Register(usersService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireActor(logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/donations", func(r chi.Router) {
			r.Get("/nearby", controllers.NearbyDonations(donationsService, logg))
			r.Get("/mine", controllers.MyDonations(donationsService, logg))
			r.Get("/collected", controllers.CollectedDonations(donationsService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimitByActor(mutationPolicy, redisClient, logg))
				r.Post("/", controllers.CreateDonation(donationsService, logg))
				r.Post("/{donationID}/accept", controllers.AcceptDonation(donationsService, logg))
				r.Post("/{donationID}/pickup", controllers.PickupDonation(donationsService, logg))
				r.Post("/{donationID}/cancel-acceptance", controllers.CancelAcceptance(donationsService, logg))
				r.Post("/{donationID}/cancel", controllers.CancelDonation(donationsService, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.PendingNotifications(notificationsService, logg))
			r.Post("/seen", controllers.MarkNotificationSeen(notificationsService, logg))
			r.Post("/unseen", controllers.ClearNotificationSeen(notificationsService, logg))
		})
	})

	return r
}
