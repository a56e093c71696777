package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oaklinehq/insights-backend/api/controllers"
	reportcontrollers "github.com/oaklinehq/insights-backend/api/controllers/reports"
	"github.com/oaklinehq/insights-backend/api/middleware"
	"github.com/oaklinehq/insights-backend/pkg/config"
	"github.com/oaklinehq/insights-backend/pkg/logger"
	"github.com/oaklinehq/insights-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	cache *redis.Client,
	reportService reportcontrollers.Builder,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pinger(cache)))
	})

	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/executive", reportcontrollers.Executive(reportService, logg))
	})

	return r
}

// pinger keeps a typed-nil cache from masquerading as a live dependency.
func pinger(cache *redis.Client) redis.Pinger {
	if cache == nil {
		return nil
	}
	return cache
}
