package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/oaklinehq/insights-backend/api/responses"
	"github.com/oaklinehq/insights-backend/pkg/config"
	"github.com/oaklinehq/insights-backend/pkg/logger"
	"github.com/oaklinehq/insights-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Insights-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the optional cache dependency. A missing cache is
// still ready; a configured-but-unreachable one is not.
func HealthReady(cfg *config.Config, logg *logger.Logger, cache redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Insights-Env", cfg.App.Env)

		if cache != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := cache.Ping(ctx); err != nil {
				if logg != nil {
					logg.Error(r.Context(), "readiness cache ping failed", err)
				}
				responses.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
