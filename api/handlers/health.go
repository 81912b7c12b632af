package handlers

import (
	"context"
	"net/http"

	"github.com/gcmn-library/backend/api/responses"
	"github.com/gcmn-library/backend/pkg/config"
	pkgerrors "github.com/gcmn-library/backend/pkg/errors"
	"github.com/gcmn-library/backend/pkg/logger"
)

// Pinger is any dependency that can answer a liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GCMN-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady answers ready only when the store and the blob store both do.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-GCMN-Env", cfg.App.Env)

		statuses := make(map[string]string, len(deps))
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				statuses[name] = "unconfigured"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				healthy = false
				statuses[name] = "down"
				logg.Error(logg.WithField(ctx, "dependency", name), "readiness probe failed", err)
				continue
			}
			statuses[name] = "up"
		}

		if !healthy {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency not ready").WithDetails(statuses))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": statuses})
	}
}
