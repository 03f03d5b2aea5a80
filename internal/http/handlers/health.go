package handlers

import (
	"context"
	"net/http"
	"time"
)

// Health reports liveness plus the state of the backing services. The
// endpoint stays 200 with per-dependency status so probes can distinguish
// a dead process from a degraded one.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := map[string]string{}
	if a.DB != nil {
		deps["database"] = "ok"
		if err := a.DB.Ping(ctx); err != nil {
			deps["database"] = "unavailable"
		}
	}
	if a.Redis != nil {
		deps["redis"] = "ok"
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			deps["redis"] = "unavailable"
		}
	}
	a.json(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"dependencies": deps,
	})
}
