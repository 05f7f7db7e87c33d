package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/kimotaku1/Ecommerce-forever/internal/platform/httpx"
)

// ReadinessChecker reports whether a dependency is ready to serve traffic.
type ReadinessChecker func(ctx context.Context) error

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	started time.Time
	checks  map[string]ReadinessChecker
}

// NewHealthHandlers constructs the probe handlers with optional named checks.
func NewHealthHandlers() *HealthHandlers {
	return &HealthHandlers{
		started: time.Now(),
		checks:  map[string]ReadinessChecker{},
	}
}

// AddCheck registers a named readiness check.
func (h *HealthHandlers) AddCheck(name string, check ReadinessChecker) {
	if name == "" || check == nil {
		return
	}
	h.checks[name] = check
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteSuccess(r.Context(), w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).String(),
	})
}

// Readyz runs the registered dependency checks and fails when any do.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	failures := map[string]any{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		httpx.WriteError(ctx, w, httpx.NewError("not_ready", "one or more dependencies are not ready", http.StatusServiceUnavailable).
			WithDetails(map[string]any{"checks": failures}))
		return
	}
	httpx.WriteSuccess(ctx, w, http.StatusOK, map[string]any{"status": "ready"})
}
