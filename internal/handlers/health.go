package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/quickcart/api/internal/platform/httpx"
)

const readinessTimeout = 5 * time.Second

// ReadinessPinger verifies the storage backend is reachable.
type ReadinessPinger func(ctx context.Context) error

// HealthHandlers serves the liveness and readiness endpoints.
type HealthHandlers struct {
	started time.Time
	ping    ReadinessPinger
}

// NewHealthHandlers constructs health handlers; ping may be nil for a service
// with no storage dependency.
func NewHealthHandlers(ping ReadinessPinger) *HealthHandlers {
	return &HealthHandlers{
		started: time.Now(),
		ping:    ping,
	}
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteSuccess(w, http.StatusOK, "", map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.started).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz reports whether the service can reach its storage backend.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			httpx.WriteError(r.Context(), w, httpx.NewError("not_ready", "storage backend unreachable", http.StatusServiceUnavailable))
			return
		}
	}
	httpx.WriteSuccess(w, http.StatusOK, "", map[string]any{
		"status": "ready",
	})
}
