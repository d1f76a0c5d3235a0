package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	shared Pinger // may be nil when no shared tier is configured
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler. shared may be nil.
func NewHealthHandler(shared Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{shared: shared, logger: logger}
}

// HealthCheck reports liveness and shared-cache reachability. An unreachable
// shared tier degrades service but does not fail it, so the status stays 200.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	sharedStatus := "disabled"
	if h.shared != nil {
		sharedStatus = "ok"
		if err := h.shared.Ping(r.Context()); err != nil {
			sharedStatus = "unreachable"
			h.logger.WarnContext(r.Context(), "health: shared cache ping failed",
				slog.String("error", err.Error()),
			)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"shared_cache": sharedStatus,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}
