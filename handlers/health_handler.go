package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/shalevclinic/backend/utils"
	"go.uber.org/zap"
)

// Pinger reports whether the backing datastore is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness and readiness probes
type HealthHandler struct {
	db      Pinger
	started time.Time
	logger  *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		started: time.Now(),
		logger:  logger,
	}
}

// HandleHealthz handles GET /healthz
func (h *HealthHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// HandleReadyz handles GET /readyz. Readiness requires a reachable
// database.
func (h *HealthHandler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("readiness check failed", zap.Error(err))
		_ = utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unavailable",
			"error":  "database unreachable",
		})
		return
	}

	_ = utils.WriteOK(w, map[string]string{"status": "ready"})
}
