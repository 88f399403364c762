package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"emiscli/internal/middleware"
)

// HealthHandler reports process liveness and dataset readiness.
type HealthHandler struct {
	meta    MetaProvider
	logger  *slog.Logger
	started time.Time
	version string
}

// MetaProvider is the slice of the dashboard service the health check needs.
type MetaProvider interface {
	DatasetPath() string
	RowCount() int
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(meta MetaProvider, logger *slog.Logger, version string) *HealthHandler {
	return &HealthHandler{
		meta:    meta,
		logger:  logger.With(slog.String("component", "health_handler")),
		started: time.Now(),
		version: version,
	}
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.DebugContext(r.Context(), "health check",
		slog.String("request_id", reqID),
	)

	render.JSON(w, r, map[string]interface{}{
		"status":  "healthy",
		"version": h.version,
		"uptime":  time.Since(h.started).String(),
		"dataset": map[string]interface{}{
			"path": h.meta.DatasetPath(),
			"rows": h.meta.RowCount(),
		},
	})
}

// LivenessCheck handles GET /api/health/live
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{"status": "alive"})
}

// ReadinessCheck handles GET /api/health/ready. The service loads the
// dataset at construction, so readiness reduces to having rows in memory.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.meta.RowCount() == 0 {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]interface{}{"status": "not ready"})
		return
	}
	render.JSON(w, r, map[string]interface{}{"status": "ready"})
}
