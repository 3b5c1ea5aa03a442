package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"energy-calculator/pkg/logging"
	"energy-calculator/pkg/metrics"
)

// HealthChecker is satisfied by the lead repository.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// SystemHandler serves health and API documentation
type SystemHandler struct {
	responder
	db HealthChecker
}

// NewSystemHandler creates a new system handler. db may be nil when no
// database is configured.
func NewSystemHandler(db HealthChecker, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *SystemHandler {
	return &SystemHandler{
		responder: responder{logger: logger, metrics: metricsCollector},
		db:        db,
	}
}

// HealthCheck handles GET /health
func (h *SystemHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"database":  "disabled",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			h.logger.Warn(ctx, "[HEALTH_CHECK] Database unavailable", logging.Fields{
				"error": err.Error(),
			})
			status["status"] = "degraded"
			status["database"] = "unavailable"
			code = http.StatusServiceUnavailable
		} else {
			status["database"] = "ok"
		}
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, code)
}

// RegisterRoutes registers health and documentation routes
func (h *SystemHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/docs", h.SwaggerUI).Methods("GET")
	router.HandleFunc(openAPIPath, OpenAPISpec).Methods("GET")
}
