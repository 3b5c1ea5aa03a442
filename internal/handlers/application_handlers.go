package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"energy-calculator/internal/models"
	"energy-calculator/internal/questionnaire"
	"energy-calculator/internal/repository"
	"energy-calculator/internal/services"
	"energy-calculator/pkg/logging"
	"energy-calculator/pkg/metrics"
)

// ApplicationHandler handles questionnaire and lead endpoints
type ApplicationHandler struct {
	responder
	applications *services.ApplicationService
	leads        repository.LeadRepository
}

// NewApplicationHandler creates a new application handler. leads may be nil
// when the audit store is disabled.
func NewApplicationHandler(
	applications *services.ApplicationService,
	leads repository.LeadRepository,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *ApplicationHandler {
	return &ApplicationHandler{
		responder:    responder{logger: logger, metrics: metricsCollector},
		applications: applications,
		leads:        leads,
	}
}

// OptionRequest selects a step-1 option.
type OptionRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// ValueRequest carries a single typed value.
type ValueRequest struct {
	Value string `json:"value"`
}

// Start handles POST /api/applications
func (h *ApplicationHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, h.applications.Start(r.Context()), http.StatusCreated)
}

// Get handles GET /api/applications/{id}
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.applications.Get(r.Context(), mux.Vars(r)["id"])
	h.respond(w, r, "/api/applications/{id}", snap, err)
}

// SelectOption handles POST /api/applications/{id}/option
func (h *ApplicationHandler) SelectOption(w http.ResponseWriter, r *http.Request) {
	var req OptionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Field == "" {
		req.Field = models.FieldPropertyType
	}

	snap, err := h.applications.SelectOption(r.Context(), mux.Vars(r)["id"], req.Field, req.Value)
	h.respond(w, r, "/api/applications/{id}/option", snap, err)
}

// Capture handles PUT /api/applications/{id}/fields/{field}
func (h *ApplicationHandler) Capture(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req ValueRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	snap, err := h.applications.Capture(r.Context(), vars["id"], vars["field"], req.Value)
	h.respond(w, r, "/api/applications/{id}/fields/{field}", snap, err)
}

// Next handles POST /api/applications/{id}/next
func (h *ApplicationHandler) Next(w http.ResponseWriter, r *http.Request) {
	snap, err := h.applications.Next(r.Context(), mux.Vars(r)["id"])
	h.respond(w, r, "/api/applications/{id}/next", snap, err)
}

// Previous handles POST /api/applications/{id}/previous
func (h *ApplicationHandler) Previous(w http.ResponseWriter, r *http.Request) {
	snap, err := h.applications.Previous(r.Context(), mux.Vars(r)["id"])
	h.respond(w, r, "/api/applications/{id}/previous", snap, err)
}

// Submit handles POST /api/applications/{id}/submit. Acceptance is reported
// with 202 because delivery continues in the background.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.applications.Submit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.sendDomainError(w, r, "/api/applications/{id}/submit", err)
		return
	}
	h.sendJSON(w, receipt, http.StatusAccepted)
}

// Close handles DELETE /api/applications/{id}
func (h *ApplicationHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.applications.Close(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.sendDomainError(w, r, "/api/applications/{id}", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FormatPhone handles POST /api/format/phone, the keystroke formatter for
// the phone input.
func (h *ApplicationHandler) FormatPhone(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	h.sendJSON(w, ValueRequest{Value: questionnaire.FormatPhone(req.Value)}, http.StatusOK)
}

// ListLeads handles GET /api/leads
func (h *ApplicationHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.leads == nil {
		h.metrics.RecordAPIError("store_disabled", "/api/leads")
		h.sendError(w, "lead audit store is disabled", http.StatusServiceUnavailable)
		return
	}

	page, limit := pagination(r, 50, 500)
	filter := repository.LeadFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if status := r.URL.Query().Get("status"); status != "" {
		s := models.DeliveryStatus(status)
		switch s {
		case models.DeliveryDelivered, models.DeliveryRejected, models.DeliveryFailed, models.DeliverySkipped:
			filter.Status = &s
		default:
			h.sendError(w, "invalid status, expected delivered, rejected, failed or skipped", http.StatusBadRequest)
			return
		}
	}

	if sessionID := r.URL.Query().Get("session_id"); sessionID != "" {
		filter.SessionID = &sessionID
	}

	leads, total, err := h.leads.ListSubmissions(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_LIST_LEADS_ERROR] Failed to list submissions", logging.Fields{
			"page":  page,
			"limit": limit,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/leads")
		h.sendError(w, "failed to retrieve submissions", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, PaginatedResponse{
		Data:       leads,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, http.StatusOK)
}

func (h *ApplicationHandler) respond(w http.ResponseWriter, r *http.Request, endpoint string, snap services.ApplicationSnapshot, err error) {
	if err != nil {
		h.sendDomainError(w, r, endpoint, err)
		return
	}
	h.sendJSON(w, snap, http.StatusOK)
}

// RegisterRoutes registers all questionnaire routes
func (h *ApplicationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/applications", h.Start).Methods("POST")
	router.HandleFunc("/api/applications/{id}", h.Get).Methods("GET")
	router.HandleFunc("/api/applications/{id}", h.Close).Methods("DELETE")
	router.HandleFunc("/api/applications/{id}/option", h.SelectOption).Methods("POST")
	router.HandleFunc("/api/applications/{id}/fields/{field}", h.Capture).Methods("PUT")
	router.HandleFunc("/api/applications/{id}/next", h.Next).Methods("POST")
	router.HandleFunc("/api/applications/{id}/previous", h.Previous).Methods("POST")
	router.HandleFunc("/api/applications/{id}/submit", h.Submit).Methods("POST")
	router.HandleFunc("/api/format/phone", h.FormatPhone).Methods("POST")
	router.HandleFunc("/api/leads", h.ListLeads).Methods("GET")
}
