package handlers

import (
	"bytes"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"energy-calculator/internal/calculator"
	"energy-calculator/internal/chart"
	"energy-calculator/internal/models"
	"energy-calculator/internal/services"
	"energy-calculator/pkg/logging"
	"energy-calculator/pkg/metrics"
)

// ProjectionHandler handles calculator and chart endpoints
type ProjectionHandler struct {
	responder
	projections *services.ProjectionService
	charts      *chart.Registry
}

// NewProjectionHandler creates a new projection handler
func NewProjectionHandler(
	projections *services.ProjectionService,
	charts *chart.Registry,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *ProjectionHandler {
	return &ProjectionHandler{
		responder:   responder{logger: logger, metrics: metricsCollector},
		projections: projections,
		charts:      charts,
	}
}

// inputValue accepts a JSON string or number and keeps its text for the
// validator, so "800" and 800 behave the same.
type inputValue string

func (v *inputValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = inputValue(s)
		return nil
	}
	*v = inputValue(data)
	return nil
}

// ProjectionRequest is the calculator form as submitted by the page.
type ProjectionRequest struct {
	MonthlyUsage inputValue `json:"monthly_usage_kwh"`
	PricePerKwh  inputValue `json:"price_per_kwh_cents"`
	RateIncrease inputValue `json:"rate_increase_percent"`
}

func (p ProjectionRequest) raw() models.RawProjectionRequest {
	return models.RawProjectionRequest{
		MonthlyUsage: string(p.MonthlyUsage),
		PricePerKwh:  string(p.PricePerKwh),
		RateIncrease: string(p.RateIncrease),
	}
}

// ChartResponse pairs a chart with the handle that owns it.
type ChartResponse struct {
	Handle chart.Handle `json:"handle"`
	Chart  chart.Chart  `json:"chart"`
}

// DefaultsResponse describes the calculator's initial form state.
type DefaultsResponse struct {
	MonthlyUsage string `json:"monthly_usage_kwh"`
	PricePerKwh  string `json:"price_per_kwh_cents"`
	RateIncrease string `json:"rate_increase_percent"`
}

// FieldCheckResponse is the live feedback for one value being typed.
type FieldCheckResponse struct {
	Field      string `json:"field"`
	Value      string `json:"value"`
	Acceptable bool   `json:"acceptable"`
}

// CalculatePost handles POST /api/projection
func (h *ProjectionHandler) CalculatePost(w http.ResponseWriter, r *http.Request) {
	var req ProjectionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	h.calculate(w, r, req.raw())
}

// CalculateGet handles GET /api/projection
func (h *ProjectionHandler) CalculateGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.calculate(w, r, models.RawProjectionRequest{
		MonthlyUsage: q.Get(calculator.FieldMonthlyUsage),
		PricePerKwh:  q.Get(calculator.FieldPricePerKwh),
		RateIncrease: q.Get(calculator.FieldRateIncrease),
	})
}

func (h *ProjectionHandler) calculate(w http.ResponseWriter, r *http.Request, raw models.RawProjectionRequest) {
	p, err := h.projections.Calculate(r.Context(), raw)
	if err != nil {
		h.sendDomainError(w, r, "/api/projection", err)
		return
	}
	h.sendJSON(w, p, http.StatusOK)
}

// Defaults handles GET /api/projection/defaults
func (h *ProjectionHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	d := calculator.DefaultInputs
	h.sendJSON(w, DefaultsResponse{
		MonthlyUsage: d.MonthlyUsage,
		PricePerKwh:  d.PricePerKwh,
		RateIncrease: d.RateIncrease,
	}, http.StatusOK)
}

// CheckField handles GET /api/projection/check?field=&value=
func (h *ProjectionHandler) CheckField(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field := q.Get("field")

	switch field {
	case calculator.FieldMonthlyUsage, calculator.FieldPricePerKwh, calculator.FieldRateIncrease:
	default:
		h.sendError(w, "unknown calculator field: "+field, http.StatusBadRequest)
		return
	}

	value := q.Get("value")
	h.sendJSON(w, FieldCheckResponse{
		Field:      field,
		Value:      value,
		Acceptable: calculator.IsAcceptable(value),
	}, http.StatusOK)
}

// CreateChart handles POST /api/charts
func (h *ProjectionHandler) CreateChart(w http.ResponseWriter, r *http.Request) {
	var req ProjectionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	p, err := h.projections.Calculate(r.Context(), req.raw())
	if err != nil {
		h.sendDomainError(w, r, "/api/charts", err)
		return
	}

	handle, c, err := h.charts.Create(p.Result)
	if err != nil {
		h.sendDomainError(w, r, "/api/charts", err)
		return
	}
	h.sendJSON(w, ChartResponse{Handle: handle, Chart: c}, http.StatusCreated)
}

// ReplaceChart handles PUT /api/charts/{id}. The old handle is destroyed and
// a new one returned.
func (h *ProjectionHandler) ReplaceChart(w http.ResponseWriter, r *http.Request) {
	handle := chart.Handle(mux.Vars(r)["id"])

	var req ProjectionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	p, err := h.projections.Calculate(r.Context(), req.raw())
	if err != nil {
		h.sendDomainError(w, r, "/api/charts/{id}", err)
		return
	}

	next, c, err := h.charts.Replace(handle, p.Result)
	if err != nil {
		h.sendDomainError(w, r, "/api/charts/{id}", err)
		return
	}
	h.sendJSON(w, ChartResponse{Handle: next, Chart: c}, http.StatusOK)
}

// GetChart handles GET /api/charts/{id}
func (h *ProjectionHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	handle := chart.Handle(mux.Vars(r)["id"])

	c, err := h.charts.Get(handle)
	if err != nil {
		h.sendDomainError(w, r, "/api/charts/{id}", err)
		return
	}
	h.sendJSON(w, ChartResponse{Handle: handle, Chart: c}, http.StatusOK)
}

// DestroyChart handles DELETE /api/charts/{id}
func (h *ProjectionHandler) DestroyChart(w http.ResponseWriter, r *http.Request) {
	if err := h.charts.Destroy(chart.Handle(mux.Vars(r)["id"])); err != nil {
		h.sendDomainError(w, r, "/api/charts/{id}", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegisterRoutes registers all projection and chart routes
func (h *ProjectionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/projection", h.CalculatePost).Methods("POST")
	router.HandleFunc("/api/projection", h.CalculateGet).Methods("GET")
	router.HandleFunc("/api/projection/defaults", h.Defaults).Methods("GET")
	router.HandleFunc("/api/projection/check", h.CheckField).Methods("GET")
	router.HandleFunc("/api/charts", h.CreateChart).Methods("POST")
	router.HandleFunc("/api/charts/{id}", h.ReplaceChart).Methods("PUT")
	router.HandleFunc("/api/charts/{id}", h.GetChart).Methods("GET")
	router.HandleFunc("/api/charts/{id}", h.DestroyChart).Methods("DELETE")
}
