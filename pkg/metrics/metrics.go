package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// API Metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	// Projection Metrics
	ProjectionsTotal          prometheus.Counter
	ProjectionDuration        prometheus.Histogram
	ProjectionValidationTotal *prometheus.CounterVec
	ProjectedTotalCost        prometheus.Histogram

	// Questionnaire Metrics
	SessionsActive         prometheus.Gauge
	SessionsStartedTotal   prometheus.Counter
	StepTransitionsTotal   *prometheus.CounterVec
	StepValidationFailures *prometheus.CounterVec
	SubmissionsTotal       *prometheus.CounterVec
	SessionsExpiredTotal   prometheus.Counter

	// Delivery Metrics
	DeliveriesTotal   *prometheus.CounterVec
	DeliveryDuration  prometheus.Histogram
	DeliveryQueueSize prometheus.Gauge

	// Chart Metrics
	ChartsActive        prometheus.Gauge
	ChartsExpiredTotal  prometheus.Counter
	ChartsRejectedTotal prometheus.Counter

	// Batch Metrics
	ScenarioLinesTotal *prometheus.CounterVec

	// Database Metrics
	DBQueryDuration  *prometheus.HistogramVec
	DBConnectionPool *prometheus.GaugeVec
	DBErrorsTotal    *prometheus.CounterVec
}

// NewCollector creates a new metrics collector registered with the default
// Prometheus registry.
func NewCollector(namespace string) *Collector {
	return NewCollectorWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector registered with reg. Tests
// pass a fresh prometheus.NewRegistry() to avoid duplicate registration.
func NewCollectorWithRegistry(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),

		APIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors by type",
			},
			[]string{"error_type", "endpoint"},
		),

		ProjectionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "projections_total",
				Help:      "Total number of 30-year cost projections calculated",
			},
		),

		ProjectionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "projection_duration_seconds",
				Help:      "Duration of projection calculations in seconds",
				Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
			},
		),

		ProjectionValidationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "projection_validation_failures_total",
				Help:      "Rejected projection inputs by field and reason",
			},
			[]string{"field", "reason"},
		),

		ProjectedTotalCost: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "projected_total_cost_dollars",
				Help:      "Distribution of projected 30-year total costs",
				Buckets:   []float64{10000, 25000, 50000, 75000, 100000, 150000, 250000, 500000},
			},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "questionnaire_sessions_active",
				Help:      "Number of open questionnaire sessions",
			},
		),

		SessionsStartedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "questionnaire_sessions_started_total",
				Help:      "Total number of questionnaire sessions started",
			},
		),

		StepTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "questionnaire_transitions_total",
				Help:      "Questionnaire step transitions by action and resulting step",
			},
			[]string{"action", "step"},
		),

		StepValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "questionnaire_step_validation_failures_total",
				Help:      "Rejected step transitions by missing field",
			},
			[]string{"field"},
		),

		SubmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "questionnaire_submissions_total",
				Help:      "Questionnaire submissions by outcome (accepted, rejected)",
			},
			[]string{"outcome"},
		),

		SessionsExpiredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "questionnaire_sessions_expired_total",
				Help:      "Idle questionnaire sessions removed by the sweeper",
			},
		),

		DeliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_deliveries_total",
				Help:      "Webhook deliveries by status (delivered, rejected, failed, dropped)",
			},
			[]string{"status"},
		),

		DeliveryDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "webhook_delivery_duration_seconds",
				Help:      "Webhook delivery duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),

		DeliveryQueueSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "webhook_delivery_queue_size",
				Help:      "Submissions waiting for webhook delivery",
			},
		),

		ChartsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "charts_active",
				Help:      "Number of live chart handles",
			},
		),

		ChartsExpiredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "charts_expired_total",
				Help:      "Idle chart handles released by the sweeper",
			},
		),

		ChartsRejectedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "charts_rejected_total",
				Help:      "Chart creations refused because the live chart limit was reached",
			},
		),

		ScenarioLinesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scenario_lines_total",
				Help:      "Scenario batch lines by outcome (projected, failed)",
			},
			[]string{"outcome"},
		),

		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database query duration in seconds by query type",
				Buckets:   []float64{0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5},
			},
			[]string{"query_type"},
		),

		DBConnectionPool: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connection_pool",
				Help:      "Database connection pool statistics",
			},
			[]string{"state"}, // "in_use", "idle", "total"
		),

		DBErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_errors_total",
				Help:      "Total number of database errors by type",
			},
			[]string{"error_type"},
		),
	}
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer creates a new timer
func (c *Collector) NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: histogram,
	}
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}

// RecordAPIRequest increments API request counter
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordAPIError increments API error counter
func (c *Collector) RecordAPIError(errorType, endpoint string) {
	c.APIErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordProjection records a successful projection and its total cost
func (c *Collector) RecordProjection(totalCost float64) {
	c.ProjectionsTotal.Inc()
	c.ProjectedTotalCost.Observe(totalCost)
}

// RecordProjectionRejected counts a rejected projection input
func (c *Collector) RecordProjectionRejected(field, reason string) {
	c.ProjectionValidationTotal.WithLabelValues(field, reason).Inc()
}

// RecordTransition counts a questionnaire transition
func (c *Collector) RecordTransition(action string, step int) {
	c.StepTransitionsTotal.WithLabelValues(action, stepLabel(step)).Inc()
}

// RecordStepRejected counts a step transition rejected for a blank field
func (c *Collector) RecordStepRejected(field string) {
	c.StepValidationFailures.WithLabelValues(field).Inc()
}

// RecordSubmission counts a submit attempt by outcome
func (c *Collector) RecordSubmission(outcome string) {
	c.SubmissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordDelivery counts a webhook delivery by status
func (c *Collector) RecordDelivery(status string) {
	c.DeliveriesTotal.WithLabelValues(status).Inc()
}

// RecordScenarioLine counts a scenario batch line by outcome
func (c *Collector) RecordScenarioLine(outcome string) {
	c.ScenarioLinesTotal.WithLabelValues(outcome).Inc()
}

// RecordDBError increments database error counter
func (c *Collector) RecordDBError(errorType string) {
	c.DBErrorsTotal.WithLabelValues(errorType).Inc()
}

// UpdateDBConnectionPool updates database connection pool metrics
func (c *Collector) UpdateDBConnectionPool(inUse, idle, total int) {
	c.DBConnectionPool.WithLabelValues("in_use").Set(float64(inUse))
	c.DBConnectionPool.WithLabelValues("idle").Set(float64(idle))
	c.DBConnectionPool.WithLabelValues("total").Set(float64(total))
}

func stepLabel(step int) string {
	return strconv.Itoa(step)
}
