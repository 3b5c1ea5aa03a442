package services

import (
	"context"
	"errors"

	"energy-calculator/internal/calculator"
	"energy-calculator/internal/chart"
	"energy-calculator/internal/models"
	"energy-calculator/pkg/logging"
	"energy-calculator/pkg/metrics"
)

// ProjectionService validates calculator input and produces projections
type ProjectionService struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// Projection is a calculated projection with everything the page renders
type Projection struct {
	Input   models.ProjectionInput   `json:"input"`
	Result  models.ProjectionResult  `json:"result"`
	Summary models.ProjectionSummary `json:"summary"`
	Chart   chart.Chart              `json:"chart"`
}

// NewProjectionService creates a new projection service
func NewProjectionService(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ProjectionService {
	return &ProjectionService{
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Calculate validates raw user input and projects it. Input errors are
// returned as *models.InputValidationError.
func (s *ProjectionService) Calculate(ctx context.Context, raw models.RawProjectionRequest) (*Projection, error) {
	in, err := calculator.Validate(raw)
	if err != nil {
		s.rejected(ctx, err)
		return nil, err
	}
	return s.project(ctx, in), nil
}

func (s *ProjectionService) project(ctx context.Context, in models.ProjectionInput) *Projection {
	timer := s.metrics.NewTimer(s.metrics.ProjectionDuration)
	res := calculator.Project(in)
	c := chart.Build(res)
	duration := timer.ObserveDuration()

	s.metrics.RecordProjection(res.TotalCost)

	s.logger.Debug(ctx, "[PROJECTION_CALC] Projection calculated", logging.Fields{
		"monthly_usage_kwh":     in.MonthlyConsumptionKwh,
		"price_per_kwh_cents":   in.UnitPriceCents,
		"rate_increase_percent": in.AnnualRateIncreasePercent,
		"total_cost":            res.TotalCost,
		"duration_us":           duration.Microseconds(),
	})

	return &Projection{
		Input:   in,
		Result:  res,
		Summary: c.Summary,
		Chart:   c,
	}
}

func (s *ProjectionService) rejected(ctx context.Context, err error) {
	var inputErr *models.InputValidationError
	if !errors.As(err, &inputErr) {
		return
	}
	s.metrics.RecordProjectionRejected(inputErr.Field, string(inputErr.Reason))
	s.logger.Debug(ctx, "[PROJECTION_REJECTED] Projection input rejected", logging.Fields{
		"field":  inputErr.Field,
		"value":  inputErr.Value,
		"reason": inputErr.Reason,
	})
}
