package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"energy-calculator/internal/models"
	"energy-calculator/pkg/logging"
	"energy-calculator/pkg/metrics"
)

// ScenarioBatchService projects many calculator scenarios read from a file
type ScenarioBatchService struct {
	projections *ProjectionService
	logger      *logging.StructuredLogger
	metrics     *metrics.Collector
}

// ScenarioResult is one projected line of a batch
type ScenarioResult struct {
	Line    int                      `json:"line"`
	Input   models.ProjectionInput   `json:"input"`
	Result  models.ProjectionResult  `json:"-"`
	Summary models.ProjectionSummary `json:"summary"`
}

// BatchResult contains batch statistics
type BatchResult struct {
	Source     string           `json:"source"`
	TotalLines int              `json:"total_lines"`
	Projected  int              `json:"projected"`
	Failed     int              `json:"failed"`
	Scenarios  []ScenarioResult `json:"scenarios"`
	Errors     []string         `json:"errors"`
	Duration   time.Duration    `json:"duration"`
}

// NewScenarioBatchService creates a new batch service
func NewScenarioBatchService(projections *ProjectionService, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ScenarioBatchService {
	return &ScenarioBatchService{
		projections: projections,
		logger:      logger,
		metrics:     metricsCollector,
	}
}

// RunFile projects every scenario in the file at path.
// Format: MONTHLY_KWH\tPRICE_CENTS\tRATE_PERCENT, one scenario per line.
// Blank lines and lines starting with # are ignored.
func (s *ScenarioBatchService) RunFile(ctx context.Context, path string) (*BatchResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return s.Run(ctx, file, path)
}

// Run projects every scenario read from r. Bad lines are counted and
// reported but do not stop the batch.
func (s *ScenarioBatchService) Run(ctx context.Context, r io.Reader, source string) (*BatchResult, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[BATCH_START] Starting scenario batch", logging.Fields{
		"source": source,
		"stage":  "INITIALIZATION",
	})

	result := &BatchResult{
		Source:    source,
		Scenarios: make([]ScenarioResult, 0),
		Errors:    make([]string, 0),
	}

	lineNum := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		result.TotalLines++

		raw, err := parseScenarioLine(line)
		if err != nil {
			result.Failed++
			s.metrics.RecordScenarioLine("failed")
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNum, err))
			continue
		}

		p, err := s.projections.Calculate(ctx, raw)
		if err != nil {
			result.Failed++
			s.metrics.RecordScenarioLine("failed")
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNum, err))
			continue
		}

		result.Projected++
		s.metrics.RecordScenarioLine("projected")
		result.Scenarios = append(result.Scenarios, ScenarioResult{
			Line:    lineNum,
			Input:   p.Input,
			Result:  p.Result,
			Summary: p.Summary,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading scenarios: %w", err)
	}

	result.Duration = time.Since(startTime)

	s.logger.Info(ctx, "[BATCH_COMPLETE] Scenario batch completed", logging.Fields{
		"source":           source,
		"total_lines":      result.TotalLines,
		"projected":        result.Projected,
		"failed":           result.Failed,
		"duration_seconds": result.Duration.Seconds(),
		"stage":            "COMPLETE",
	})

	return result, nil
}

// parseScenarioLine splits one batch line into its three raw fields
func parseScenarioLine(line string) (models.RawProjectionRequest, error) {
	parts := strings.Split(line, "\t")
	if len(parts) != 3 {
		return models.RawProjectionRequest{}, fmt.Errorf("invalid line format: expected 3 fields, got %d", len(parts))
	}

	return models.RawProjectionRequest{
		MonthlyUsage: parts[0],
		PricePerKwh:  parts[1],
		RateIncrease: parts[2],
	}, nil
}
