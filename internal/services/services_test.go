package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"energy-calculator/internal/calculator"
	"energy-calculator/internal/delivery"
	"energy-calculator/internal/models"
	"energy-calculator/pkg/logging"
	"energy-calculator/pkg/metrics"
)

func newCollector() *metrics.Collector {
	return metrics.NewCollectorWithRegistry("test", prometheus.NewRegistry())
}

type recordingDispatcher struct {
	mu   sync.Mutex
	subs []delivery.Submission
	full bool
}

func (d *recordingDispatcher) Dispatch(sub delivery.Submission) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.full {
		return false
	}
	d.subs = append(d.subs, sub)
	return true
}

func TestProjectionService_Calculate(t *testing.T) {
	tests := []struct {
		name        string
		raw         models.RawProjectionRequest
		wantErr     bool
		checkValues func(*testing.T, *Projection, error)
	}{
		{
			name: "default inputs",
			raw:  models.RawProjectionRequest{MonthlyUsage: "800", PricePerKwh: "19.0", RateIncrease: "7.0"},
			checkValues: func(t *testing.T, p *Projection, err error) {
				if p.Summary.TotalCost != "$172,296" {
					t.Errorf("TotalCost = %q, want $172,296", p.Summary.TotalCost)
				}
				if len(p.Chart.Labels) != models.ProjectionYears {
					t.Errorf("chart has %d labels", len(p.Chart.Labels))
				}
				if p.Chart.Summary != p.Summary {
					t.Errorf("chart summary %+v differs from %+v", p.Chart.Summary, p.Summary)
				}
			},
		},
		{
			name:    "non-numeric usage",
			raw:     models.RawProjectionRequest{MonthlyUsage: "abc", PricePerKwh: "19", RateIncrease: "7"},
			wantErr: true,
			checkValues: func(t *testing.T, p *Projection, err error) {
				var inputErr *models.InputValidationError
				if !errors.As(err, &inputErr) {
					t.Fatalf("error = %T, want *InputValidationError", err)
				}
				if inputErr.Reason != models.ReasonNonNumeric {
					t.Errorf("Reason = %v", inputErr.Reason)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewProjectionService(logging.NewNopLogger(), newCollector())
			p, err := svc.Calculate(context.Background(), tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Calculate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.checkValues != nil {
				tt.checkValues(t, p, err)
			}
		})
	}
}

func TestProjectionService_Metrics(t *testing.T) {
	mc := newCollector()
	svc := NewProjectionService(logging.NewNopLogger(), mc)
	ctx := context.Background()

	if _, err := svc.Calculate(ctx, calculator.DefaultInputs); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Calculate(ctx, models.RawProjectionRequest{MonthlyUsage: "0", PricePerKwh: "19", RateIncrease: "7"}); err == nil {
		t.Fatal("expected rejection for zero usage")
	}

	if got := testutil.ToFloat64(mc.ProjectionsTotal); got != 1 {
		t.Errorf("projections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(mc.ProjectionValidationTotal.WithLabelValues("monthly_usage_kwh", "non_positive")); got != 1 {
		t.Errorf("rejections = %v, want 1", got)
	}
}

func newApplicationService(d Dispatcher) (*ApplicationService, *metrics.Collector) {
	mc := newCollector()
	return NewApplicationService(d, logging.NewNopLogger(), mc), mc
}

func fillApplication(svc *ApplicationService, id string) error {
	ctx := context.Background()

	if _, err := svc.SelectOption(ctx, id, models.FieldPropertyType, "homeowner"); err != nil {
		return fmt.Errorf("SelectOption: %w", err)
	}
	steps := []struct{ field, value string }{
		{models.FieldAddress, "1 Main St"},
		{models.FieldFirstName, "Ada"},
		{models.FieldLastName, "Lovelace"},
		{models.FieldEmail, ""},
	}
	for _, s := range steps {
		if _, err := svc.Capture(ctx, id, s.field, s.value); err != nil {
			return fmt.Errorf("Capture(%s): %w", s.field, err)
		}
		if _, err := svc.Next(ctx, id); err != nil {
			return fmt.Errorf("Next after %s: %w", s.field, err)
		}
	}
	if _, err := svc.Capture(ctx, id, models.FieldPhone, "555-123-4567"); err != nil {
		return fmt.Errorf("Capture(phone): %w", err)
	}
	return nil
}

func TestApplicationService_FullFlow(t *testing.T) {
	d := &recordingDispatcher{}
	svc, mc := newApplicationService(d)
	ctx := context.Background()

	snap := svc.Start(ctx)
	if snap.Step != 1 || snap.TotalSteps != 6 || snap.ID == "" {
		t.Fatalf("Start() = %+v", snap)
	}

	if err := fillApplication(svc, snap.ID); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(ctx, snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Step != 6 {
		t.Errorf("Step = %d, want 6", got.Step)
	}
	if got.Fields[models.FieldPhone] != "(555) 123-4567" {
		t.Errorf("phone = %q", got.Fields[models.FieldPhone])
	}
	if got.AddressPrompt != "What is your home address?" {
		t.Errorf("AddressPrompt = %q", got.AddressPrompt)
	}

	receipt, err := svc.Submit(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if receipt.Message != SubmissionConfirmation || !receipt.Queued {
		t.Errorf("receipt = %+v", receipt)
	}
	if len(d.subs) != 1 || d.subs[0].SessionID != snap.ID {
		t.Fatalf("dispatched = %+v", d.subs)
	}
	if d.subs[0].Payload[models.FieldLastName] != "Lovelace" {
		t.Errorf("payload = %v", d.subs[0].Payload)
	}

	if _, err := svc.Get(ctx, snap.ID); !isNotFound(err) {
		t.Errorf("Get after submit error = %v, want NotFoundError", err)
	}
	if svc.Len() != 0 {
		t.Errorf("Len() = %d, want 0", svc.Len())
	}
	if got := testutil.ToFloat64(mc.SessionsActive); got != 0 {
		t.Errorf("active sessions = %v, want 0", got)
	}
	if got := testutil.ToFloat64(mc.SubmissionsTotal.WithLabelValues("accepted")); got != 1 {
		t.Errorf("accepted = %v, want 1", got)
	}
}

func TestApplicationService_SubmitAcceptedWhenQueueFull(t *testing.T) {
	svc, _ := newApplicationService(&recordingDispatcher{full: true})
	ctx := context.Background()

	snap := svc.Start(ctx)
	if err := fillApplication(svc, snap.ID); err != nil {
		t.Fatal(err)
	}

	receipt, err := svc.Submit(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if receipt.Queued {
		t.Error("Queued should be false when the dispatcher drops")
	}
	if receipt.Message != SubmissionConfirmation {
		t.Errorf("Message = %q", receipt.Message)
	}
}

func TestApplicationService_SubmitRejected(t *testing.T) {
	d := &recordingDispatcher{}
	svc, mc := newApplicationService(d)
	ctx := context.Background()

	snap := svc.Start(ctx)
	_, err := svc.Submit(ctx, snap.ID)

	var subErr *models.SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("error = %v, want *SubmissionError", err)
	}
	if len(subErr.Missing) != 4 {
		t.Errorf("Missing = %v", subErr.Missing)
	}
	if len(d.subs) != 0 {
		t.Error("rejected submission must not be dispatched")
	}
	if _, err := svc.Get(ctx, snap.ID); err != nil {
		t.Errorf("session should survive a rejected submit: %v", err)
	}
	if got := testutil.ToFloat64(mc.SubmissionsTotal.WithLabelValues("rejected")); got != 1 {
		t.Errorf("rejected = %v, want 1", got)
	}
}

func TestApplicationService_StepRejected(t *testing.T) {
	svc, mc := newApplicationService(&recordingDispatcher{})
	ctx := context.Background()

	snap := svc.Start(ctx)
	if _, err := svc.SelectOption(ctx, snap.ID, models.FieldPropertyType, "renter"); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Next(ctx, snap.ID)
	var stepErr *models.StepValidationError
	if !errors.As(err, &stepErr) || stepErr.Field != models.FieldAddress {
		t.Fatalf("Next() error = %v, want address step error", err)
	}
	if got.Step != 0 {
		t.Errorf("snapshot on error should be empty, got step %d", got.Step)
	}

	cur, _ := svc.Get(ctx, snap.ID)
	if cur.Step != 2 {
		t.Errorf("Step = %d, want 2", cur.Step)
	}
	if cur.AddressPrompt != "What is your rental property address?" {
		t.Errorf("AddressPrompt = %q", cur.AddressPrompt)
	}
	if got := testutil.ToFloat64(mc.StepValidationFailures.WithLabelValues("address")); got != 1 {
		t.Errorf("step failures = %v, want 1", got)
	}

	prev, err := svc.Previous(ctx, snap.ID)
	if err != nil || prev.Step != 1 {
		t.Errorf("Previous() = %+v, %v", prev, err)
	}
}

func TestApplicationService_UnknownSession(t *testing.T) {
	svc, _ := newApplicationService(&recordingDispatcher{})
	ctx := context.Background()

	if _, err := svc.Next(ctx, "missing"); !isNotFound(err) {
		t.Errorf("Next() error = %v", err)
	}
	if err := svc.Close(ctx, "missing"); !isNotFound(err) {
		t.Errorf("Close() error = %v", err)
	}
}

func TestApplicationService_Close(t *testing.T) {
	svc, _ := newApplicationService(&recordingDispatcher{})
	ctx := context.Background()

	snap := svc.Start(ctx)
	if err := svc.Close(ctx, snap.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, snap.ID); !isNotFound(err) {
		t.Errorf("Get after Close error = %v", err)
	}
}

func TestApplicationService_SweepIdle(t *testing.T) {
	svc, mc := newApplicationService(&recordingDispatcher{})
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	stale := svc.Start(ctx)
	now = now.Add(20 * time.Minute)
	fresh := svc.Start(ctx)
	now = now.Add(15 * time.Minute)

	if n := svc.SweepIdle(ctx, 30*time.Minute); n != 1 {
		t.Fatalf("SweepIdle() = %d, want 1", n)
	}
	if _, err := svc.Get(ctx, stale.ID); !isNotFound(err) {
		t.Errorf("stale session still present: %v", err)
	}
	if _, err := svc.Get(ctx, fresh.ID); err != nil {
		t.Errorf("fresh session removed: %v", err)
	}
	if got := testutil.ToFloat64(mc.SessionsExpiredTotal); got != 1 {
		t.Errorf("expired = %v, want 1", got)
	}
}

func TestApplicationService_ConcurrentSessions(t *testing.T) {
	d := &recordingDispatcher{}
	svc, _ := newApplicationService(d)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap := svc.Start(ctx)
			if err := fillApplication(svc, snap.ID); err != nil {
				t.Error(err)
				return
			}
			if _, err := svc.Submit(ctx, snap.ID); err != nil {
				t.Errorf("Submit() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if len(d.subs) != 20 {
		t.Errorf("dispatched %d, want 20", len(d.subs))
	}
}

func TestScenarioBatchService_Run(t *testing.T) {
	projections := NewProjectionService(logging.NewNopLogger(), newCollector())
	mc := newCollector()
	svc := NewScenarioBatchService(projections, logging.NewNopLogger(), mc)

	input := strings.Join([]string{
		"# monthly\tprice\trate",
		"800\t19.0\t7.0",
		"",
		"1000\t12\t0",
		"abc\t19\t7",
		"800\t19",
		"-5\t19\t7",
	}, "\n")

	res, err := svc.Run(context.Background(), strings.NewReader(input), "inline")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.TotalLines != 5 || res.Projected != 2 || res.Failed != 3 {
		t.Errorf("counts = %d/%d/%d, want 5/2/3", res.TotalLines, res.Projected, res.Failed)
	}
	if len(res.Errors) != 3 || !strings.HasPrefix(res.Errors[0], "line 5:") {
		t.Errorf("Errors = %v", res.Errors)
	}
	if res.Scenarios[0].Line != 2 || res.Scenarios[0].Summary.TotalCost != "$172,296" {
		t.Errorf("first scenario = %+v", res.Scenarios[0])
	}
	// 1000 kWh * 12 months * 12 cents = $1,440 a year, flat for 30 years.
	if res.Scenarios[1].Summary.TotalCost != "$43,200" {
		t.Errorf("flat scenario total = %q, want $43,200", res.Scenarios[1].Summary.TotalCost)
	}
	if got := testutil.ToFloat64(mc.ScenarioLinesTotal.WithLabelValues("projected")); got != 2 {
		t.Errorf("projected lines metric = %v, want 2", got)
	}
	if got := testutil.ToFloat64(mc.ScenarioLinesTotal.WithLabelValues("failed")); got != 3 {
		t.Errorf("failed lines metric = %v, want 3", got)
	}
}

func TestScenarioBatchService_RunFileMissing(t *testing.T) {
	svc := NewScenarioBatchService(NewProjectionService(logging.NewNopLogger(), newCollector()), logging.NewNopLogger(), newCollector())
	if _, err := svc.RunFile(context.Background(), "does/not/exist.tsv"); err == nil {
		t.Error("expected error for missing file")
	}
}

func isNotFound(err error) bool {
	var nf *models.NotFoundError
	return errors.As(err, &nf)
}
