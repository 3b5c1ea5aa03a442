package calculator

import (
	"errors"
	"math"
	"strings"
	"testing"

	"energy-calculator/internal/models"
)

// TestValidate tests parsing and constraint checks of raw calculator input
func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		raw        models.RawProjectionRequest
		wantErr    bool
		wantField  string
		wantReason models.InputReason
		checkInput func(*testing.T, models.ProjectionInput)
	}{
		{
			name: "defaults are valid",
			raw:  DefaultInputs,
			checkInput: func(t *testing.T, in models.ProjectionInput) {
				if in.MonthlyConsumptionKwh != 800 || in.UnitPriceCents != 19 || in.AnnualRateIncreasePercent != 7 {
					t.Errorf("unexpected input %+v", in)
				}
			},
		},
		{
			name: "surrounding whitespace is ignored",
			raw:  models.RawProjectionRequest{MonthlyUsage: " 650 ", PricePerKwh: "\t12.5", RateIncrease: "3.5\n"},
			checkInput: func(t *testing.T, in models.ProjectionInput) {
				if in.MonthlyConsumptionKwh != 650 || in.UnitPriceCents != 12.5 || in.AnnualRateIncreasePercent != 3.5 {
					t.Errorf("unexpected input %+v", in)
				}
			},
		},
		{
			name: "zero rate increase is allowed",
			raw:  models.RawProjectionRequest{MonthlyUsage: "800", PricePerKwh: "19", RateIncrease: "0"},
		},
		{
			name:       "missing usage",
			raw:        models.RawProjectionRequest{MonthlyUsage: "", PricePerKwh: "19", RateIncrease: "7"},
			wantErr:    true,
			wantField:  FieldMonthlyUsage,
			wantReason: models.ReasonMissing,
		},
		{
			name:       "blank price",
			raw:        models.RawProjectionRequest{MonthlyUsage: "800", PricePerKwh: "   ", RateIncrease: "7"},
			wantErr:    true,
			wantField:  FieldPricePerKwh,
			wantReason: models.ReasonMissing,
		},
		{
			name:       "non numeric rate",
			raw:        models.RawProjectionRequest{MonthlyUsage: "800", PricePerKwh: "19", RateIncrease: "seven"},
			wantErr:    true,
			wantField:  FieldRateIncrease,
			wantReason: models.ReasonNonNumeric,
		},
		{
			name:       "trailing garbage is non numeric",
			raw:        models.RawProjectionRequest{MonthlyUsage: "800kwh", PricePerKwh: "19", RateIncrease: "7"},
			wantErr:    true,
			wantField:  FieldMonthlyUsage,
			wantReason: models.ReasonNonNumeric,
		},
		{
			name:       "infinity is non numeric",
			raw:        models.RawProjectionRequest{MonthlyUsage: "800", PricePerKwh: "Inf", RateIncrease: "7"},
			wantErr:    true,
			wantField:  FieldPricePerKwh,
			wantReason: models.ReasonNonNumeric,
		},
		{
			name:       "hex float is non numeric",
			raw:        models.RawProjectionRequest{MonthlyUsage: "0x1p4", PricePerKwh: "19", RateIncrease: "7"},
			wantErr:    true,
			wantField:  FieldMonthlyUsage,
			wantReason: models.ReasonNonNumeric,
		},
		{
			name:       "digit separators are non numeric",
			raw:        models.RawProjectionRequest{MonthlyUsage: "800", PricePerKwh: "19", RateIncrease: "1_0"},
			wantErr:    true,
			wantField:  FieldRateIncrease,
			wantReason: models.ReasonNonNumeric,
		},
		{
			name:       "zero usage rejected",
			raw:        models.RawProjectionRequest{MonthlyUsage: "0", PricePerKwh: "19", RateIncrease: "7"},
			wantErr:    true,
			wantField:  FieldMonthlyUsage,
			wantReason: models.ReasonNonPositive,
		},
		{
			name:       "negative price rejected",
			raw:        models.RawProjectionRequest{MonthlyUsage: "800", PricePerKwh: "-19", RateIncrease: "7"},
			wantErr:    true,
			wantField:  FieldPricePerKwh,
			wantReason: models.ReasonNonPositive,
		},
		{
			name:       "negative rate rejected",
			raw:        models.RawProjectionRequest{MonthlyUsage: "800", PricePerKwh: "19", RateIncrease: "-0.5"},
			wantErr:    true,
			wantField:  FieldRateIncrease,
			wantReason: models.ReasonNegative,
		},
		{
			name:       "format errors win over range errors",
			raw:        models.RawProjectionRequest{MonthlyUsage: "-5", PricePerKwh: "", RateIncrease: "7"},
			wantErr:    true,
			wantField:  FieldPricePerKwh,
			wantReason: models.ReasonMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := Validate(tt.raw)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				var verr *models.InputValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("error type = %T, want *models.InputValidationError", err)
				}
				if verr.Field != tt.wantField {
					t.Errorf("Field = %v, want %v", verr.Field, tt.wantField)
				}
				if verr.Reason != tt.wantReason {
					t.Errorf("Reason = %v, want %v", verr.Reason, tt.wantReason)
				}
				return
			}

			if tt.checkInput != nil {
				tt.checkInput(t, in)
			}
		})
	}
}

func TestValidateValues_NaN(t *testing.T) {
	_, err := ValidateValues(math.NaN(), 19, 7)
	var verr *models.InputValidationError
	if !errors.As(err, &verr) || verr.Reason != models.ReasonNonNumeric {
		t.Fatalf("ValidateValues(NaN) error = %v, want non_numeric", err)
	}
}

func TestIsAcceptable(t *testing.T) {
	tests := map[string]bool{
		"800":   true,
		"0":     true,
		"7.5":   true,
		"":      false,
		"-1":    false,
		"abc":   false,
		"1e2":   true,
		" 12 ":  true,
		".5":    true,
		"+3":    true,
		"0x10":  false,
		"1_000": false,
		"NaN":   false,
	}
	for raw, want := range tests {
		if got := IsAcceptable(raw); got != want {
			t.Errorf("IsAcceptable(%q) = %v, want %v", raw, got, want)
		}
	}
}

// TestProject_ReferenceValues pins the default scenario to values computed
// once with the same float64 operation order.
func TestProject_ReferenceValues(t *testing.T) {
	in, err := ValidateValues(800, 19.0, 7.0)
	if err != nil {
		t.Fatalf("ValidateValues() error = %v", err)
	}

	res := Project(in)

	if res.AnnualCosts[0] != 1824.0 {
		t.Errorf("year-0 cost = %v, want 1824", res.AnnualCosts[0])
	}
	if res.AnnualUnitPrices[0] != 19.0 {
		t.Errorf("year-0 price = %v, want 19", res.AnnualUnitPrices[0])
	}
	if res.AnnualUnitPrices[1] != 20.330000000000002 {
		t.Errorf("year-1 price = %v, want 20.330000000000002", res.AnnualUnitPrices[1])
	}
	if res.AnnualCosts[1] != 1951.6800000000003 {
		t.Errorf("year-1 cost = %v, want 1951.6800000000003", res.AnnualCosts[1])
	}
	if res.TotalCost != 172296.47425450786 {
		t.Errorf("TotalCost = %v, want 172296.47425450786", res.TotalCost)
	}
	if res.AverageAnnualCost != 5743.2158084835955 {
		t.Errorf("AverageAnnualCost = %v, want 5743.2158084835955", res.AverageAnnualCost)
	}
	if res.FinalYearCost != 12976.404857771551 {
		t.Errorf("FinalYearCost = %v, want 12976.404857771551", res.FinalYearCost)
	}

	summary := Summarize(res)
	if summary.TotalCost != "$172,296" {
		t.Errorf("summary total = %q, want $172,296", summary.TotalCost)
	}
	if summary.AverageAnnualCost != "$5,743" {
		t.Errorf("summary average = %q, want $5,743", summary.AverageAnnualCost)
	}
	if summary.FinalYearCost != "$12,976" {
		t.Errorf("summary final = %q, want $12,976", summary.FinalYearCost)
	}
}

func TestProject_Properties(t *testing.T) {
	inputs := []models.ProjectionInput{
		{MonthlyConsumptionKwh: 800, UnitPriceCents: 19, AnnualRateIncreasePercent: 7},
		{MonthlyConsumptionKwh: 1000, UnitPriceCents: 12.5, AnnualRateIncreasePercent: 3.5},
		{MonthlyConsumptionKwh: 0.5, UnitPriceCents: 0.01, AnnualRateIncreasePercent: 0},
		{MonthlyConsumptionKwh: 25000, UnitPriceCents: 45, AnnualRateIncreasePercent: 25},
	}

	for _, in := range inputs {
		res := Project(in)

		if len(res.Years) != models.ProjectionYears ||
			len(res.AnnualCosts) != models.ProjectionYears ||
			len(res.AnnualUnitPrices) != models.ProjectionYears {
			t.Fatalf("%+v: sequence lengths %d/%d/%d, want 30", in,
				len(res.Years), len(res.AnnualCosts), len(res.AnnualUnitPrices))
		}

		sum := 0.0
		for i := range res.Years {
			if res.Years[i] != models.ProjectionBaseYear+i {
				t.Errorf("%+v: Years[%d] = %d, want %d", in, i, res.Years[i], models.ProjectionBaseYear+i)
			}
			sum += res.AnnualCosts[i]
		}

		if math.Abs(sum-res.TotalCost) > 1e-9*math.Max(1, sum) {
			t.Errorf("%+v: TotalCost = %v, sum = %v", in, res.TotalCost, sum)
		}
		if res.AverageAnnualCost != res.TotalCost/30 {
			t.Errorf("%+v: AverageAnnualCost = %v, want %v", in, res.AverageAnnualCost, res.TotalCost/30)
		}
		if res.FinalYearCost != res.AnnualCosts[29] {
			t.Errorf("%+v: FinalYearCost = %v, want %v", in, res.FinalYearCost, res.AnnualCosts[29])
		}
	}
}

func TestProject_Deterministic(t *testing.T) {
	in := models.ProjectionInput{MonthlyConsumptionKwh: 937.25, UnitPriceCents: 17.3, AnnualRateIncreasePercent: 4.1}
	first := Project(in)

	for n := 0; n < 5; n++ {
		again := Project(in)
		if again.TotalCost != first.TotalCost {
			t.Fatalf("TotalCost changed between runs: %v vs %v", again.TotalCost, first.TotalCost)
		}
		for i := range first.AnnualCosts {
			if math.Float64bits(again.AnnualCosts[i]) != math.Float64bits(first.AnnualCosts[i]) {
				t.Fatalf("AnnualCosts[%d] changed between runs", i)
			}
		}
	}
}

func TestProject_ZeroRateIsFlat(t *testing.T) {
	res := Project(models.ProjectionInput{MonthlyConsumptionKwh: 800, UnitPriceCents: 19, AnnualRateIncreasePercent: 0})

	for i := 1; i < models.ProjectionYears; i++ {
		if res.AnnualUnitPrices[i] != res.AnnualUnitPrices[0] {
			t.Errorf("AnnualUnitPrices[%d] = %v, want %v", i, res.AnnualUnitPrices[i], res.AnnualUnitPrices[0])
		}
		if res.AnnualCosts[i] != res.AnnualCosts[0] {
			t.Errorf("AnnualCosts[%d] = %v, want %v", i, res.AnnualCosts[i], res.AnnualCosts[0])
		}
	}
}

func TestProject_PositiveRateIsIncreasing(t *testing.T) {
	for _, rate := range []float64{0.1, 1, 3.5, 7, 12} {
		res := Project(models.ProjectionInput{MonthlyConsumptionKwh: 800, UnitPriceCents: 19, AnnualRateIncreasePercent: rate})
		for i := 1; i < models.ProjectionYears; i++ {
			if !(res.AnnualUnitPrices[i] > res.AnnualUnitPrices[i-1]) {
				t.Errorf("rate %v: price[%d]=%v not above price[%d]=%v", rate, i, res.AnnualUnitPrices[i], i-1, res.AnnualUnitPrices[i-1])
			}
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0"},
		{1824, "$1,824"},
		{172296.47425450786, "$172,296"},
		{999.5, "$1,000"},
		{999.49, "$999"},
		{1234567.89, "$1,234,568"},
		{-1234.5, "-$1,235"},
		{-0.4, "$0"},
		{0.5, "$1"},
		{-0.5, "-$1"},
		{100, "$100"},
		{9.3e18, "$9,300,000,000,000,000,000"},
		{1e20, "$100,000,000,000,000,000,000"},
		{-9.3e18, "-$9,300,000,000,000,000,000"},
	}

	for _, tt := range tests {
		if got := FormatCurrency(tt.amount); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatCurrency_LargeProjection(t *testing.T) {
	in, err := ValidateValues(1e17, 19, 7)
	if err != nil {
		t.Fatalf("ValidateValues() error = %v", err)
	}
	s := Summarize(Project(in))

	if !strings.HasPrefix(s.TotalCost, "$21,") {
		t.Errorf("TotalCost = %q, want about $21.5 quintillion", s.TotalCost)
	}
	if n := strings.Count(s.TotalCost, ","); n != 6 {
		t.Errorf("TotalCost = %q has %d groups, want 6", s.TotalCost, n)
	}
}

func TestFormatUnitPrice(t *testing.T) {
	tests := []struct {
		cents float64
		want  string
	}{
		{19, "19.00¢"},
		{20.330000000000002, "20.33¢"},
		{12.5, "12.50¢"},
		{135.17088393512032, "135.17¢"},
	}

	for _, tt := range tests {
		if got := FormatUnitPrice(tt.cents); got != tt.want {
			t.Errorf("FormatUnitPrice(%v) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
