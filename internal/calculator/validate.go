package calculator

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"energy-calculator/internal/models"
)

// Input field names as they appear in API payloads and validation errors.
const (
	FieldMonthlyUsage = "monthly_usage_kwh"
	FieldPricePerKwh  = "price_per_kwh_cents"
	FieldRateIncrease = "rate_increase_percent"
)

// DefaultInputs are the values the calculator form is pre-filled with.
var DefaultInputs = models.RawProjectionRequest{
	MonthlyUsage: "800",
	PricePerKwh:  "19.0",
	RateIncrease: "7.0",
}

// Validate parses and checks the three raw calculator inputs. Fields are
// checked in form order and the first failure is returned.
func Validate(raw models.RawProjectionRequest) (models.ProjectionInput, error) {
	monthly, err := parseField(FieldMonthlyUsage, raw.MonthlyUsage)
	if err != nil {
		return models.ProjectionInput{}, err
	}
	price, err := parseField(FieldPricePerKwh, raw.PricePerKwh)
	if err != nil {
		return models.ProjectionInput{}, err
	}
	rate, err := parseField(FieldRateIncrease, raw.RateIncrease)
	if err != nil {
		return models.ProjectionInput{}, err
	}
	return ValidateValues(monthly, price, rate)
}

// ValidateValues applies the range constraints to already-numeric inputs:
// usage and price must be positive, the rate increase non-negative.
func ValidateValues(monthly, price, rate float64) (models.ProjectionInput, error) {
	checks := []struct {
		field  string
		value  float64
		zeroOK bool
	}{
		{FieldMonthlyUsage, monthly, false},
		{FieldPricePerKwh, price, false},
		{FieldRateIncrease, rate, true},
	}

	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return models.ProjectionInput{}, invalid(c.field, c.value, models.ReasonNonNumeric)
		}
		if c.zeroOK && c.value < 0 {
			return models.ProjectionInput{}, invalid(c.field, c.value, models.ReasonNegative)
		}
		if !c.zeroOK && c.value <= 0 {
			return models.ProjectionInput{}, invalid(c.field, c.value, models.ReasonNonPositive)
		}
	}

	return models.ProjectionInput{
		MonthlyConsumptionKwh:     monthly,
		UnitPriceCents:            price,
		AnnualRateIncreasePercent: rate,
	}, nil
}

// IsAcceptable reports whether a raw value would get the "valid" highlight
// while the user is typing: present, numeric and not negative.
func IsAcceptable(raw string) bool {
	v, err := parseFloat(raw)
	return err == nil && v >= 0
}

func parseField(field, raw string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, &models.InputValidationError{Field: field, Value: raw, Reason: models.ReasonMissing}
	}
	v, err := parseFloat(raw)
	if err != nil {
		return 0, &models.InputValidationError{Field: field, Value: raw, Reason: models.ReasonNonNumeric}
	}
	return v, nil
}

// decimalNumber is the plain decimal syntax a form field accepts. Hex floats
// ("0x1p4") and digit separators ("1_000") are rejected.
var decimalNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

func parseFloat(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if !decimalNumber.MatchString(s) {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

func invalid(field string, value float64, reason models.InputReason) *models.InputValidationError {
	return &models.InputValidationError{
		Field:  field,
		Value:  strconv.FormatFloat(value, 'g', -1, 64),
		Reason: reason,
	}
}
