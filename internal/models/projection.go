package models

// ProjectionYears is the fixed length of every projection.
const ProjectionYears = 30

// ProjectionBaseYear is the calendar year of projection index 0.
const ProjectionBaseYear = 2025

// ProjectionInput is a validated calculator request. Values are only
// produced by the calculator's validators, never built from raw input.
type ProjectionInput struct {
	MonthlyConsumptionKwh     float64 `json:"monthly_usage_kwh"`
	UnitPriceCents            float64 `json:"price_per_kwh_cents"`
	AnnualRateIncreasePercent float64 `json:"rate_increase_percent"`
}

// ProjectionResult is a 30-year cost projection. Index i of every slice
// refers to year ProjectionBaseYear+i.
type ProjectionResult struct {
	Years             []int     `json:"years"`
	AnnualCosts       []float64 `json:"annual_costs"`
	AnnualUnitPrices  []float64 `json:"annual_unit_prices"`
	TotalCost         float64   `json:"total_cost"`
	AverageAnnualCost float64   `json:"average_annual_cost"`
	FinalYearCost     float64   `json:"final_year_cost"`
}

// ProjectionSummary carries the three headline figures formatted for display.
type ProjectionSummary struct {
	TotalCost         string `json:"total_cost"`
	AverageAnnualCost string `json:"average_annual_cost"`
	FinalYearCost     string `json:"final_year_cost"`
}

// RawProjectionRequest holds user-supplied calculator values before validation.
type RawProjectionRequest struct {
	MonthlyUsage string
	PricePerKwh  string
	RateIncrease string
}
