package calculator

import "energy-calculator/internal/models"

// centsPerDollar converts a kWh price in cents into dollars.
const centsPerDollar = 100

// Project computes the 30-year projection for a validated input. Year 0 is
// billed at the input price; the rate increase compounds after each year is
// recorded.
func Project(in models.ProjectionInput) models.ProjectionResult {
	res := models.ProjectionResult{
		Years:            make([]int, models.ProjectionYears),
		AnnualCosts:      make([]float64, models.ProjectionYears),
		AnnualUnitPrices: make([]float64, models.ProjectionYears),
	}

	price := in.UnitPriceCents
	growth := 1 + in.AnnualRateIncreasePercent/100
	total := 0.0

	for i := 0; i < models.ProjectionYears; i++ {
		yearlyKwh := in.MonthlyConsumptionKwh * 12
		// The conversion pins the product's rounding so no fused multiply-add
		// can change the result on any architecture.
		cost := float64(yearlyKwh*price) / centsPerDollar

		res.Years[i] = models.ProjectionBaseYear + i
		res.AnnualCosts[i] = cost
		res.AnnualUnitPrices[i] = price

		total += cost
		price *= growth
	}

	res.TotalCost = total
	res.AverageAnnualCost = total / models.ProjectionYears
	res.FinalYearCost = res.AnnualCosts[models.ProjectionYears-1]
	return res
}

// Summarize formats the three headline figures of a projection.
func Summarize(res models.ProjectionResult) models.ProjectionSummary {
	return models.ProjectionSummary{
		TotalCost:         FormatCurrency(res.TotalCost),
		AverageAnnualCost: FormatCurrency(res.AverageAnnualCost),
		FinalYearCost:     FormatCurrency(res.FinalYearCost),
	}
}
