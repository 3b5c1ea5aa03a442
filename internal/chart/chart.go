// Package chart turns a projection into the bar-chart dataset consumed by
// the browser renderer: labels, bar values, tooltip lines and the summary
// figures shown under the chart.
package chart

import (
	"math"
	"strconv"

	"energy-calculator/internal/calculator"
	"energy-calculator/internal/models"
)

// DatasetLabel is the legend and y-axis title of the cost series.
const DatasetLabel = "Annual Energy Cost ($)"

// Chart is a renderer-ready bar chart of annual costs.
type Chart struct {
	Labels   []string                 `json:"labels"`
	Dataset  Dataset                  `json:"dataset"`
	Tooltips [][]string               `json:"tooltips"`
	Summary  models.ProjectionSummary `json:"summary"`
	XTitle   string                   `json:"x_title"`
	YTitle   string                   `json:"y_title"`
	YTicks   []Tick                   `json:"y_ticks"`
}

// Tick is one labelled y-axis grid line.
type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Dataset is a single bar series.
type Dataset struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Build derives the chart for a projection. Bar i is year i of the result.
func Build(res models.ProjectionResult) Chart {
	n := len(res.Years)
	c := Chart{
		Labels:   make([]string, n),
		Dataset:  Dataset{Label: DatasetLabel, Values: make([]float64, n)},
		Tooltips: make([][]string, n),
		Summary:  calculator.Summarize(res),
		XTitle:   "Year",
		YTitle:   DatasetLabel,
	}

	for i, year := range res.Years {
		c.Labels[i] = strconv.Itoa(year)
		c.Dataset.Values[i] = res.AnnualCosts[i]
		c.Tooltips[i] = Tooltip(year, res.AnnualCosts[i], res.AnnualUnitPrices[i])
	}
	c.YTicks = Ticks(res.FinalYearCost)
	return c
}

// Tooltip returns the hover lines for one bar.
func Tooltip(year int, cost, unitPriceCents float64) []string {
	return []string{
		"Year: " + strconv.Itoa(year),
		"Cost: " + calculator.FormatCurrency(cost),
		"Price per kWh: " + calculator.FormatUnitPrice(unitPriceCents),
	}
}

// AxisTick formats a y-axis tick value.
func AxisTick(value float64) string {
	return calculator.FormatCurrency(value)
}

// Ticks returns evenly spaced y-axis ticks from zero to at least top, at most
// six of them, with a step of 1, 2 or 5 times a power of ten.
func Ticks(top float64) []Tick {
	if !(top > 0) || math.IsInf(top, 0) {
		return []Tick{{Value: 0, Label: AxisTick(0)}}
	}

	raw := top / 5
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := 10 * mag
	for _, m := range []float64{1, 2, 5} {
		if m*mag >= raw {
			step = m * mag
			break
		}
	}

	if !(step > 0) {
		return []Tick{{Value: 0, Label: AxisTick(0)}, {Value: top, Label: AxisTick(top)}}
	}

	var ticks []Tick
	for i := 0; ; i++ {
		v := step * float64(i)
		ticks = append(ticks, Tick{Value: v, Label: AxisTick(v)})
		if v >= top {
			return ticks
		}
	}
}
