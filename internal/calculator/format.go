package calculator

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders a dollar amount as en-US currency with no cents,
// e.g. 172296.47 -> "$172,296". Halves round away from zero.
func FormatCurrency(amount float64) string {
	switch {
	case math.IsNaN(amount):
		return "NaN"
	case math.IsInf(amount, 1):
		return "$∞"
	case math.IsInf(amount, -1):
		return "-$∞"
	}

	// Stay in decimal: amounts past 9.2e18 do not fit an int64.
	whole := decimal.NewFromFloat(amount).Round(0)
	digits := groupThousands(whole.Abs().String())
	if whole.IsNegative() {
		return "-$" + digits
	}
	return "$" + digits
}

// groupThousands inserts en-US grouping commas into a string of digits.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := len(digits) % 3
	if head == 0 {
		head = 3
	}

	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatUnitPrice renders a kWh price in cents with two decimals, e.g. "19.00¢".
func FormatUnitPrice(cents float64) string {
	if math.IsNaN(cents) || math.IsInf(cents, 0) {
		return "NaN¢"
	}
	return decimal.NewFromFloat(cents).StringFixed(2) + "¢"
}
