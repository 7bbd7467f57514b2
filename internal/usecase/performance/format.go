package performance

import "github.com/shopspring/decimal"

// formatDecimal renders multipliers and percents without float noise (1.1, not 1.1000000000000001).
func formatDecimal(v float64) string {
	return decimal.NewFromFloat(v).String()
}
