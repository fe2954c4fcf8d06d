package utils

import "github.com/shopspring/decimal"

// Round2 rounds a monetary value to 2 decimal places for display. Internal
// arithmetic stays at full precision so rounding error cannot compound across
// EMI recomputations.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
