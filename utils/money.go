package utils

import (
	"fmt"
	"math"
)

// Round2 rounds x to 2 decimal places (banking-style simple round).
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// FormatAmount renders a money value with two decimals for exports and receipts.
func FormatAmount(x float64) string {
	return fmt.Sprintf("%.2f", x)
}
