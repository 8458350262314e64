// Package money converts calculator amounts to the 2-decimal values that are
// stored, printed and exported. Rounding happens here and nowhere else.
package money

import (
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the prefix printed in front of amounts.
const DefaultCurrency = "RM"

const scale = 2

// Round2 rounds half away from zero to two decimal places.
func Round2(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(scale).InexactFloat64()
}

// ToCents rounds amount to two decimals and returns it in minor units.
func ToCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Round(scale).Shift(scale).IntPart()
}

// FromCents converts minor units back to a currency amount.
func FromCents(cents int64) float64 {
	return decimal.New(cents, -scale).InexactFloat64()
}

// Format renders amount as "RM 147.55".
func Format(currency string, amount float64) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return currency + " " + decimal.NewFromFloat(amount).StringFixed(scale)
}

// FormatCents renders minor units the same way Format does.
func FormatCents(currency string, cents int64) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return currency + " " + decimal.New(cents, -scale).StringFixed(scale)
}

// RoundingDrift is the absolute difference between the sum of individually
// rounded parts and the total rounded once. For n parts it is bounded by the
// rounding error of n+1 half-cent roundings; for the invoice pipeline (three
// parts) it never exceeds one cent.
func RoundingDrift(total float64, parts ...float64) float64 {
	sum := decimal.Zero
	for _, p := range parts {
		sum = sum.Add(decimal.NewFromFloat(p).Round(scale))
	}
	return sum.Sub(decimal.NewFromFloat(total).Round(scale)).Abs().InexactFloat64()
}

// SumCents adds minor-unit values.
func SumCents(values ...int64) int64 {
	var total int64
	for _, v := range values {
		total += v
	}
	return total
}

// DecimalCents renders minor units as a plain "147.55" for exports.
func DecimalCents(cents int64) string {
	return decimal.New(cents, -scale).StringFixed(scale)
}
