// Package money converts integer minor units to decimals and computes the
// ratios reported by the analytics endpoints.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FromCents converts an amount in minor units to a decimal.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Format renders cents with two fraction digits, e.g. 10050 -> "100.50".
func Format(cents int64) string {
	return FromCents(cents).StringFixed(2)
}

// Percentage returns part/total*100 rounded to two places, or 0 when total is 0.
func Percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	v, _ := decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(total)).Round(2).Float64()
	return v
}

// Average returns total/count in minor units rounded to two places, or 0 when count is 0.
func Average(total, count int64) float64 {
	if count == 0 {
		return 0
	}
	v, _ := decimal.NewFromInt(total).Div(decimal.NewFromInt(count)).Round(2).Float64()
	return v
}

// PercentChange returns the change from previous to current in percent.
// A zero baseline yields 100 when current is positive and 0 otherwise.
func PercentChange(previous, current int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	prev := decimal.NewFromInt(previous).Abs()
	v, _ := decimal.NewFromInt(current - previous).Mul(hundred).Div(prev).Round(2).Float64()
	return v
}

// Ratio returns numerator/denominator*100 as a decimal, or zero when the
// denominator is not positive.
func Ratio(numerator, denominator int64) decimal.Decimal {
	if denominator <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(numerator).Mul(hundred).Div(decimal.NewFromInt(denominator)).Round(2)
}
