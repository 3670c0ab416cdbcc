package metrics

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// PercentDiff returns how far current is from previous in percent, rounded to
// two places. It is 0 when either side is 0.
func PercentDiff(current, previous int64) float64 {
	if current == 0 || previous == 0 {
		return 0
	}
	d := decimal.NewFromInt(current).
		Mul(hundred).
		Div(decimal.NewFromInt(previous)).
		Sub(hundred).
		Round(2)
	f, _ := d.Float64()
	return f
}
