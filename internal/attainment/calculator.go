package attainment

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Percentage returns achieved / target * 100. A zero target yields 0.
// Callers reject negative amounts before calling.
func Percentage(target, achieved decimal.Decimal) float64 {
	if !target.IsPositive() {
		return 0
	}
	return achieved.Mul(hundred).Div(target).InexactFloat64()
}
