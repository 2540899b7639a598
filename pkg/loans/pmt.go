package loans

import (
	"math"

	"github.com/shopspring/decimal"
)

// pmt returns the level payment that repays presentValue over periods at
// periodicRate. This is the only place the engine leaves decimal arithmetic:
// the power term is evaluated in float64 and the result converted straight
// back, to be rounded by the caller.
func pmt(periodicRate, presentValue decimal.Decimal, periods int) decimal.Decimal {
	if periods <= 0 {
		return presentValue
	}
	if periodicRate.IsZero() {
		return presentValue.Div(decimal.NewFromInt(int64(periods)))
	}
	r := periodicRate.InexactFloat64()
	factor := decimal.NewFromFloat(math.Pow(1+r, float64(periods)))
	// pv * r * (1+r)^n / ((1+r)^n - 1)
	return presentValue.Mul(periodicRate).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))
}
