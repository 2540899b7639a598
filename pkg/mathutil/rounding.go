// Package mathutil provides decimal rounding policies shared by the money and
// amortization packages.
package mathutil

import (
	"fmt"
	"strings"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/shopspring/decimal"
)

// RoundingMode selects how a decimal is brought to a fixed number of places.
type RoundingMode int

const (
	// HalfEven rounds to the nearest neighbour, ties to the even neighbour.
	HalfEven RoundingMode = iota
	// HalfUp rounds to the nearest neighbour, ties away from zero.
	HalfUp
	// HalfDown rounds to the nearest neighbour, ties toward zero.
	HalfDown
	// Up rounds away from zero.
	Up
	// Down rounds toward zero.
	Down
	// Ceiling rounds toward positive infinity.
	Ceiling
	// Floor rounds toward negative infinity.
	Floor
)

var roundingModeNames = map[RoundingMode]string{
	HalfEven: "HALF_EVEN",
	HalfUp:   "HALF_UP",
	HalfDown: "HALF_DOWN",
	Up:       "UP",
	Down:     "DOWN",
	Ceiling:  "CEILING",
	Floor:    "FLOOR",
}

// String returns the upper-case name of the mode.
func (m RoundingMode) String() string {
	if name, ok := roundingModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("RoundingMode(%d)", int(m))
}

// ParseRoundingMode parses a rounding mode name. An empty string yields HalfEven.
func ParseRoundingMode(value string) (RoundingMode, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	if normalized == "" {
		return HalfEven, nil
	}
	for mode, name := range roundingModeNames {
		if name == normalized {
			return mode, nil
		}
	}
	return HalfEven, fmt.Errorf("unknown rounding mode %q", value)
}

// MathContext carries the number of decimal places and the rounding mode used for
// intermediate (non-monetary) computations such as periodic interest rates.
type MathContext struct {
	Places int32
	Mode   RoundingMode
}

// DefaultMathContext returns the context used when none is configured.
func DefaultMathContext() MathContext {
	return MathContext{Places: constants.DefaultRatePrecision, Mode: HalfEven}
}

// Round brings d to the given number of decimal places using mode.
func Round(d decimal.Decimal, places int32, mode RoundingMode) decimal.Decimal {
	switch mode {
	case HalfUp:
		return d.Round(places)
	case HalfDown:
		truncated := d.RoundDown(places)
		half := decimal.New(5, -(places + 1))
		if d.Sub(truncated).Abs().GreaterThan(half) {
			return d.RoundUp(places)
		}
		return truncated
	case Up:
		return d.RoundUp(places)
	case Down:
		return d.RoundDown(places)
	case Ceiling:
		return d.RoundCeil(places)
	case Floor:
		return d.RoundFloor(places)
	default:
		return d.RoundBank(places)
	}
}

// Apply rounds d with the context's places and mode.
func (mc MathContext) Apply(d decimal.Decimal) decimal.Decimal {
	return Round(d, mc.Places, mc.Mode)
}

// Div divides a by b and rounds the quotient with the context. Division by zero
// returns zero.
func (mc MathContext) Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return mc.Apply(a.DivRound(b, mc.Places+2))
}

// RoundToMultiplesOf rounds value to the nearest multiple of multiple. A value
// exactly halfway between two multiples goes to the higher one. A non-positive
// multiple leaves value unchanged.
func RoundToMultiplesOf(value decimal.Decimal, multiple int64) decimal.Decimal {
	if multiple <= 0 {
		return value
	}
	unit := decimal.NewFromInt(multiple)
	quotient := value.DivRound(unit, constants.DefaultRatePrecision)
	lower := quotient.Floor().Mul(unit)
	upper := quotient.Ceil().Mul(unit)
	if upper.Sub(value).GreaterThan(value.Sub(lower)) {
		return lower
	}
	return upper
}

// FloorToMultiplesOf rounds value down to a multiple of multiple. A
// non-positive multiple leaves value unchanged.
func FloorToMultiplesOf(value decimal.Decimal, multiple int64) decimal.Decimal {
	if multiple <= 0 {
		return value
	}
	unit := decimal.NewFromInt(multiple)
	return value.DivRound(unit, constants.DefaultRatePrecision).Floor().Mul(unit)
}

// Percent converts a percentage (12.5) into a ratio (0.125) within mc.
func (mc MathContext) Percent(value decimal.Decimal) decimal.Decimal {
	return mc.Div(value, decimal.NewFromInt(constants.PercentageMultiplier))
}
