// Package money provides a currency-tagged, arbitrary-precision monetary amount.
// Amounts are brought to the currency's decimal places only when a Money is
// created or scaled; addition and subtraction are exact.
package money

import (
	"fmt"
	"regexp"

	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency is an ISO 4217 currency code with the number of decimal places its
// amounts carry and the rounding mode used to reach them.
type Currency struct {
	code   string
	digits int32
	mode   mathutil.RoundingMode
}

// NewCurrency creates a Currency after validating the code is exactly 3 uppercase
// letters and the number of digits is between 0 and 6.
func NewCurrency(code string, digits int32) (Currency, error) {
	if !currencyCodeRe.MatchString(code) {
		return Currency{}, fmt.Errorf("invalid currency code %q: must be exactly 3 uppercase letters", code)
	}
	if digits < 0 || digits > 6 {
		return Currency{}, fmt.Errorf("invalid decimal places %d for currency %s", digits, code)
	}
	return Currency{code: code, digits: digits, mode: mathutil.HalfEven}, nil
}

// MustCurrency creates a Currency and panics on error. Intended for package-level
// variable initialization and tests only.
func MustCurrency(code string, digits int32) Currency {
	c, err := NewCurrency(code, digits)
	if err != nil {
		panic(err)
	}
	return c
}

// WithRounding returns a copy of c that rounds amounts with mode.
func (c Currency) WithRounding(mode mathutil.RoundingMode) Currency {
	c.mode = mode
	return c
}

// Code returns the ISO 4217 currency code.
func (c Currency) Code() string {
	return c.code
}

// Digits returns the number of decimal places.
func (c Currency) Digits() int32 {
	return c.digits
}

// RoundingMode returns the rounding mode applied when amounts are created.
func (c Currency) RoundingMode() mathutil.RoundingMode {
	return c.mode
}

// String returns the currency code.
func (c Currency) String() string {
	return c.code
}

// Common currencies.
var (
	USD = MustCurrency("USD", 2)
	EUR = MustCurrency("EUR", 2)
	KES = MustCurrency("KES", 2)
	JPY = MustCurrency("JPY", 0)
)

// Money represents an immutable monetary amount with currency.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// Of creates a Money value, rounding amount to the currency's decimal places.
func Of(currency Currency, amount decimal.Decimal) Money {
	return Money{amount: mathutil.Round(amount, currency.digits, currency.mode), currency: currency}
}

// NewFromString parses an amount string into a Money value of currency.
func NewFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return Of(currency, d), nil
}

// Zero returns a Money value of zero in the given currency.
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Zero returns a zero amount in m's currency.
func (m Money) Zero() Money {
	return Zero(m.currency)
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency.
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsGreaterThanZero returns true if the amount is strictly greater than zero.
func (m Money) IsGreaterThanZero() bool {
	return m.amount.IsPositive()
}

// IsLessThanZero returns true if the amount is strictly less than zero.
func (m Money) IsLessThanZero() bool {
	return m.amount.IsNegative()
}

// IsGreaterThan compares amounts of the same currency.
func (m Money) IsGreaterThan(other Money) bool {
	m.mustMatch(other)
	return m.amount.GreaterThan(other.amount)
}

// IsLessThan compares amounts of the same currency.
func (m Money) IsLessThan(other Money) bool {
	m.mustMatch(other)
	return m.amount.LessThan(other.amount)
}

// Add returns the sum of m and other. Returns an error if the currencies do not match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: cannot add %s to %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns the difference of m minus other. Returns an error if the currencies do not match.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: cannot subtract %s from %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Plus is Add for callers that only ever combine amounts of one currency. It
// panics on a currency mismatch.
func (m Money) Plus(other Money) Money {
	sum, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return sum
}

// Minus is Subtract for callers that only ever combine amounts of one currency.
// It panics on a currency mismatch.
func (m Money) Minus(other Money) Money {
	difference, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return difference
}

// MultipliedBy returns m times factor rounded to the currency.
func (m Money) MultipliedBy(factor decimal.Decimal) Money {
	return Of(m.currency, m.amount.Mul(factor))
}

// DividedBy returns m divided by divisor rounded to the currency. Division by
// zero returns zero.
func (m Money) DividedBy(divisor decimal.Decimal) Money {
	if divisor.IsZero() {
		return m.Zero()
	}
	return Of(m.currency, m.amount.DivRound(divisor, m.currency.digits+4))
}

// Negate returns m with the sign of the amount flipped.
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Abs returns m with the absolute value of the amount.
func (m Money) Abs() Money {
	if m.IsLessThanZero() {
		return m.Negate()
	}
	return m
}

// Equal returns true if both the amount and currency of m and other are equal.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String formats the Money value as "<amount> <currency>", for example "100.00 USD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(m.currency.digits), m.currency.Code())
}

func (m Money) mustMatch(other Money) {
	if m.currency != other.currency {
		panic(fmt.Sprintf("currency mismatch: %s and %s", m.currency, other.currency))
	}
}
