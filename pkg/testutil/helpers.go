// Package testutil provides common utility functions for testing.
package testutil

import (
	"time"

	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/money"
	"github.com/shopspring/decimal"
)

// FindByName finds an item by name in the results slice.
// Returns a pointer to the item if found, nil otherwise.
func FindByName[T any](results []T, name string, nameOf func(T) string) *T {
	for i := range results {
		if nameOf(results[i]) == name {
			return &results[i]
		}
	}
	return nil
}

// Date parses a YYYY-MM-DD date and panics on error.
func Date(value string) time.Time {
	return datetime.MustParseTime(datetime.DateLayout, value)
}

// DatePtr is Date returning a pointer, for optional date fields.
func DatePtr(value string) *time.Time {
	d := Date(value)
	return &d
}

// Dec parses a decimal and panics on error.
func Dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// USD returns a US dollar amount.
func USD(value string) money.Money {
	return money.Of(money.USD, Dec(value))
}

// WithinTolerance reports whether a and b differ by at most tolerance.
func WithinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
