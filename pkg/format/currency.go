// Package format renders monetary amounts for display.
package format

import (
	"strings"

	"github.com/iwvelando/loan-schedule/pkg/money"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

var printer = message.NewPrinter(language.English)

// Currency returns the amount with its currency symbol (or ISO code) and
// thousands separators, e.g. "-$1,234.56" or "KES 1,234.56".
func Currency(m money.Money) string {
	prefix, ok := symbols[m.Currency().Code()]
	if !ok {
		prefix = m.Currency().Code() + " "
	}
	formatted := formatPositive(m.Abs())
	if m.IsLessThanZero() {
		return "-" + prefix + formatted
	}
	return prefix + formatted
}

// NumericCurrency returns the amount without a currency symbol but with
// separators, e.g. "-1,234.56".
func NumericCurrency(m money.Money) string {
	sign := ""
	if m.IsLessThanZero() {
		sign = "-"
	}
	return sign + formatPositive(m.Abs())
}

func formatPositive(m money.Money) string {
	digits := m.Currency().Digits()
	fixed := m.Amount().StringFixed(digits)
	_, decPart, _ := strings.Cut(fixed, ".")

	grouped := printer.Sprintf("%d", m.Amount().Truncate(0).IntPart())
	if digits == 0 {
		return grouped
	}
	return grouped + "." + decPart
}
