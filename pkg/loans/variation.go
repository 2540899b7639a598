package loans

import (
	"fmt"
	"sort"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/money"
	"github.com/shopspring/decimal"
)

// TermVariationType identifies what a term variation changes.
type TermVariationType int

const (
	// PrincipalVariation adds Value to the outstanding principal on its date. A
	// positive value is a further disbursement, a negative one a prepayment.
	PrincipalVariation TermVariationType = iota
	// InterestRateVariation switches the nominal annual rate to Value (percent)
	// from its date on.
	InterestRateVariation
	// DueDateVariation moves the installment due on ApplicableFrom to DateValue.
	DueDateVariation
	// EMIAmountVariation fixes the equal-installment amount to Value from the
	// period containing its date.
	EMIAmountVariation
)

var termVariationNames = map[TermVariationType]string{
	PrincipalVariation:    "principal",
	InterestRateVariation: "interest_rate",
	DueDateVariation:      "due_date",
	EMIAmountVariation:    "emi_amount",
}

func (t TermVariationType) String() string { return enumName(termVariationNames, t) }

// ParseTermVariationType parses "principal", "interest_rate", "due_date" or "emi_amount".
func ParseTermVariationType(value string) (TermVariationType, error) {
	if value == "" {
		return PrincipalVariation, invalidVariation("type", "missing variation type")
	}
	return parseEnum(termVariationNames, value, PrincipalVariation, "term variation type")
}

// TermVariation is one scheduled exception to the loan terms.
type TermVariation struct {
	Type TermVariationType
	// ApplicableFrom is the effective date; nil means the start of whichever
	// period the variation is evaluated against.
	ApplicableFrom *time.Time
	Value          decimal.Decimal
	// DateValue carries the new due date of a DueDateVariation.
	DateValue *time.Time
}

// IsApplicable holds iff the effective date lies in [periodStart, periodEnd]. A
// variation without an effective date applies to every period.
func (v TermVariation) IsApplicable(periodStart, periodEnd time.Time) bool {
	if v.ApplicableFrom == nil {
		return true
	}
	return datetime.Within(datetime.Truncate(*v.ApplicableFrom), datetime.Truncate(periodStart), datetime.Truncate(periodEnd))
}

// EffectiveDate returns the effective date, defaulting to periodStart.
func (v TermVariation) EffectiveDate(periodStart time.Time) time.Time {
	if v.ApplicableFrom == nil {
		return datetime.Truncate(periodStart)
	}
	return datetime.Truncate(*v.ApplicableFrom)
}

// ValidateVariations rejects malformed variations before scheduling. Principal
// variations are replayed in date order from principal (undated ones first) and
// must never take the balance below zero.
func ValidateVariations(principal money.Money, variations []TermVariation) error {
	rateDates := make(map[time.Time]bool)
	var principalChanges []TermVariation

	for i, v := range variations {
		switch v.Type {
		case PrincipalVariation:
			principalChanges = append(principalChanges, v)
		case InterestRateVariation:
			if v.Value.IsNegative() {
				return invalidVariation(variationField(i), "interest rate %s is negative", v.Value)
			}
			key := time.Time{}
			if v.ApplicableFrom != nil {
				key = datetime.Truncate(*v.ApplicableFrom)
			}
			if rateDates[key] {
				return invalidVariation(variationField(i), "more than one interest rate variation effective on %s", datetime.Format(key))
			}
			rateDates[key] = true
		case DueDateVariation:
			if v.ApplicableFrom == nil || v.DateValue == nil {
				return invalidVariation(variationField(i), "due date variation needs both the original and the new due date")
			}
		case EMIAmountVariation:
			if !v.Value.IsPositive() {
				return invalidVariation(variationField(i), "installment amount %s must be positive", v.Value)
			}
		default:
			return invalidVariation(variationField(i), "unknown variation type %d", int(v.Type))
		}
	}

	sort.SliceStable(principalChanges, func(i, j int) bool {
		a, b := principalChanges[i].ApplicableFrom, principalChanges[j].ApplicableFrom
		if a == nil || b == nil {
			return a == nil && b != nil
		}
		return a.Before(*b)
	})
	balance := principal.Amount()
	for _, v := range principalChanges {
		balance = balance.Add(v.Value)
		if balance.IsNegative() {
			when := "loan start"
			if v.ApplicableFrom != nil {
				when = datetime.Format(*v.ApplicableFrom)
			}
			return &ValidationError{
				Field:  "variations",
				Reason: fmt.Sprintf("principal balance reaches %s on %s", balance, when),
				Err:    ErrNegativeBalance,
			}
		}
	}
	return nil
}

func variationField(i int) string {
	return fmt.Sprintf("variations[%d]", i)
}
