package loans

import (
	"fmt"
	"strings"
)

// AmortizationMethod selects how each installment is split between principal and
// interest.
type AmortizationMethod int

const (
	// EqualInstallment keeps the total installment fixed (pmt) and derives the
	// principal as the installment minus the interest due.
	EqualInstallment AmortizationMethod = iota
	// EqualPrincipal keeps the principal component fixed; the total installment
	// shrinks with the outstanding balance.
	EqualPrincipal
)

// CompoundingMethod is the interest-recalculation compounding policy.
type CompoundingMethod int

const (
	// CompoundingNone never folds unpaid amounts into the balance.
	CompoundingNone CompoundingMethod = iota
	// CompoundingInterest folds accrued interest into the balance on compounding dates.
	CompoundingInterest
	// CompoundingFee folds fee charges into the balance on compounding dates.
	CompoundingFee
	// CompoundingInterestAndFee folds both.
	CompoundingInterestAndFee
)

// IsInterestCompoundingEnabled reports whether accrued interest is compounded.
func (c CompoundingMethod) IsInterestCompoundingEnabled() bool {
	return c == CompoundingInterest || c == CompoundingInterestAndFee
}

// IsFeeCompoundingEnabled reports whether fee charges are compounded.
func (c CompoundingMethod) IsFeeCompoundingEnabled() bool {
	return c == CompoundingFee || c == CompoundingInterestAndFee
}

// PeriodFrequencyType is the unit of the repayment frequency.
type PeriodFrequencyType int

const (
	Days PeriodFrequencyType = iota
	Weeks
	Months
	Years
)

// InterestCalculationPeriodMethod selects how interest accrues inside a period.
type InterestCalculationPeriodMethod int

const (
	// SameAsRepaymentPeriod applies the periodic rate of one repayment period,
	// pro-rated by days for partial periods.
	SameAsRepaymentPeriod InterestCalculationPeriodMethod = iota
	// Daily accrues balance * rate * days / days-in-year.
	Daily
)

// DaysInYearType is the day-count denominator for daily interest.
type DaysInYearType int

const (
	DaysInYearActual DaysInYearType = iota
	DaysInYear360
	DaysInYear364
	DaysInYear365
)

// DaysInMonthType is the month length used to pro-rate monthly periods.
type DaysInMonthType int

const (
	DaysInMonthActual DaysInMonthType = iota
	DaysInMonth30
)

var amortizationMethodNames = map[AmortizationMethod]string{
	EqualInstallment: "equal_installment",
	EqualPrincipal:   "equal_principal",
}

var compoundingMethodNames = map[CompoundingMethod]string{
	CompoundingNone:           "none",
	CompoundingInterest:       "interest",
	CompoundingFee:            "fee",
	CompoundingInterestAndFee: "interest_and_fee",
}

var periodFrequencyNames = map[PeriodFrequencyType]string{
	Days:   "days",
	Weeks:  "weeks",
	Months: "months",
	Years:  "years",
}

var interestPeriodMethodNames = map[InterestCalculationPeriodMethod]string{
	SameAsRepaymentPeriod: "same_as_repayment_period",
	Daily:                 "daily",
}

var daysInYearNames = map[DaysInYearType]string{
	DaysInYearActual: "actual",
	DaysInYear360:    "360",
	DaysInYear364:    "364",
	DaysInYear365:    "365",
}

var daysInMonthNames = map[DaysInMonthType]string{
	DaysInMonthActual: "actual",
	DaysInMonth30:     "30",
}

func (m AmortizationMethod) String() string              { return enumName(amortizationMethodNames, m) }
func (c CompoundingMethod) String() string               { return enumName(compoundingMethodNames, c) }
func (f PeriodFrequencyType) String() string             { return enumName(periodFrequencyNames, f) }
func (m InterestCalculationPeriodMethod) String() string { return enumName(interestPeriodMethodNames, m) }
func (d DaysInYearType) String() string                  { return enumName(daysInYearNames, d) }
func (d DaysInMonthType) String() string                 { return enumName(daysInMonthNames, d) }

// ParseAmortizationMethod parses "equal_installment" or "equal_principal".
func ParseAmortizationMethod(value string) (AmortizationMethod, error) {
	return parseEnum(amortizationMethodNames, value, EqualInstallment, "amortization method")
}

// ParseCompoundingMethod parses "none", "interest", "fee" or "interest_and_fee".
func ParseCompoundingMethod(value string) (CompoundingMethod, error) {
	return parseEnum(compoundingMethodNames, value, CompoundingNone, "compounding method")
}

// ParsePeriodFrequencyType parses "days", "weeks", "months" or "years".
func ParsePeriodFrequencyType(value string) (PeriodFrequencyType, error) {
	return parseEnum(periodFrequencyNames, value, Months, "repayment frequency")
}

// ParseInterestCalculationPeriodMethod parses "same_as_repayment_period" or "daily".
func ParseInterestCalculationPeriodMethod(value string) (InterestCalculationPeriodMethod, error) {
	return parseEnum(interestPeriodMethodNames, value, SameAsRepaymentPeriod, "interest calculation period method")
}

// ParseDaysInYearType parses "actual", "360", "364" or "365".
func ParseDaysInYearType(value string) (DaysInYearType, error) {
	return parseEnum(daysInYearNames, value, DaysInYearActual, "days in year")
}

// ParseDaysInMonthType parses "actual" or "30".
func ParseDaysInMonthType(value string) (DaysInMonthType, error) {
	return parseEnum(daysInMonthNames, value, DaysInMonthActual, "days in month")
}

// enumName formats unknown values through int so %v cannot re-enter String.
func enumName[T ~int](names map[T]string, v T) string {
	if name, ok := names[v]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(v))
}

// parseEnum matches value case-insensitively, accepting "-" and " " for "_". An
// empty value yields def.
func parseEnum[T comparable](names map[T]string, value string, def T, what string) (T, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	if normalized == "" {
		return def, nil
	}
	for v, name := range names {
		if name == normalized {
			return v, nil
		}
	}
	return def, fmt.Errorf("unknown %s %q", what, value)
}
