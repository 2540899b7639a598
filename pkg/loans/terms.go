package loans

import (
	"time"

	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/iwvelando/loan-schedule/pkg/money"
	"github.com/shopspring/decimal"
)

// Grace configures the number of leading periods excused from payments.
type Grace struct {
	// OnPrincipalPayment periods pay no principal.
	OnPrincipalPayment int
	// OnInterestPayment periods pay no interest; it is carried forward and
	// charged with the first period that pays interest.
	OnInterestPayment int
	// OnInterestCharged periods accrue no interest at all.
	OnInterestCharged int
}

// Terms are the loan application terms of one schedule run. The exported
// fields are configuration. The annual rate, the expected principal and the
// interest rounding overflow change while periods are generated, so a Terms
// value belongs to exactly one run at a time; use Clone to start another.
type Terms struct {
	Principal                       money.Money
	AnnualNominalInterestRate       decimal.Decimal
	AmortizationMethod              AmortizationMethod
	InterestCalculationPeriodMethod InterestCalculationPeriodMethod
	CompoundingMethod               CompoundingMethod
	DaysInYear                      DaysInYearType
	DaysInMonth                     DaysInMonthType
	RepaymentEvery                  int
	RepaymentFrequency              PeriodFrequencyType
	NumberOfRepayments              int
	// InstallmentAmountInMultiplesOf rounds installments to a multiple of this
	// many currency units. Zero disables rounding.
	InstallmentAmountInMultiplesOf int64
	Grace                          Grace
	MathContext                    mathutil.MathContext

	expectedPrincipal        money.Money
	interestRoundingOverflow money.Money
	fixedPrincipal           *money.Money
	fixedInstallment         *money.Money
	installmentOverride      *money.Money
	amountsStale             bool
}

// Currency is the currency of the principal.
func (t *Terms) Currency() money.Currency {
	return t.Principal.Currency()
}

// InstallmentMultiple returns the rounding multiple, if one is configured.
func (t *Terms) InstallmentMultiple() (int64, bool) {
	return t.InstallmentAmountInMultiplesOf, t.InstallmentAmountInMultiplesOf > 0
}

// Validate checks the configuration before a run.
func (t *Terms) Validate() error {
	if !t.Principal.IsGreaterThanZero() {
		return invalidTerms("principal", "must be positive, got %s", t.Principal)
	}
	if t.AnnualNominalInterestRate.IsNegative() {
		return invalidTerms("annualNominalInterestRate", "must not be negative, got %s", t.AnnualNominalInterestRate)
	}
	if _, ok := amortizationMethodNames[t.AmortizationMethod]; !ok {
		return invalidTerms("amortizationMethod", "unknown method %d", int(t.AmortizationMethod))
	}
	if _, ok := compoundingMethodNames[t.CompoundingMethod]; !ok {
		return invalidTerms("compoundingMethod", "unknown method %d", int(t.CompoundingMethod))
	}
	if _, ok := periodFrequencyNames[t.RepaymentFrequency]; !ok {
		return invalidTerms("repaymentFrequency", "unknown frequency %d", int(t.RepaymentFrequency))
	}
	if t.RepaymentEvery < 1 {
		return invalidTerms("repaymentEvery", "must be at least 1, got %d", t.RepaymentEvery)
	}
	if t.NumberOfRepayments < 1 {
		return invalidTerms("numberOfRepayments", "must be at least 1, got %d", t.NumberOfRepayments)
	}
	if t.InstallmentAmountInMultiplesOf < 0 {
		return invalidTerms("installmentAmountInMultiplesOf", "must not be negative, got %d", t.InstallmentAmountInMultiplesOf)
	}
	g := t.Grace
	if g.OnPrincipalPayment < 0 || g.OnInterestPayment < 0 || g.OnInterestCharged < 0 {
		return invalidTerms("grace", "grace periods must not be negative")
	}
	if g.OnPrincipalPayment >= t.NumberOfRepayments {
		return invalidTerms("grace.onPrincipalPayment", "%d grace periods leave no period to repay principal in", g.OnPrincipalPayment)
	}
	return nil
}

// Clone returns an independent copy with fresh run state.
func (t *Terms) Clone() *Terms {
	c := *t
	c.reset()
	return &c
}

func (t *Terms) reset() {
	if t.MathContext == (mathutil.MathContext{}) {
		t.MathContext = mathutil.DefaultMathContext()
	}
	t.expectedPrincipal = t.Principal
	t.interestRoundingOverflow = t.Principal.Zero()
	t.fixedPrincipal = nil
	t.fixedInstallment = nil
	t.installmentOverride = nil
	t.amountsStale = false
}

// ExpectedPrincipal is the principal plus every principal variation applied so
// far.
func (t *Terms) ExpectedPrincipal() money.Money {
	return t.expectedPrincipal
}

// ApplyPrincipalVariation adds delta to the expected principal. Cached
// installment amounts are recomputed once the current period is settled.
func (t *Terms) ApplyPrincipalVariation(delta money.Money) {
	if delta.IsZero() {
		return
	}
	t.expectedPrincipal = t.expectedPrincipal.Plus(delta)
	t.amountsStale = true
}

// UpdateAnnualNominalInterestRate switches the active rate for all later
// interest computation.
func (t *Terms) UpdateAnnualNominalInterestRate(rate decimal.Decimal) {
	if rate.Equal(t.AnnualNominalInterestRate) {
		return
	}
	t.AnnualNominalInterestRate = rate
	t.amountsStale = true
}

// SetInstallmentOverride fixes the equal installment from the current period on.
func (t *Terms) SetInstallmentOverride(amount money.Money) {
	t.installmentOverride = &amount
}

// InterestRoundingOverflow is the interest shaved off by multiples-of rounding
// and not yet charged.
func (t *Terms) InterestRoundingOverflow() money.Money {
	return t.interestRoundingOverflow
}

// SetInterestRoundingOverflow replaces the carried overflow.
func (t *Terms) SetInterestRoundingOverflow(overflow money.Money) {
	t.interestRoundingOverflow = overflow
}

// settlePeriod drops cached installment amounts after a period in which the
// principal or the rate changed.
func (t *Terms) settlePeriod() {
	if !t.amountsStale {
		return
	}
	t.fixedPrincipal = nil
	t.fixedInstallment = nil
	t.amountsStale = false
}

// AdjustPrincipalIfLastRepaymentPeriod makes the principal of the last period
// extinguish the expected principal exactly, and trims any earlier principal
// that would overshoot it.
func (t *Terms) AdjustPrincipalIfLastRepaymentPeriod(principal, cumulativeToDate money.Money, periodNumber int) money.Money {
	remaining := t.expectedPrincipal.Minus(cumulativeToDate)
	if remaining.IsLessThanZero() || t.isLastPeriod(periodNumber) {
		return principal.Plus(remaining)
	}
	return principal
}

// AdjustInterestIfLastRepaymentPeriod charges the unrounded interest, carry
// included, in the last period so no rounding residue outlives the loan.
func (t *Terms) AdjustInterestIfLastRepaymentPeriod(rounded, unrounded money.Money, periodNumber int) money.Money {
	if t.isLastPeriod(periodNumber) {
		return unrounded
	}
	return rounded
}

func (t *Terms) isLastPeriod(periodNumber int) bool {
	return periodNumber >= t.NumberOfRepayments
}

func (t *Terms) isPrincipalGracePeriod(periodNumber int) bool {
	return periodNumber <= t.Grace.OnPrincipalPayment
}

func (t *Terms) isInterestFreePeriod(periodNumber int) bool {
	return periodNumber <= t.Grace.OnInterestCharged
}

func (t *Terms) isInterestPaymentGracePeriod(periodNumber int) bool {
	return periodNumber <= t.Grace.OnInterestPayment
}

func (t *Terms) firstInterestChargingPeriod() int {
	return max(t.Grace.OnInterestCharged, t.Grace.OnInterestPayment) + 1
}

// remainingPeriods counts the periods over which principal is still to be
// repaid, including periodNumber.
func (t *Terms) remainingPeriods(periodNumber int) int {
	return t.NumberOfRepayments - max(periodNumber-1, t.Grace.OnPrincipalPayment)
}

// nextRepaymentDate steps date forward by one repayment period.
func (t *Terms) nextRepaymentDate(date time.Time) time.Time {
	return AddRepaymentPeriods(date, t.RepaymentEvery, t.RepaymentFrequency, 1)
}

// previousRepaymentDate steps date back by one repayment period.
func (t *Terms) previousRepaymentDate(date time.Time) time.Time {
	return AddRepaymentPeriods(date, t.RepaymentEvery, t.RepaymentFrequency, -1)
}

func sameDay(a, b time.Time) bool {
	return datetime.Truncate(a).Equal(datetime.Truncate(b))
}
