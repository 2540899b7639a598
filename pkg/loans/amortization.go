package loans

import (
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/iwvelando/loan-schedule/pkg/money"
	"github.com/shopspring/decimal"
)

// principalStrategy derives the principal component of one period.
type principalStrategy func(t *Terms, calc PeriodsInOneYearCalculator, outstanding money.Money,
	periodNumber int, mc mathutil.MathContext, interestForPeriod money.Money) money.Money

var principalStrategies = map[AmortizationMethod]principalStrategy{
	EqualPrincipal:   equalPrincipalForPeriod,
	EqualInstallment: equalInstallmentPrincipalForPeriod,
}

// CalculateTotalPrincipalForPeriod returns the principal due in periodNumber
// under the configured amortization method.
func (t *Terms) CalculateTotalPrincipalForPeriod(calc PeriodsInOneYearCalculator, outstanding money.Money,
	periodNumber int, mc mathutil.MathContext, interestForPeriod money.Money) money.Money {

	strategy, ok := principalStrategies[t.AmortizationMethod]
	if !ok {
		return outstanding.Zero()
	}
	return strategy(t, calc, outstanding, periodNumber, mc, interestForPeriod)
}

func equalPrincipalForPeriod(t *Terms, _ PeriodsInOneYearCalculator, outstanding money.Money,
	periodNumber int, _ mathutil.MathContext, _ money.Money) money.Money {

	if t.isPrincipalGracePeriod(periodNumber) {
		return outstanding.Zero()
	}
	if t.fixedPrincipal == nil {
		fixed := outstanding.DividedBy(decimal.NewFromInt(int64(t.remainingPeriods(periodNumber))))
		t.fixedPrincipal = &fixed
	}
	return *t.fixedPrincipal
}

func equalInstallmentPrincipalForPeriod(t *Terms, calc PeriodsInOneYearCalculator, outstanding money.Money,
	periodNumber int, mc mathutil.MathContext, interestForPeriod money.Money) money.Money {

	if t.isPrincipalGracePeriod(periodNumber) {
		return outstanding.Zero()
	}
	return t.EqualInstallment(calc, outstanding, periodNumber, mc).Minus(interestForPeriod)
}

// EqualInstallment is the level installment for periodNumber: an installment
// override when one is in force, otherwise the cached pmt amount, rounded to
// the installment multiple when configured.
func (t *Terms) EqualInstallment(calc PeriodsInOneYearCalculator, outstanding money.Money,
	periodNumber int, mc mathutil.MathContext) money.Money {

	if t.installmentOverride != nil {
		return *t.installmentOverride
	}
	if t.fixedInstallment == nil {
		rate := mc.Percent(t.AnnualNominalInterestRate)
		periodsPerYear := calc.PeriodsInOneYear(t.RepaymentFrequency, t.DaysInYear)
		periodicRate := mc.Div(rate.Mul(decimal.NewFromInt(int64(t.RepaymentEvery))), decimal.NewFromInt(int64(periodsPerYear)))
		installment := money.Of(t.Currency(), pmt(periodicRate, outstanding.Amount(), t.remainingPeriods(periodNumber)))
		if multiple, ok := t.InstallmentMultiple(); ok {
			installment = money.Of(t.Currency(), mathutil.RoundToMultiplesOf(installment.Amount(), multiple))
		}
		t.fixedInstallment = &installment
	}
	return *t.fixedInstallment
}
