package loans

import (
	"time"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/iwvelando/loan-schedule/pkg/money"
	"github.com/shopspring/decimal"
)

// PrincipalInterest is the outcome of an interest or period computation.
type PrincipalInterest struct {
	Principal money.Money
	Interest  money.Money
	// InterestPaymentDueToGrace is the interest deferred by interest-payment
	// grace. It is passed unchanged into the next computation.
	InterestPaymentDueToGrace money.Money
}

// CalculateTotalInterestForPeriod computes the interest on balance over
// [from, to) at the active rate and applies interest grace for periodNumber.
// It may be called once per sub-interval of a period; graceCarry is the carry
// returned by the previous call.
func (t *Terms) CalculateTotalInterestForPeriod(calc PeriodsInOneYearCalculator, graceFraction float64,
	periodNumber int, mc mathutil.MathContext, graceCarry, balance money.Money, from, to time.Time) PrincipalInterest {

	zero := balance.Zero()
	result := PrincipalInterest{Principal: zero, Interest: zero, InterestPaymentDueToGrace: graceCarry}

	raw := money.Of(t.Currency(), t.rawInterest(calc, mc, balance, from, to))
	switch {
	case t.isInterestFreePeriod(periodNumber):
		return result
	case t.isInterestPaymentGracePeriod(periodNumber):
		result.InterestPaymentDueToGrace = graceCarry.Plus(raw)
		return result
	}

	afterGrace := raw
	if periodNumber == t.firstInterestChargingPeriod() && graceFraction > 0 {
		if graceFraction >= 1 {
			afterGrace = zero
		} else {
			remaining := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(graceFraction))
			afterGrace = raw.MultipliedBy(remaining)
		}
	}
	if afterGrace.IsGreaterThanZero() {
		result.Interest = graceCarry.Plus(afterGrace)
		result.InterestPaymentDueToGrace = zero
	}
	return result
}

// rawInterest is the unrounded interest on balance over [from, to).
func (t *Terms) rawInterest(calc PeriodsInOneYearCalculator, mc mathutil.MathContext, balance money.Money, from, to time.Time) decimal.Decimal {
	if !balance.IsGreaterThanZero() || !to.After(from) {
		return decimal.Zero
	}
	rate := mc.Percent(t.AnnualNominalInterestRate)
	if t.InterestCalculationPeriodMethod == Daily {
		return t.dailyInterest(mc, balance.Amount(), rate, from, to)
	}
	return t.periodicInterest(calc, mc, balance.Amount(), rate, from, to)
}

// dailyInterest accrues balance * rate * days / daysInYear. Under the actual
// convention the interval is split at year ends so each piece is divided by
// its own year length.
func (t *Terms) dailyInterest(mc mathutil.MathContext, balance, rate decimal.Decimal, from, to time.Time) decimal.Decimal {
	total := decimal.Zero
	start := datetime.Truncate(from)
	end := datetime.Truncate(to)
	for start.Before(end) {
		pieceEnd := end
		if t.DaysInYear == DaysInYearActual {
			nextYear := datetime.Date(start.Year()+1, time.January, 1)
			if nextYear.Before(end) {
				pieceEnd = nextYear
			}
		}
		days := decimal.NewFromInt(int64(datetime.DaysBetween(start, pieceEnd)))
		yearDays := decimal.NewFromInt(int64(t.DaysInYear.Days(datetime.DaysInYear(start.Year()))))
		total = total.Add(mc.Div(balance.Mul(rate).Mul(days), yearDays))
		start = pieceEnd
	}
	return total
}

// periodicInterest charges the periodic rate for a whole repayment period and
// pro-rates it by days for anything shorter or longer.
func (t *Terms) periodicInterest(calc PeriodsInOneYearCalculator, mc mathutil.MathContext, balance, rate decimal.Decimal, from, to time.Time) decimal.Decimal {
	periodsPerYear := calc.PeriodsInOneYear(t.RepaymentFrequency, t.DaysInYear)
	periodicRate := mc.Div(rate.Mul(decimal.NewFromInt(int64(t.RepaymentEvery))), decimal.NewFromInt(int64(periodsPerYear)))
	full := balance.Mul(periodicRate)

	if sameDay(t.nextRepaymentDate(from), to) || sameDay(t.previousRepaymentDate(to), from) {
		return mc.Apply(full)
	}
	days := decimal.NewFromInt(int64(datetime.DaysBetween(from, to)))
	periodDays := decimal.NewFromInt(int64(t.repaymentPeriodDays(from)))
	return mc.Div(full.Mul(days), periodDays)
}

// repaymentPeriodDays is the length of one repayment period starting at from.
func (t *Terms) repaymentPeriodDays(from time.Time) int {
	every := t.RepaymentEvery
	switch t.RepaymentFrequency {
	case Days:
		return every
	case Weeks:
		return every * constants.DaysPerWeek
	case Months:
		if t.DaysInMonth == DaysInMonth30 {
			return every * constants.DaysInStandardMonth
		}
	case Years:
		if days := t.DaysInYear.Days(0); days > 0 {
			return every * days
		}
	}
	return datetime.DaysBetween(from, t.nextRepaymentDate(from))
}
