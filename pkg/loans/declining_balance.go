package loans

import (
	"errors"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/iwvelando/loan-schedule/pkg/money"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PeriodInput is everything the generator needs to compute one installment.
type PeriodInput struct {
	Calculator    PeriodsInOneYearCalculator
	GraceFraction float64
	// CumulativePrincipal is the principal of all earlier periods.
	CumulativePrincipal money.Money
	// CumulativeInterest is the interest of all earlier periods.
	CumulativeInterest money.Money
	GraceCarry         money.Money
	// OutstandingBalance is the balance at the start of the period.
	OutstandingBalance money.Money
	Terms              *Terms
	PeriodNumber       int
	MathContext        mathutil.MathContext
	// PrincipalVariation holds the principal deltas effective inside the
	// period. Rate variations add zero-delta breakpoints to it.
	PrincipalVariation *DateMap
	// CompoundingMap holds the fees to compound on each compounding date. On
	// return every triggered entry holds the interest plus fee compounded there.
	CompoundingMap *DateMap
	PeriodStart    time.Time
	PeriodEnd      time.Time
	TermVariations []TermVariation
}

// DecliningBalanceGenerator computes installments whose interest accrues on the
// balance outstanding at each point inside the period.
type DecliningBalanceGenerator struct {
	logger *zap.Logger
}

// NewDecliningBalanceGenerator creates a generator.
func NewDecliningBalanceGenerator(logger *zap.Logger) *DecliningBalanceGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DecliningBalanceGenerator{logger: logger}
}

// CalculatePrincipalInterestComponentsForPeriod splits one period at every
// principal and rate breakpoint, accrues interest on each sub-interval, then
// derives the principal under the amortization method.
func (g *DecliningBalanceGenerator) CalculatePrincipalInterestComponentsForPeriod(in PeriodInput) (PrincipalInterest, error) {
	terms := in.Terms
	if terms == nil {
		return PrincipalInterest{}, errors.New("period input has no loan terms")
	}
	if in.PeriodEnd.Before(in.PeriodStart) {
		return PrincipalInterest{}, invalidTerms("period", "period %d ends %s before it starts %s",
			in.PeriodNumber, datetime.Format(in.PeriodEnd), datetime.Format(in.PeriodStart))
	}
	calc := in.Calculator
	if calc == nil {
		calc = DefaultPeriodsCalculator{}
	}
	principalVariation := in.PrincipalVariation
	if principalVariation == nil {
		principalVariation = NewDateMap()
	}
	compoundingMap := in.CompoundingMap
	if compoundingMap == nil {
		compoundingMap = NewDateMap()
	}

	zero := in.OutstandingBalance.Zero()
	periodStart := datetime.Truncate(in.PeriodStart)
	periodEnd := datetime.Truncate(in.PeriodEnd)
	interestStart := periodStart
	interestForInstallment := zero
	compoundedInterest := zero
	balance := in.OutstandingBalance
	graceCarry := in.GraceCarry

	rates := make(map[time.Time]decimal.Decimal)
	for _, v := range in.TermVariations {
		if v.Type != InterestRateVariation || !v.IsApplicable(periodStart, periodEnd) {
			continue
		}
		from := v.EffectiveDate(periodStart)
		rates[from] = v.Value
		if !principalVariation.Contains(from) {
			principalVariation.Put(from, zero)
		}
	}

	for _, date := range principalVariation.Keys() {
		if date.Before(periodStart) || date.After(periodEnd) {
			continue
		}
		if datetime.DaysBetween(interestStart, date) > 0 {
			result := terms.CalculateTotalInterestForPeriod(calc, in.GraceFraction, in.PeriodNumber, in.MathContext,
				graceCarry, balance, interestStart, date)
			interestForInstallment = interestForInstallment.Plus(result.Interest)
			graceCarry = result.InterestPaymentDueToGrace
			interestStart = date
		}

		compoundFee := zero
		if fee, ok := compoundingMap.Get(date); ok {
			interestToCompound := zero
			if terms.CompoundingMethod.IsInterestCompoundingEnabled() {
				interestToCompound = interestForInstallment.Minus(compoundedInterest)
				balance = balance.Plus(interestToCompound)
				compoundedInterest = interestForInstallment
			}
			compoundFee = fee
			compoundingMap.Put(date, interestToCompound.Plus(fee))
		}

		delta, _ := principalVariation.Get(date)
		balance = balance.Plus(delta).Plus(compoundFee)

		if rate, ok := rates[date]; ok {
			g.logger.Debug("switching annual interest rate",
				zap.String("op", "loans.CalculatePrincipalInterestComponentsForPeriod"),
				zap.Int("period", in.PeriodNumber),
				zap.String("date", datetime.Format(date)),
				zap.String("rate", rate.String()),
			)
			terms.UpdateAnnualNominalInterestRate(rate)
		}
	}

	result := terms.CalculateTotalInterestForPeriod(calc, in.GraceFraction, in.PeriodNumber, in.MathContext,
		graceCarry, balance, interestStart, periodEnd)
	interestForInstallment = interestForInstallment.Plus(result.Interest)
	graceCarry = result.InterestPaymentDueToGrace

	interestForPeriod := interestForInstallment
	if interestForPeriod.IsGreaterThanZero() {
		interestForPeriod = interestForPeriod.Minus(in.GraceCarry)
	} else {
		interestForPeriod = graceCarry.Minus(in.GraceCarry)
	}
	principal := terms.CalculateTotalPrincipalForPeriod(calc, in.OutstandingBalance, in.PeriodNumber, in.MathContext, interestForPeriod)

	if terms.AmortizationMethod == EqualPrincipal {
		if overflow := terms.InterestRoundingOverflow(); !overflow.IsZero() {
			interestForInstallment = interestForInstallment.Plus(overflow)
		}
		if multiple, ok := terms.InstallmentMultiple(); ok {
			rounded := roundInterestToMultiple(principal, interestForInstallment, multiple)
			rounded = terms.AdjustInterestIfLastRepaymentPeriod(rounded, interestForInstallment, in.PeriodNumber)
			terms.SetInterestRoundingOverflow(interestForInstallment.Minus(rounded))
			interestForInstallment = rounded
		}
	}

	cumulativeToDate := in.CumulativePrincipal.Plus(principal)
	principal = terms.AdjustPrincipalIfLastRepaymentPeriod(principal, cumulativeToDate, in.PeriodNumber)

	g.logger.Debug("computed period components",
		zap.String("op", "loans.CalculatePrincipalInterestComponentsForPeriod"),
		zap.Int("period", in.PeriodNumber),
		zap.String("principal", principal.Amount().String()),
		zap.String("interest", interestForInstallment.Amount().String()),
		zap.String("graceCarry", graceCarry.Amount().String()),
	)

	return PrincipalInterest{
		Principal:                 principal,
		Interest:                  interestForInstallment,
		InterestPaymentDueToGrace: graceCarry,
	}, nil
}

// roundInterestToMultiple picks the interest that brings principal plus
// interest to a multiple without charging more than the accrued interest. The
// nearest multiple is used when it is within reach, otherwise the next lower
// one. When no multiple lies between principal and principal plus accrued
// interest the accrued interest is charged as is. The difference is carried
// to the next period, so it is never negative.
func roundInterestToMultiple(principal, accrued money.Money, multiple int64) money.Money {
	total := principal.Plus(accrued)
	installment := money.Of(total.Currency(), mathutil.RoundToMultiplesOf(total.Amount(), multiple))
	if installment.IsGreaterThan(total) {
		installment = money.Of(total.Currency(), mathutil.FloorToMultiplesOf(total.Amount(), multiple))
	}
	if installment.IsLessThan(principal) {
		return accrued
	}
	return installment.Minus(principal)
}
