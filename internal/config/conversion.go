package config

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/iwvelando/loan-schedule/pkg/money"
	"github.com/shopspring/decimal"
)

// ToCurrency resolves the loan currency, defaulting to USD with two decimals.
func (loan *Loan) ToCurrency() (money.Currency, error) {
	code := loan.Currency
	if code == "" {
		code = constants.DefaultCurrencyCode
	}
	digits := int32(constants.DefaultCurrencyDigits)
	if loan.CurrencyDigits != nil {
		digits = *loan.CurrencyDigits
	}
	currency, err := money.NewCurrency(code, digits)
	if err != nil {
		return money.Currency{}, err
	}
	mode, err := mathutil.ParseRoundingMode(loan.RoundingMode)
	if err != nil {
		return money.Currency{}, err
	}
	return currency.WithRounding(mode), nil
}

// ToTerms converts a config.Loan into the loan terms of a schedule run.
func (loan *Loan) ToTerms() (*loans.Terms, error) {
	if loan == nil {
		return nil, fmt.Errorf("nil loan")
	}
	currency, err := loan.ToCurrency()
	if err != nil {
		return nil, err
	}
	principal, err := money.NewFromString(loan.Principal, currency)
	if err != nil {
		return nil, fmt.Errorf("principal: %w", err)
	}
	rate, err := decimal.NewFromString(loan.InterestRate)
	if err != nil {
		return nil, fmt.Errorf("invalid interest rate %q: %w", loan.InterestRate, err)
	}

	terms := &loans.Terms{
		Principal:                      principal,
		AnnualNominalInterestRate:      rate,
		RepaymentEvery:                 loan.RepaymentEvery,
		NumberOfRepayments:             loan.NumberOfRepayments,
		InstallmentAmountInMultiplesOf: loan.InstallmentAmountInMultiplesOf,
		Grace: loans.Grace{
			OnPrincipalPayment: loan.GraceOnPrincipalPayment,
			OnInterestPayment:  loan.GraceOnInterestPayment,
			OnInterestCharged:  loan.GraceOnInterestCharged,
		},
		MathContext: mathutil.DefaultMathContext(),
	}
	if terms.RepaymentEvery == 0 {
		terms.RepaymentEvery = 1
	}
	if terms.AmortizationMethod, err = loans.ParseAmortizationMethod(loan.AmortizationMethod); err != nil {
		return nil, err
	}
	if terms.InterestCalculationPeriodMethod, err = loans.ParseInterestCalculationPeriodMethod(loan.InterestCalculationPeriod); err != nil {
		return nil, err
	}
	if terms.CompoundingMethod, err = loans.ParseCompoundingMethod(loan.CompoundingMethod); err != nil {
		return nil, err
	}
	if terms.DaysInYear, err = loans.ParseDaysInYearType(loan.DaysInYear); err != nil {
		return nil, err
	}
	if terms.DaysInMonth, err = loans.ParseDaysInMonthType(loan.DaysInMonth); err != nil {
		return nil, err
	}
	if terms.RepaymentFrequency, err = loans.ParsePeriodFrequencyType(loan.RepaymentFrequency); err != nil {
		return nil, err
	}
	return terms, nil
}

// ToVariations converts the configured variations.
func (loan *Loan) ToVariations() ([]loans.TermVariation, error) {
	variations := make([]loans.TermVariation, 0, len(loan.Variations))
	for i, v := range loan.Variations {
		kind, err := loans.ParseTermVariationType(v.Type)
		if err != nil {
			return nil, fmt.Errorf("variation %d: %w", i, err)
		}
		tv := loans.TermVariation{Type: kind}
		if tv.ApplicableFrom, err = optionalDate(v.Date); err != nil {
			return nil, fmt.Errorf("variation %d: %w", i, err)
		}
		if tv.DateValue, err = optionalDate(v.NewDate); err != nil {
			return nil, fmt.Errorf("variation %d: %w", i, err)
		}
		if v.Value != "" {
			if tv.Value, err = decimal.NewFromString(v.Value); err != nil {
				return nil, fmt.Errorf("variation %d: invalid value %q: %w", i, v.Value, err)
			}
		}
		variations = append(variations, tv)
	}
	return variations, nil
}

// ToPeriods lays out the repayment periods, applying due-date variations.
func (loan *Loan) ToPeriods(variations []loans.TermVariation) ([]loans.Period, error) {
	start, err := datetime.ParseDate(loan.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", loan.StartDate, err)
	}
	first, err := optionalDate(loan.FirstRepaymentDate)
	if err != nil {
		return nil, err
	}
	frequency, err := loans.ParsePeriodFrequencyType(loan.RepaymentFrequency)
	if err != nil {
		return nil, err
	}
	every := loan.RepaymentEvery
	if every == 0 {
		every = 1
	}
	return loans.GeneratePeriods(loans.RepaymentPlan{
		Start:              start,
		FirstRepaymentDate: first,
		Every:              every,
		Frequency:          frequency,
		Count:              loan.NumberOfRepayments,
	}, variations)
}

// ToScheduleRequest assembles everything a schedule run needs.
func (loan *Loan) ToScheduleRequest() (loans.ScheduleRequest, error) {
	terms, err := loan.ToTerms()
	if err != nil {
		return loans.ScheduleRequest{}, err
	}
	variations, err := loan.ToVariations()
	if err != nil {
		return loans.ScheduleRequest{}, err
	}
	periods, err := loan.ToPeriods(variations)
	if err != nil {
		return loans.ScheduleRequest{}, err
	}

	req := loans.ScheduleRequest{
		Terms:         terms,
		Variations:    variations,
		Periods:       periods,
		GraceFraction: loan.GraceFraction,
	}
	for _, d := range loan.CompoundingDates {
		date, err := datetime.ParseDate(d)
		if err != nil {
			return loans.ScheduleRequest{}, fmt.Errorf("invalid compounding date %q: %w", d, err)
		}
		req.CompoundingDates = append(req.CompoundingDates, date)
	}
	for _, c := range loan.Charges {
		date, err := datetime.ParseDate(c.Date)
		if err != nil {
			return loans.ScheduleRequest{}, fmt.Errorf("charge %q: invalid date %q: %w", c.Name, c.Date, err)
		}
		amount, err := money.NewFromString(c.Amount, terms.Currency())
		if err != nil {
			return loans.ScheduleRequest{}, fmt.Errorf("charge %q: %w", c.Name, err)
		}
		req.Charges = append(req.Charges, loans.Charge{Date: date, Amount: amount})
	}
	return req, nil
}

func optionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := datetime.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return &date, nil
}
