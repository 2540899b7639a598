package config

import (
	"fmt"

	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/shopspring/decimal"
)

// Loan indicates a loan and its parameters. Amounts and rates are strings so
// they reach the engine as exact decimals.
type Loan struct {
	Name                           string       `yaml:"name"`
	Currency                       string       `yaml:"currency,omitempty"`
	CurrencyDigits                 *int32       `yaml:"currencyDigits,omitempty"`
	RoundingMode                   string       `yaml:"roundingMode,omitempty"`
	Principal                      string       `yaml:"principal"`
	InterestRate                   string       `yaml:"interestRate"` // annual nominal, percent
	AmortizationMethod             string       `yaml:"amortizationMethod,omitempty"`
	InterestCalculationPeriod      string       `yaml:"interestCalculationPeriod,omitempty"`
	CompoundingMethod              string       `yaml:"compoundingMethod,omitempty"`
	DaysInYear                     string       `yaml:"daysInYear,omitempty"`
	DaysInMonth                    string       `yaml:"daysInMonth,omitempty"`
	StartDate                      string       `yaml:"startDate"`
	FirstRepaymentDate             string       `yaml:"firstRepaymentDate,omitempty"`
	RepaymentEvery                 int          `yaml:"repaymentEvery,omitempty"`
	RepaymentFrequency             string       `yaml:"repaymentFrequency,omitempty"`
	NumberOfRepayments             int          `yaml:"numberOfRepayments"`
	InstallmentAmountInMultiplesOf int64        `yaml:"installmentAmountInMultiplesOf,omitempty"`
	GraceOnPrincipalPayment        int          `yaml:"graceOnPrincipalPayment,omitempty"`
	GraceOnInterestPayment         int          `yaml:"graceOnInterestPayment,omitempty"`
	GraceOnInterestCharged         int          `yaml:"graceOnInterestCharged,omitempty"`
	GraceFraction                  float64      `yaml:"graceFraction,omitempty"`
	Variations                     []Variation  `yaml:"variations,omitempty"`
	CompoundingDates               []string     `yaml:"compoundingDates,omitempty"`
	Charges                        []LoanCharge `yaml:"charges,omitempty"`
}

// Variation is a scheduled change to the loan terms.
type Variation struct {
	Type    string `yaml:"type"` // principal, interest_rate, due_date, emi_amount
	Date    string `yaml:"date,omitempty"`
	Value   string `yaml:"value,omitempty"`
	NewDate string `yaml:"newDate,omitempty"` // due_date only
}

// LoanCharge is a fee charged on a date.
type LoanCharge struct {
	Name   string `yaml:"name,omitempty"`
	Date   string `yaml:"date"`
	Amount string `yaml:"amount"`
}

// Validate checks the fields that do not need the engine to interpret.
func (loan *Loan) Validate() error {
	if loan.Name == "" {
		return fmt.Errorf("loan name is required")
	}
	if _, err := decimal.NewFromString(loan.Principal); err != nil {
		return fmt.Errorf("invalid principal %q: %w", loan.Principal, err)
	}
	if _, err := decimal.NewFromString(loan.InterestRate); err != nil {
		return fmt.Errorf("invalid interest rate %q: %w", loan.InterestRate, err)
	}
	if _, err := datetime.ParseDate(loan.StartDate); err != nil {
		return fmt.Errorf("invalid start date %q: %w", loan.StartDate, err)
	}
	if loan.FirstRepaymentDate != "" {
		if _, err := datetime.ParseDate(loan.FirstRepaymentDate); err != nil {
			return fmt.Errorf("invalid first repayment date %q: %w", loan.FirstRepaymentDate, err)
		}
	}
	if loan.NumberOfRepayments < 1 {
		return fmt.Errorf("numberOfRepayments must be at least 1, got %d", loan.NumberOfRepayments)
	}
	if loan.RepaymentEvery < 0 {
		return fmt.Errorf("repaymentEvery must not be negative, got %d", loan.RepaymentEvery)
	}
	for i, v := range loan.Variations {
		if v.Date != "" {
			if _, err := datetime.ParseDate(v.Date); err != nil {
				return fmt.Errorf("variation %d: invalid date %q: %w", i, v.Date, err)
			}
		}
	}
	for i, charge := range loan.Charges {
		if _, err := datetime.ParseDate(charge.Date); err != nil {
			return fmt.Errorf("charge %d: invalid date %q: %w", i, charge.Date, err)
		}
	}
	return nil
}
