// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/loans"
)

// MaturityDate returns the last due date of a loan as YYYY-MM-DD.
func MaturityDate(startDate, firstRepaymentDate string, every int, frequency string, count int) (string, error) {
	kind, err := loans.ParsePeriodFrequencyType(frequency)
	if err != nil {
		return "", err
	}
	if every < 1 {
		every = 1
	}
	if firstRepaymentDate != "" {
		first, err := datetime.ParseDate(firstRepaymentDate)
		if err != nil {
			return "", err
		}
		return datetime.Format(loans.AddRepaymentPeriods(first, every, kind, count-1)), nil
	}
	start, err := datetime.ParseDate(startDate)
	if err != nil {
		return "", err
	}
	return datetime.Format(loans.AddRepaymentPeriods(start, every, kind, count)), nil
}

// ValidateVariationDates warns about variations outside the life of the loan.
func ValidateVariationDates(loanName, startDate, maturityDate string, dates []string) []string {
	var warnings []string
	for _, date := range dates {
		if date == "" {
			continue
		}
		if date < startDate {
			warnings = append(warnings, fmt.Sprintf("Loan '%s' has a variation before its start date (%s < %s)",
				loanName, date, startDate))
		}
		if date > maturityDate {
			warnings = append(warnings, fmt.Sprintf("Loan '%s' has a variation after maturity (%s > %s)",
				loanName, date, maturityDate))
		}
	}
	return warnings
}

// ValidateCompoundingDates warns about compounding dates that will not take
// effect: compounding is only applied on a date that is also a variation date.
func ValidateCompoundingDates(loanName, compoundingMethod string, compoundingDates, variationDates []string) []string {
	var warnings []string
	if len(compoundingDates) == 0 {
		return warnings
	}
	method, err := loans.ParseCompoundingMethod(compoundingMethod)
	if err == nil && method == loans.CompoundingNone {
		return append(warnings, fmt.Sprintf("Loan '%s' lists compounding dates but its compounding method is none", loanName))
	}

	breakpoints := make(map[string]bool, len(variationDates))
	for _, d := range variationDates {
		breakpoints[d] = true
	}
	for _, d := range compoundingDates {
		if !breakpoints[d] {
			warnings = append(warnings, fmt.Sprintf("Loan '%s' compounding date %s is not a variation date and will not compound",
				loanName, d))
		}
	}
	return warnings
}

// ConfigValidator collects the loan fields needed to produce warnings.
type ConfigValidator struct {
	Loans []LoanConfig
}

// LoanConfig is the subset of a configured loan that validation looks at.
type LoanConfig struct {
	Name               string
	StartDate          string
	FirstRepaymentDate string
	RepaymentEvery     int
	RepaymentFrequency string
	NumberOfRepayments int
	CompoundingMethod  string
	CompoundingDates   []string
	VariationDates     []string
	ChargeDates        []string
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	for _, loan := range cv.Loans {
		maturity, err := MaturityDate(loan.StartDate, loan.FirstRepaymentDate, loan.RepaymentEvery,
			loan.RepaymentFrequency, loan.NumberOfRepayments)
		if err == nil {
			warnings = append(warnings, ValidateVariationDates(loan.Name, loan.StartDate, maturity, loan.VariationDates)...)
		}
		warnings = append(warnings,
			ValidateCompoundingDates(loan.Name, loan.CompoundingMethod, loan.CompoundingDates, loan.VariationDates)...)

		method, err := loans.ParseCompoundingMethod(loan.CompoundingMethod)
		if err == nil && !method.IsFeeCompoundingEnabled() && len(loan.ChargeDates) > 0 {
			warnings = append(warnings, fmt.Sprintf("Loan '%s' has charges but does not compound fees", loan.Name))
		}
	}

	return warnings
}
