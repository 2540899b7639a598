package loans

import "github.com/iwvelando/loan-schedule/pkg/constants"

// PeriodsInOneYearCalculator reports how many repayment units of a frequency
// make up one year. It is the rate-period convention used to turn an annual
// nominal rate into a periodic rate.
type PeriodsInOneYearCalculator interface {
	PeriodsInOneYear(frequency PeriodFrequencyType, daysInYear DaysInYearType) int
}

// DefaultPeriodsCalculator is the calendar convention: 12 months, 52 weeks or
// the configured day count per year.
type DefaultPeriodsCalculator struct{}

// PeriodsInOneYear implements PeriodsInOneYearCalculator.
func (DefaultPeriodsCalculator) PeriodsInOneYear(frequency PeriodFrequencyType, daysInYear DaysInYearType) int {
	switch frequency {
	case Days:
		return daysInYear.Days(constants.DefaultDaysInYear)
	case Weeks:
		return constants.WeeksPerYear
	case Months:
		return constants.MonthsPerYear
	case Years:
		return 1
	}
	return constants.MonthsPerYear
}

// Days returns the fixed day count of the convention, or actual when the
// convention follows the calendar.
func (d DaysInYearType) Days(actual int) int {
	switch d {
	case DaysInYear360:
		return 360
	case DaysInYear364:
		return 364
	case DaysInYear365:
		return 365
	}
	return actual
}
