package loans

import (
	"sort"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/datetime"
)

// Period is one repayment period. Interest accrues from From up to Due.
type Period struct {
	Number int
	From   time.Time
	Due    time.Time
}

// RepaymentPlan describes the regular repayment calendar of a loan.
type RepaymentPlan struct {
	// Start is the disbursement date; the first period begins here.
	Start time.Time
	// FirstRepaymentDate anchors the due dates when set. Otherwise the first
	// due date is one repayment period after Start.
	FirstRepaymentDate *time.Time
	Every              int
	Frequency          PeriodFrequencyType
	Count              int
}

// AddRepaymentPeriods steps date by n repayment periods of every units. Month
// and year steps clamp to the end of shorter months.
func AddRepaymentPeriods(date time.Time, every int, frequency PeriodFrequencyType, n int) time.Time {
	switch frequency {
	case Days:
		return date.AddDate(0, 0, every*n)
	case Weeks:
		return date.AddDate(0, 0, every*n*constants.DaysPerWeek)
	case Years:
		return datetime.AddMonths(date, every*n*constants.MonthsPerYear)
	default:
		return datetime.AddMonths(date, every*n)
	}
}

// GeneratePeriods lays out the repayment periods of plan and applies due-date
// variations. Each due date is computed from the anchor rather than from the
// previous due date, so month-end clamping does not drift. A moved due date
// must stay strictly between its neighbours and starts the following period.
func GeneratePeriods(plan RepaymentPlan, variations []TermVariation) ([]Period, error) {
	if plan.Count < 1 {
		return nil, invalidTerms("numberOfRepayments", "must be at least 1, got %d", plan.Count)
	}
	if plan.Every < 1 {
		return nil, invalidTerms("repaymentEvery", "must be at least 1, got %d", plan.Every)
	}
	start := datetime.Truncate(plan.Start)

	dues := make([]time.Time, plan.Count)
	for k := range dues {
		if plan.FirstRepaymentDate != nil {
			dues[k] = AddRepaymentPeriods(datetime.Truncate(*plan.FirstRepaymentDate), plan.Every, plan.Frequency, k)
		} else {
			dues[k] = AddRepaymentPeriods(start, plan.Every, plan.Frequency, k+1)
		}
	}
	if !dues[0].After(start) {
		return nil, invalidTerms("firstRepaymentDate", "%s is not after the start date %s",
			datetime.Format(dues[0]), datetime.Format(start))
	}

	moved := make(map[int]time.Time)
	for i, v := range variations {
		if v.Type != DueDateVariation {
			continue
		}
		if v.ApplicableFrom == nil || v.DateValue == nil {
			return nil, invalidVariation(variationField(i), "due date variation needs both the original and the new due date")
		}
		original := datetime.Truncate(*v.ApplicableFrom)
		k := sort.Search(len(dues), func(j int) bool { return !dues[j].Before(original) })
		if k == len(dues) || !dues[k].Equal(original) {
			return nil, invalidVariation(variationField(i), "no installment is due on %s", datetime.Format(original))
		}
		if _, dup := moved[k]; dup {
			return nil, invalidVariation(variationField(i), "installment due on %s is moved twice", datetime.Format(original))
		}
		moved[k] = datetime.Truncate(*v.DateValue)
	}
	for k, due := range moved {
		lower := start
		if k > 0 {
			lower = dues[k-1]
			if prev, ok := moved[k-1]; ok {
				lower = prev
			}
		}
		if !due.After(lower) {
			return nil, invalidVariation("variations", "due date %s of installment %d does not fall between its neighbours",
				datetime.Format(due), k+1)
		}
		if k+1 < len(dues) {
			upper := dues[k+1]
			if next, ok := moved[k+1]; ok {
				upper = next
			}
			if !due.Before(upper) {
				return nil, invalidVariation("variations", "due date %s of installment %d does not fall between its neighbours",
					datetime.Format(due), k+1)
			}
		}
	}
	for k, due := range moved {
		dues[k] = due
	}

	periods := make([]Period, plan.Count)
	from := start
	for k, due := range dues {
		periods[k] = Period{Number: k + 1, From: from, Due: due}
		from = due
	}
	return periods, nil
}
