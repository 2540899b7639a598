package loans

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/money"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Charge is a fee applied to the loan on a date. Charges are folded into the
// balance on compounding dates when fee compounding is enabled.
type Charge struct {
	Date   time.Time
	Amount money.Money
}

// ScheduleRequest is the input of one schedule run.
type ScheduleRequest struct {
	Terms      *Terms
	Variations []TermVariation
	Periods    []Period
	// CompoundingDates are the dates on which unpaid interest and fees are
	// compounded. A date only takes effect when it is also a principal or
	// rate breakpoint.
	CompoundingDates []time.Time
	Charges          []Charge
	// GraceFraction reduces the interest of the first interest-bearing period
	// after interest grace.
	GraceFraction float64
	Calculator    PeriodsInOneYearCalculator
}

// Installment is one row of a repayment schedule.
type Installment struct {
	Number             int
	FromDate           time.Time
	DueDate            time.Time
	Principal          money.Money
	Interest           money.Money
	Compounded         money.Money
	Total              money.Money
	OutstandingBalance money.Money
	// InterestCarriedForward is the interest deferred by grace at the due date.
	InterestCarriedForward money.Money
	// PrincipalVariation is the net principal change applied inside the period.
	PrincipalVariation money.Money
	// AnnualInterestRate is the rate in force at the end of the period.
	AnnualInterestRate decimal.Decimal
}

// Schedule is the ordered result of a run.
type Schedule struct {
	Currency       money.Currency
	Principal      money.Money
	Installments   []Installment
	TotalPrincipal money.Money
	TotalInterest  money.Money
	TotalRepayment money.Money
	// UntriggeredCompoundingDates lists compounding dates that never coincided
	// with a breakpoint and so compounded nothing.
	UntriggeredCompoundingDates []time.Time
}

type periodEvents struct {
	principal   *DateMap
	compounding *DateMap
	installment *money.Money
}

// GenerateSchedule runs every period of req in order and returns the
// installments. req.Terms is not modified; the run works on a clone.
func GenerateSchedule(logger *zap.Logger, req ScheduleRequest) (*Schedule, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if req.Terms == nil {
		return nil, errors.New("schedule request has no loan terms")
	}
	if err := req.Terms.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateVariations(req.Terms.Principal, req.Variations); err != nil {
		return nil, err
	}
	if err := validatePeriods(req.Periods, req.Terms.NumberOfRepayments); err != nil {
		return nil, err
	}

	terms := req.Terms.Clone()
	events, err := allocateEvents(terms, req)
	if err != nil {
		return nil, err
	}
	calc := req.Calculator
	if calc == nil {
		calc = DefaultPeriodsCalculator{}
	}
	generator := NewDecliningBalanceGenerator(logger)

	zero := terms.Principal.Zero()
	schedule := &Schedule{
		Currency:       terms.Currency(),
		Principal:      terms.Principal,
		Installments:   make([]Installment, 0, len(req.Periods)),
		TotalPrincipal: zero,
		TotalInterest:  zero,
		TotalRepayment: zero,
	}
	outstanding := terms.Principal
	graceCarry := zero
	var untriggered []time.Time

	for i, period := range req.Periods {
		ev := events[i]
		if ev.installment != nil {
			terms.SetInstallmentOverride(*ev.installment)
		}
		delta := ev.principal.Sum(zero)
		if outstanding.Plus(delta).IsLessThanZero() {
			return nil, &ValidationError{
				Field:  "variations",
				Reason: fmt.Sprintf("principal variations in period %d exceed the outstanding balance %s", period.Number, outstanding),
				Err:    ErrNegativeBalance,
			}
		}
		for _, date := range ev.principal.Keys() {
			amount, _ := ev.principal.Get(date)
			terms.ApplyPrincipalVariation(amount)
		}
		compoundingDates := ev.compounding.Keys()

		result, err := generator.CalculatePrincipalInterestComponentsForPeriod(PeriodInput{
			Calculator:          calc,
			GraceFraction:       req.GraceFraction,
			CumulativePrincipal: schedule.TotalPrincipal,
			CumulativeInterest:  schedule.TotalInterest,
			GraceCarry:          graceCarry,
			OutstandingBalance:  outstanding,
			Terms:               terms,
			PeriodNumber:        period.Number,
			MathContext:         terms.MathContext,
			PrincipalVariation:  ev.principal,
			CompoundingMap:      ev.compounding,
			PeriodStart:         period.From,
			PeriodEnd:           period.Due,
			TermVariations:      req.Variations,
		})
		if err != nil {
			return nil, err
		}
		if result.Principal.IsLessThanZero() {
			return nil, &InvariantError{Period: period.Number, Detail: fmt.Sprintf("negative principal %s", result.Principal)}
		}
		if result.Interest.IsLessThanZero() {
			return nil, &InvariantError{Period: period.Number, Detail: fmt.Sprintf("negative interest %s", result.Interest)}
		}

		compounded := zero
		for _, date := range compoundingDates {
			if !ev.principal.Contains(date) {
				untriggered = append(untriggered, date)
				continue
			}
			amount, _ := ev.compounding.Get(date)
			compounded = compounded.Plus(amount)
		}

		outstanding = outstanding.Plus(delta).Minus(result.Principal)
		if outstanding.IsLessThanZero() {
			return nil, &InvariantError{Period: period.Number, Detail: fmt.Sprintf("negative outstanding balance %s", outstanding)}
		}
		if i == len(req.Periods)-1 {
			if overflow := terms.InterestRoundingOverflow(); !overflow.IsZero() {
				return nil, &InvariantError{Period: period.Number, Detail: fmt.Sprintf("rounding overflow %s left at maturity", overflow)}
			}
			if !outstanding.IsZero() {
				return nil, &InvariantError{Period: period.Number, Detail: fmt.Sprintf("balance %s left at maturity", outstanding)}
			}
			outstanding = zero
		}
		graceCarry = result.InterestPaymentDueToGrace
		terms.settlePeriod()

		total := result.Principal.Plus(result.Interest)
		schedule.Installments = append(schedule.Installments, Installment{
			Number:                 period.Number,
			FromDate:               period.From,
			DueDate:                period.Due,
			Principal:              result.Principal,
			Interest:               result.Interest,
			Compounded:             compounded,
			Total:                  total,
			OutstandingBalance:     outstanding,
			InterestCarriedForward: graceCarry,
			PrincipalVariation:     delta,
			AnnualInterestRate:     terms.AnnualNominalInterestRate,
		})
		schedule.TotalPrincipal = schedule.TotalPrincipal.Plus(result.Principal)
		schedule.TotalInterest = schedule.TotalInterest.Plus(result.Interest)
		schedule.TotalRepayment = schedule.TotalRepayment.Plus(total)
	}

	if len(untriggered) > 0 {
		dates := make([]string, len(untriggered))
		for i, d := range untriggered {
			dates[i] = datetime.Format(d)
		}
		logger.Warn("compounding dates without a principal or rate breakpoint were not applied",
			zap.String("op", "loans.GenerateSchedule"),
			zap.Strings("dates", dates),
		)
	}
	schedule.UntriggeredCompoundingDates = untriggered

	logger.Debug("generated schedule",
		zap.String("op", "loans.GenerateSchedule"),
		zap.Int("installments", len(schedule.Installments)),
		zap.String("totalInterest", schedule.TotalInterest.String()),
	)
	return schedule, nil
}

func validatePeriods(periods []Period, numberOfRepayments int) error {
	if len(periods) != numberOfRepayments {
		return invalidTerms("periods", "%d periods given for %d repayments", len(periods), numberOfRepayments)
	}
	for i, p := range periods {
		if !p.Due.After(p.From) {
			return invalidTerms("periods", "period %d is due %s, not after its start %s", p.Number, datetime.Format(p.Due), datetime.Format(p.From))
		}
		if p.Number != i+1 {
			return invalidTerms("periods", "period at position %d is numbered %d", i+1, p.Number)
		}
		if i > 0 && !sameDay(p.From, periods[i-1].Due) {
			return invalidTerms("periods", "period %d does not start on the due date of period %d", p.Number, i)
		}
	}
	return nil
}

// periodIndex finds the period owning date: From < date <= Due, with the loan
// start belonging to the first period.
func periodIndex(periods []Period, date time.Time) (int, bool) {
	date = datetime.Truncate(date)
	if sameDay(date, periods[0].From) {
		return 0, true
	}
	i := sort.Search(len(periods), func(j int) bool { return !datetime.Truncate(periods[j].Due).Before(date) })
	if i == len(periods) || !date.After(datetime.Truncate(periods[i].From)) {
		return 0, false
	}
	return i, true
}

// allocateEvents distributes principal variations, installment overrides,
// compounding dates and charges to the periods they fall in.
func allocateEvents(terms *Terms, req ScheduleRequest) ([]periodEvents, error) {
	periods := req.Periods
	events := make([]periodEvents, len(periods))
	for i := range events {
		events[i] = periodEvents{principal: NewDateMap(), compounding: NewDateMap()}
	}
	currency := terms.Currency()
	loanStart := datetime.Truncate(periods[0].From)

	for i, v := range req.Variations {
		switch v.Type {
		case PrincipalVariation, EMIAmountVariation:
		default:
			continue
		}
		date := v.EffectiveDate(loanStart)
		idx, ok := periodIndex(periods, date)
		if !ok {
			return nil, invalidVariation(variationField(i), "%s variation on %s falls outside the repayment periods",
				v.Type, datetime.Format(date))
		}
		amount := money.Of(currency, v.Value)
		if v.Type == PrincipalVariation {
			events[idx].principal.Add(date, amount)
		} else {
			events[idx].installment = &amount
		}
	}

	feeCompounding := terms.CompoundingMethod.IsFeeCompoundingEnabled()
	if terms.CompoundingMethod != CompoundingNone {
		for _, date := range req.CompoundingDates {
			if idx, ok := periodIndex(periods, date); ok {
				events[idx].compounding.Put(date, money.Zero(currency))
			}
		}
	}
	if feeCompounding {
		for _, charge := range req.Charges {
			if idx, ok := periodIndex(periods, charge.Date); ok {
				events[idx].compounding.Add(charge.Date, charge.Amount)
			}
		}
	}
	return events, nil
}
