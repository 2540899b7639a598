package loans

import (
	"testing"

	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/iwvelando/loan-schedule/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dailyTerms(principal, rate string) *Terms {
	terms := monthlyTerms(principal, rate, 12, EqualPrincipal)
	terms.InterestCalculationPeriodMethod = Daily
	terms.DaysInYear = DaysInYear365
	return terms.Clone()
}

func periodInput(terms *Terms, start, end string) PeriodInput {
	zero := terms.Principal.Zero()
	return PeriodInput{
		Calculator:          DefaultPeriodsCalculator{},
		CumulativePrincipal: zero,
		CumulativeInterest:  zero,
		GraceCarry:          zero,
		OutstandingBalance:  terms.Principal,
		Terms:               terms,
		PeriodNumber:        1,
		MathContext:         mathutil.DefaultMathContext(),
		PrincipalVariation:  NewDateMap(),
		CompoundingMap:      NewDateMap(),
		PeriodStart:         testutil.Date(start),
		PeriodEnd:           testutil.Date(end),
	}
}

func TestZeroLengthSubIntervalContributesNoInterest(t *testing.T) {
	generator := NewDecliningBalanceGenerator(zap.NewNop())

	plain := monthlyTerms("10000", "12", 12, EqualPrincipal).Clone()
	baseline, err := generator.CalculatePrincipalInterestComponentsForPeriod(periodInput(plain, "2025-01-01", "2025-02-01"))
	require.NoError(t, err)
	assertMoney(t, "100", baseline.Interest)

	withBreakpoint := monthlyTerms("10000", "12", 12, EqualPrincipal).Clone()
	in := periodInput(withBreakpoint, "2025-01-01", "2025-02-01")
	in.PrincipalVariation.Put(testutil.Date("2025-01-01"), testutil.USD("0"))
	result, err := generator.CalculatePrincipalInterestComponentsForPeriod(in)
	require.NoError(t, err)
	assertMoney(t, "100", result.Interest)

	// A disbursement on the first day accrues for the whole period.
	disbursed := monthlyTerms("10000", "12", 12, EqualPrincipal).Clone()
	in = periodInput(disbursed, "2025-01-01", "2025-02-01")
	in.PrincipalVariation.Put(testutil.Date("2025-01-01"), testutil.USD("2000"))
	result, err = generator.CalculatePrincipalInterestComponentsForPeriod(in)
	require.NoError(t, err)
	assertMoney(t, "120", result.Interest)
}

func TestRateChangeAppliesAfterBreakpoint(t *testing.T) {
	generator := NewDecliningBalanceGenerator(zap.NewNop())
	terms := dailyTerms("10000", "12")

	in := periodInput(terms, "2025-01-01", "2025-02-01")
	in.TermVariations = []TermVariation{
		{Type: InterestRateVariation, ApplicableFrom: testutil.DatePtr("2025-01-16"), Value: testutil.Dec("24")},
	}
	result, err := generator.CalculatePrincipalInterestComponentsForPeriod(in)
	require.NoError(t, err)

	// 15 days at 12% then 16 days at 24%
	assertMoney(t, "154.53", result.Interest)
	assert.True(t, terms.AnnualNominalInterestRate.Equal(testutil.Dec("24")))
	assert.True(t, in.PrincipalVariation.Contains(testutil.Date("2025-01-16")), "rate change should add a breakpoint")
	amount, _ := in.PrincipalVariation.Get(testutil.Date("2025-01-16"))
	assert.True(t, amount.IsZero())
}

func TestRateChangeOnPeriodEndIsNotRetroactive(t *testing.T) {
	generator := NewDecliningBalanceGenerator(zap.NewNop())
	terms := dailyTerms("10000", "12")

	in := periodInput(terms, "2025-01-01", "2025-02-01")
	in.TermVariations = []TermVariation{
		{Type: InterestRateVariation, ApplicableFrom: testutil.DatePtr("2025-02-01"), Value: testutil.Dec("24")},
	}
	result, err := generator.CalculatePrincipalInterestComponentsForPeriod(in)
	require.NoError(t, err)

	// 31 days at 12%
	assertMoney(t, "101.92", result.Interest)
	assert.True(t, terms.AnnualNominalInterestRate.Equal(testutil.Dec("24")))
}

func TestCompoundingMapReceivesInterestAndFee(t *testing.T) {
	generator := NewDecliningBalanceGenerator(zap.NewNop())
	terms := dailyTerms("10000", "12")
	terms.CompoundingMethod = CompoundingInterestAndFee

	in := periodInput(terms, "2025-01-01", "2025-02-01")
	breakpoint := testutil.Date("2025-01-16")
	in.PrincipalVariation.Put(breakpoint, testutil.USD("0"))
	in.CompoundingMap.Put(breakpoint, testutil.USD("10"))

	_, err := generator.CalculatePrincipalInterestComponentsForPeriod(in)
	require.NoError(t, err)

	compounded, ok := in.CompoundingMap.Get(breakpoint)
	require.True(t, ok)
	// 15 days of interest on 10000 at 12% plus the fee
	assertMoney(t, "59.32", compounded)
}

func TestEqualPrincipalMultiplesCarryOverflow(t *testing.T) {
	generator := NewDecliningBalanceGenerator(zap.NewNop())
	terms := monthlyTerms("12000", "12.5", 12, EqualPrincipal).Clone()
	terms.InstallmentAmountInMultiplesOf = 10

	result, err := generator.CalculatePrincipalInterestComponentsForPeriod(periodInput(terms, "2025-01-01", "2025-02-01"))
	require.NoError(t, err)

	// 1000 principal + 125 interest would round up to 1130, more than accrued
	assertMoney(t, "1000", result.Principal)
	assertMoney(t, "120", result.Interest)
	assertMoney(t, "5", terms.InterestRoundingOverflow())
}

func TestRoundInterestToMultiple(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		accrued   string
		multiple  int64
		want      string
	}{
		{name: "nearest multiple below", principal: "833.33", accrued: "91.67", multiple: 10, want: "86.67"},
		{name: "nearest multiple above falls back to floor", principal: "1000", accrued: "125", multiple: 10, want: "120"},
		{name: "exact multiple", principal: "900", accrued: "100", multiple: 50, want: "100"},
		{name: "no multiple within reach", principal: "166.67", accrued: "5", multiple: 50, want: "5"},
		{name: "nothing accrued", principal: "166.67", accrued: "0", multiple: 100, want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundInterestToMultiple(testutil.USD(tt.principal), testutil.USD(tt.accrued), tt.multiple)
			assertMoney(t, tt.want, got)
			assert.False(t, got.IsGreaterThan(testutil.USD(tt.accrued)), "charged %s beyond accrued %s", got, tt.accrued)
		})
	}
}

func TestLastPeriodAbsorbsResidualPrincipal(t *testing.T) {
	generator := NewDecliningBalanceGenerator(zap.NewNop())
	terms := monthlyTerms("100", "0", 3, EqualPrincipal).Clone()

	cumulative := testutil.USD("0")
	outstanding := terms.Principal
	dates := []string{"2025-01-01", "2025-02-01", "2025-03-01", "2025-04-01"}
	var principals []string
	for p := 1; p <= 3; p++ {
		in := periodInput(terms, dates[p-1], dates[p])
		in.PeriodNumber = p
		in.CumulativePrincipal = cumulative
		in.OutstandingBalance = outstanding
		result, err := generator.CalculatePrincipalInterestComponentsForPeriod(in)
		require.NoError(t, err)

		cumulative = cumulative.Plus(result.Principal)
		outstanding = outstanding.Minus(result.Principal)
		principals = append(principals, result.Principal.Amount().StringFixed(2))
	}

	assert.Equal(t, []string{"33.33", "33.33", "33.34"}, principals)
	assert.True(t, outstanding.IsZero())
}

func TestGeneratorRejectsBadInput(t *testing.T) {
	generator := NewDecliningBalanceGenerator(nil)

	_, err := generator.CalculatePrincipalInterestComponentsForPeriod(PeriodInput{})
	assert.Error(t, err)

	terms := monthlyTerms("100", "1", 3, EqualPrincipal).Clone()
	_, err = generator.CalculatePrincipalInterestComponentsForPeriod(periodInput(terms, "2025-02-01", "2025-01-01"))
	assert.ErrorIs(t, err, ErrInvalidTerms)
}
