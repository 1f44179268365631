package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

func TestCumulativeVestedPercent(t *testing.T) {
	schedule := []domain.VestingTranche{
		{Year: 1, Percent: 25},
		{Year: 2, Percent: 25},
		{Year: 3, Percent: 25},
		{Year: 4, Percent: 25},
	}

	tests := []struct {
		months   int
		expected float64
	}{
		{0, 0},
		{6, 12.5},
		{12, 25},
		{18, 37.5},
		{24, 50},
		{48, 100},
		{60, 100},
	}

	for _, tt := range tests {
		got := cumulativeVestedPercent(schedule, tt.months)
		assert.InDelta(t, tt.expected, got, 0.001, "months=%d", tt.months)
	}
}

func TestCumulativeVestedPercentCliff(t *testing.T) {
	// A single tranche at year 1 earns linearly across months 0-12.
	schedule := []domain.VestingTranche{{Year: 1, Percent: 100}}
	assert.InDelta(t, 50.0, cumulativeVestedPercent(schedule, 6), 0.001)
	assert.InDelta(t, 100.0, cumulativeVestedPercent(schedule, 12), 0.001)
	assert.InDelta(t, 100.0, cumulativeVestedPercent(schedule, 24), 0.001)
}

func rsuScenario(cadence domain.Cadence) *domain.Scenario {
	grant := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	target := int64(2)
	return &domain.Scenario{
		Name:      "rsu",
		StartDate: grant,
		Owners:    []domain.Owner{{ID: 1, Name: "Alex"}},
		Accounts: []domain.Account{
			{
				ID: 1, Name: "Grant", AccountType: domain.AccountRSUGrant,
				StartingBalance: 120000, // 1,200 units x100
				GrantDate:       &grant,
				UnitPrice:       1000, // £10.00 flat (no growth)
				VestingSchedule: []domain.VestingTranche{
					{Year: 1, Percent: 50},
					{Year: 2, Percent: 50},
				},
				VestingCadence:     cadence,
				RSUTargetAccountID: &target,
				OwnerIDs:           []int64{1},
			},
			{ID: 2, Name: "Brokerage", AccountType: domain.AccountInvestment, OwnerIDs: []int64{1}},
		},
	}
}

func TestProcessRSUVestingMonotonicToZero(t *testing.T) {
	s := rsuScenario(domain.CadenceMonthly)
	e := NewEngine()
	ctx := newContext(s)
	ctx.resetFlows(s)

	prev := ctx.Balances[1]
	for i := 1; i <= 30; i++ {
		ctx.MonthStart = addMonths(s.StartDate, i)
		e.processRSUVesting(s, ctx)
		curr := ctx.Balances[1]
		assert.LessOrEqual(t, curr, prev, "unit balance must never increase (month %d)", i)
		assert.GreaterOrEqual(t, curr, int64(0), "unit balance must never go negative (month %d)", i)
		prev = curr
	}
	assert.Equal(t, int64(0), ctx.Balances[1], "fully vested after the final tranche")
	assert.Greater(t, ctx.Balances[2], int64(0), "proceeds landed in the target account")
}

func TestProcessRSUVestingFirstMonth(t *testing.T) {
	s := rsuScenario(domain.CadenceMonthly)
	e := NewEngine()
	ctx := newContext(s)
	ctx.resetFlows(s)
	ctx.MonthStart = addMonths(s.StartDate, 1)

	e.processRSUVesting(s, ctx)

	// One month into a 50%-year-1 schedule: target remaining is
	// 120000 * (1 - 0.50/12) = 115000, so 5000 unit-hundredths vest.
	assert.Equal(t, int64(115000), ctx.Balances[1])

	// 50 units at £10.00 = £500 gross; no YTD earnings so no tax due.
	assert.Equal(t, int64(50000), ctx.Balances[2])
	require.Contains(t, ctx.Flows, int64(2))
	assert.Equal(t, int64(50000), ctx.Flows[2].Income)
	assert.Equal(t, int64(0), ctx.Flows[2].Tax)
}

func TestProcessRSUVestingQuarterlyCatchUp(t *testing.T) {
	s := rsuScenario(domain.CadenceQuarterly)
	e := NewEngine()
	ctx := newContext(s)
	ctx.resetFlows(s)

	// February and March are skipped for quarterly grants.
	ctx.MonthStart = addMonths(s.StartDate, 1)
	e.processRSUVesting(s, ctx)
	assert.Equal(t, int64(120000), ctx.Balances[1])
	ctx.MonthStart = addMonths(s.StartDate, 2)
	e.processRSUVesting(s, ctx)
	assert.Equal(t, int64(120000), ctx.Balances[1])

	// April catches up to the three-month cumulative target:
	// 120000 * (1 - 0.50*3/12) = 105000.
	ctx.MonthStart = addMonths(s.StartDate, 3)
	e.processRSUVesting(s, ctx)
	assert.Equal(t, int64(105000), ctx.Balances[1])
}

func TestProcessRSUVestingUSDGrant(t *testing.T) {
	s := rsuScenario(domain.CadenceMonthly)
	s.GBPToUSDRate = 1.25
	s.Accounts[0].Currency = domain.CurrencyUSD
	e := NewEngine()
	ctx := newContext(s)
	ctx.resetFlows(s)
	ctx.MonthStart = addMonths(s.StartDate, 1)

	e.processRSUVesting(s, ctx)

	// $500 gross converts to £400 at 1.25.
	assert.Equal(t, int64(40000), ctx.Balances[2])
}
