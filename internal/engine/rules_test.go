package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

func rulesScenario(rules ...domain.AutomationRule) *domain.Scenario {
	return &domain.Scenario{
		Name:      "rules",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Owners:    []domain.Owner{{ID: 1, Name: "Alex"}},
		Accounts: []domain.Account{
			{ID: 1, Name: "Current", AccountType: domain.AccountCash, StartingBalance: 1500000, OwnerIDs: []int64{1}},
			{ID: 2, Name: "Savings", AccountType: domain.AccountCash, StartingBalance: 200000, OwnerIDs: []int64{1}},
			{ID: 3, Name: "ISA", AccountType: domain.AccountInvestment, TaxWrapper: domain.WrapperISA, OwnerIDs: []int64{1}},
			{ID: 4, Name: "Mortgage", AccountType: domain.AccountMortgage, StartingBalance: -10000000, OwnerIDs: []int64{1}},
		},
		AutomationRules: rules,
	}
}

func runRulesMonth(s *domain.Scenario) (*Engine, *Context) {
	e := NewEngine()
	ctx := newContext(s)
	ctx.resetFlows(s)
	ctx.MonthStart = monthAnchor(s.StartDate)
	e.processRules(s, ctx)
	return e, ctx
}

func TestProcessRulesSweep(t *testing.T) {
	target := int64(2)
	s := rulesScenario(domain.AutomationRule{
		ID: 1, Name: "Sweep excess", RuleType: domain.RuleSweep,
		SourceAccountID: 1, TargetAccountID: &target,
		TriggerValue: 1000000, Cadence: domain.CadenceMonthly,
	})

	_, ctx := runRulesMonth(s)

	assert.Equal(t, int64(1000000), ctx.Balances[1], "source left at the trigger level")
	assert.Equal(t, int64(700000), ctx.Balances[2])
	require.Len(t, ctx.RuleLogs, 1)
	assert.Equal(t, "sweep", ctx.RuleLogs[0].RuleType)
	assert.Equal(t, "Moved £5,000.00", ctx.RuleLogs[0].Action)
}

func TestProcessRulesTopUpCappedBySource(t *testing.T) {
	target := int64(1)
	s := rulesScenario(domain.AutomationRule{
		ID: 1, Name: "Keep current afloat", RuleType: domain.RuleTopUp,
		SourceAccountID: 2, TargetAccountID: &target,
		TriggerValue: 2000000, Cadence: domain.CadenceMonthly,
	})

	_, ctx := runRulesMonth(s)

	// Deficit is £5,000 but the source only holds £2,000.
	assert.Equal(t, int64(0), ctx.Balances[2])
	assert.Equal(t, int64(1700000), ctx.Balances[1])
}

func TestProcessRulesSmartTransferSkipsLowFunds(t *testing.T) {
	target := int64(2)
	fixed := int64(1000000)
	s := rulesScenario(domain.AutomationRule{
		ID: 1, Name: "Fixed saver", RuleType: domain.RuleSmartTransfer,
		SourceAccountID: 1, TargetAccountID: &target,
		TriggerValue: 1000000, TransferValue: &fixed,
		Cadence: domain.CadenceMonthly,
	})

	// Source holds £15,000; trigger £10,000 + fixed £10,000 exceeds it.
	_, ctx := runRulesMonth(s)
	assert.Equal(t, int64(1500000), ctx.Balances[1], "transfer skipped")
	assert.Empty(t, ctx.RuleLogs)

	// With a £5,000 fixed amount the source would stay at the trigger.
	fixed2 := int64(500000)
	s2 := rulesScenario(domain.AutomationRule{
		ID: 1, Name: "Fixed saver", RuleType: domain.RuleSmartTransfer,
		SourceAccountID: 1, TargetAccountID: &target,
		TriggerValue: 1000000, TransferValue: &fixed2,
		Cadence: domain.CadenceMonthly,
	})
	_, ctx2 := runRulesMonth(s2)
	assert.Equal(t, int64(1000000), ctx2.Balances[1])
	assert.Equal(t, int64(700000), ctx2.Balances[2])
}

func TestProcessRulesPriorityOrder(t *testing.T) {
	savings := int64(2)
	isa := int64(3)
	s := rulesScenario(
		domain.AutomationRule{
			ID: 1, Name: "Second", RuleType: domain.RuleSweep,
			SourceAccountID: 1, TargetAccountID: &savings,
			TriggerValue: 500000, Cadence: domain.CadenceMonthly, Priority: 2,
		},
		domain.AutomationRule{
			ID: 2, Name: "First", RuleType: domain.RuleSweep,
			SourceAccountID: 1, TargetAccountID: &isa,
			TriggerValue: 1200000, Cadence: domain.CadenceMonthly, Priority: 1,
		},
	)

	_, ctx := runRulesMonth(s)

	require.Len(t, ctx.RuleLogs, 2)
	assert.Equal(t, "ISA", ctx.RuleLogs[0].TargetAccount, "priority 1 executes first")
	assert.Equal(t, int64(300000), ctx.Balances[3], "first sweep takes £3,000")
	assert.Equal(t, int64(700000), ctx.Balances[2], "second sweep sees the reduced source")
	assert.Equal(t, int64(500000), ctx.Balances[1])
}

func TestProcessRulesHeadroomTrim(t *testing.T) {
	isa := int64(3)
	s := rulesScenario(domain.AutomationRule{
		ID: 1, Name: "ISA sweep", RuleType: domain.RuleSweep,
		SourceAccountID: 1, TargetAccountID: &isa,
		TriggerValue: 500000, Cadence: domain.CadenceMonthly,
	})
	s.TaxLimits = []domain.TaxLimit{{
		ID: 1, Name: "ISA allowance", Amount: 400000,
		Wrappers:  []domain.TaxWrapper{domain.WrapperISA},
		StartDate: s.StartDate,
	}}

	_, ctx := runRulesMonth(s)

	// Candidate £10,000 trimmed to the £4,000 headroom, one warning emitted.
	assert.Equal(t, int64(400000), ctx.Balances[3])
	assert.Equal(t, int64(1100000), ctx.Balances[1])
	require.Len(t, ctx.Warnings, 1)
	assert.Equal(t, "rule", ctx.Warnings[0].SourceType)
	require.Len(t, ctx.RuleLogs, 1)
	assert.Contains(t, ctx.RuleLogs[0].Reason, "Trimmed")
}

func TestProcessRulesHeadroomExhausted(t *testing.T) {
	isa := int64(3)
	s := rulesScenario(domain.AutomationRule{
		ID: 1, Name: "ISA sweep", RuleType: domain.RuleSweep,
		SourceAccountID: 1, TargetAccountID: &isa,
		TriggerValue: 500000, Cadence: domain.CadenceMonthly,
	})
	s.TaxLimits = []domain.TaxLimit{{
		ID: 1, Name: "ISA allowance", Amount: 100000,
		Wrappers:  []domain.TaxWrapper{domain.WrapperISA},
		StartDate: s.StartDate,
	}}

	e := NewEngine()
	ctx := newContext(s)
	ctx.resetFlows(s)
	ctx.MonthStart = monthAnchor(s.StartDate)
	trackContribution(s, ctx, 3, 100000)

	e.processRules(s, ctx)

	assert.Equal(t, int64(1500000), ctx.Balances[1], "nothing moves when headroom is zero")
	require.Len(t, ctx.Warnings, 1)
	assert.Empty(t, ctx.RuleLogs)
}

func TestProcessRulesRSUSourceSkipped(t *testing.T) {
	target := int64(2)
	s := rulesScenario(domain.AutomationRule{
		ID: 1, Name: "Bad source", RuleType: domain.RuleSweep,
		SourceAccountID: 5, TargetAccountID: &target,
		TriggerValue: 0, Cadence: domain.CadenceMonthly,
	})
	s.Accounts = append(s.Accounts, domain.Account{
		ID: 5, Name: "Grant", AccountType: domain.AccountRSUGrant, StartingBalance: 10000,
	})

	_, ctx := runRulesMonth(s)
	assert.Empty(t, ctx.RuleLogs)
	assert.Equal(t, int64(10000), ctx.Balances[5])
}

func TestMortgageSmartAllowanceWindow(t *testing.T) {
	mortgage := int64(4)
	percent := int64(10)
	s := rulesScenario(domain.AutomationRule{
		ID: 1, Name: "Overpay", RuleType: domain.RuleMortgageSmart,
		SourceAccountID: 1, TargetAccountID: &mortgage,
		TriggerValue: 100000, TransferValue: &percent,
		Cadence: domain.CadenceMonthly,
	})

	e := NewEngine()
	ctx := newContext(s)
	ctx.MonthStart = monthAnchor(s.StartDate) // January: anchor month
	ctx.resetFlows(s)
	e.processRules(s, ctx)

	// Debt £100,000, 10% allowance = £10,000 spread over 12 months.
	window := ctx.MortgageState[1]
	require.NotNil(t, window)
	assert.Equal(t, int64(1000000), window.Allowance)
	slice := window.Paid
	assert.Equal(t, int64(1000000/12), slice)

	assert.Equal(t, int64(1500000)-slice, ctx.Balances[1])
	assert.Equal(t, int64(-10000000)+slice, ctx.Balances[4])
	assert.Equal(t, slice, ctx.Flows[4].MortgageRepaymentsIn)

	// The window rolls over the following January and reports a stat.
	for i := 1; i <= 12; i++ {
		ctx.MonthStart = addMonths(s.StartDate, i)
		ctx.resetFlows(s)
		ctx.Balances[1] = 1500000 // keep the source funded
		e.processRules(s, ctx)
	}
	require.NotEmpty(t, ctx.MortgageStats)
	stat := ctx.MortgageStats[0]
	assert.Equal(t, 2024, stat.YearStart)
	assert.Equal(t, int64(1), stat.RuleID)
	assert.True(t, stat.Allowance.Sub(stat.Paid).Equal(stat.Headroom))
}

func TestProcessRulesAnnualAnchorsToJanuary(t *testing.T) {
	target := int64(2)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := rulesScenario(domain.AutomationRule{
		ID: 1, Name: "Annual sweep", RuleType: domain.RuleSweep,
		SourceAccountID: 1, TargetAccountID: &target,
		TriggerValue: 1000000, Cadence: domain.CadenceAnnually,
		StartDate: &start,
	})

	e := NewEngine()
	ctx := newContext(s)
	ctx.resetFlows(s)

	// The rule's own start month does not fire it.
	ctx.MonthStart = start
	e.processRules(s, ctx)
	assert.Empty(t, ctx.RuleLogs)

	// The following January does.
	ctx.MonthStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	e.processRules(s, ctx)
	assert.Len(t, ctx.RuleLogs, 1)
}
