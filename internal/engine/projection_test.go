package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

func simpleScenario() *domain.Scenario {
	return &domain.Scenario{
		Name:      "simple",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Owners: []domain.Owner{{
			ID: 1, Name: "Alex",
			IncomeSources: []domain.IncomeSource{{
				ID: 1, AccountID: 1, Name: "Salary",
				NetValue: 50000, Cadence: domain.CadenceMonthly,
				StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			}},
		}},
		Accounts: []domain.Account{
			{ID: 1, Name: "Current", AccountType: domain.AccountCash, StartingBalance: 100000, OwnerIDs: []int64{1}},
		},
		Costs: []domain.Cost{{
			ID: 1, AccountID: 1, Name: "Rent",
			Value: 20000, Cadence: domain.CadenceMonthly,
			StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
}

func TestRunProjectionEndToEnd(t *testing.T) {
	e := NewEngine()
	result, err := e.RunProjection(simpleScenario(), 3, nil)
	require.NoError(t, err)

	require.Len(t, result.DataPoints, 4, "months+1 points including the opening snapshot")

	assert.True(t, result.DataPoints[0].Balance.Equal(decimal.NewFromFloat(1000.00)),
		"opening balance £1,000, got %s", result.DataPoints[0].Balance)
	assert.True(t, result.DataPoints[1].Balance.Equal(decimal.NewFromFloat(1300.00)),
		"after one month of +£500/-£200, got %s", result.DataPoints[1].Balance)
	assert.True(t, result.DataPoints[3].Balance.Equal(decimal.NewFromFloat(1900.00)))

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), result.DataPoints[0].Date)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), result.DataPoints[1].Date,
		"monthly points are dated at the end of the month")

	flows := result.DataPoints[1].Flows[1]
	assert.True(t, flows.Income.Equal(decimal.NewFromFloat(500.00)))
	assert.True(t, flows.Costs.Equal(decimal.NewFromFloat(200.00)))
}

func TestRunProjectionValidation(t *testing.T) {
	e := NewEngine()

	_, err := e.RunProjection(nil, 12, nil)
	assert.Error(t, err)

	_, err = e.RunProjection(simpleScenario(), -1, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "months")

	s := simpleScenario()
	s.StartDate = time.Time{}
	_, err = e.RunProjection(s, 12, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start date")
}

func TestRunProjectionDeterministic(t *testing.T) {
	e := NewEngine()
	s := simpleScenario()

	first, err := e.RunProjection(s, 24, nil)
	require.NoError(t, err)
	second, err := e.RunProjection(s, 24, nil)
	require.NoError(t, err)

	require.Equal(t, len(first.DataPoints), len(second.DataPoints))
	for i := range first.DataPoints {
		assert.True(t, first.DataPoints[i].Balance.Equal(second.DataPoints[i].Balance),
			"month %d diverged: each run must build a fresh context", i)
	}
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestRunProjectionTransferConservation(t *testing.T) {
	s := &domain.Scenario{
		Name:      "conservation",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Accounts: []domain.Account{
			{ID: 1, Name: "A", AccountType: domain.AccountCash, StartingBalance: 1000000},
			{ID: 2, Name: "B", AccountType: domain.AccountCash, StartingBalance: 500000},
		},
		Transfers: []domain.Transfer{{
			ID: 1, FromAccountID: 1, ToAccountID: 2, Name: "Shuffle",
			Value: 100000, Cadence: domain.CadenceMonthly,
			StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
	}

	e := NewEngine()
	result, err := e.RunProjection(s, 6, nil)
	require.NoError(t, err)

	total := decimal.NewFromFloat(15000.00)
	for i, dp := range result.DataPoints {
		assert.True(t, dp.Balance.Equal(total),
			"pure cash transfers conserve the total (month %d: %s)", i, dp.Balance)
	}
}

func TestRunProjectionTaxYearReset(t *testing.T) {
	s := simpleScenario()
	// A pre-tax salary big enough to pay tax within one tax year.
	s.Owners[0].IncomeSources[0].NetValue = 500000 // £5,000/month gross
	s.Owners[0].IncomeSources[0].IsPreTax = true
	s.Accounts[0].StartingBalance = 0
	s.Costs = nil

	e := NewEngine()
	result, err := e.RunProjection(s, 24, nil)
	require.NoError(t, err)

	taxIn := func(month int) decimal.Decimal {
		return result.DataPoints[month].Flows[1].Tax
	}

	// Tax rises through the year as YTD income climbs the bands, then the
	// April reset drops the marginal rate back to the start-of-year level.
	assert.True(t, taxIn(12).GreaterThan(taxIn(1)),
		"late-year marginal tax (%s) should exceed first-month tax (%s)", taxIn(12), taxIn(1))
	assert.True(t, taxIn(12).GreaterThan(decimal.Zero))
	assert.True(t, taxIn(24).Equal(taxIn(12)),
		"December one tax year on sees identical marginal tax after the YTD reset")
}

func TestRunProjectionOverridesDoNotMutateCaller(t *testing.T) {
	s := simpleScenario()
	e := NewEngine()

	overridden, err := e.RunProjection(s, 3, []domain.Override{
		{Type: "cost", ID: 1, Field: "value", Value: int64(40000)},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(20000), s.Costs[0].Value, "caller's scenario untouched")
	assert.True(t, overridden.DataPoints[1].Balance.Equal(decimal.NewFromFloat(1100.00)),
		"override doubled the cost: 1000 + 500 - 400")

	baseline, err := e.RunProjection(s, 3, nil)
	require.NoError(t, err)
	assert.True(t, baseline.DataPoints[1].Balance.Equal(decimal.NewFromFloat(1300.00)))
}

func TestRunProjectionOverdraftWarningDeduped(t *testing.T) {
	s := simpleScenario()
	s.Owners[0].IncomeSources = nil
	s.Accounts[0].StartingBalance = 10000 // £100, drained by month 1

	e := NewEngine()
	result, err := e.RunProjection(s, 6, nil)
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1, "one overdraft warning per account per year")
	assert.Equal(t, "balance", result.Warnings[0].SourceType)
	assert.Equal(t, int64(1), result.Warnings[0].AccountID)
	assert.Contains(t, result.Warnings[0].Message, "overdrawn")
}

func TestRunProjectionAnnotationsMerged(t *testing.T) {
	s := simpleScenario()
	s.ChartAnnotations = []domain.ChartAnnotation{{
		ID: 1, Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Label: "House move", AnnotationType: "user",
	}}
	birth := time.Date(1964, 2, 1, 0, 0, 0, 0, time.UTC)
	s.Owners[0].BirthDate = &birth
	s.Owners[0].RetirementAge = 60

	e := NewEngine()
	result, err := e.RunProjection(s, 3, nil)
	require.NoError(t, err)

	var labels []string
	for _, ann := range result.Annotations {
		labels = append(labels, ann.Label)
	}
	assert.Contains(t, labels, "House move")
	assert.Contains(t, labels, "Retirement: Alex", "owner turns 60 in Feb 2024")
}

func TestRunProjectionMilestonePaidOff(t *testing.T) {
	payer := int64(1)
	s := &domain.Scenario{
		Name:      "payoff",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Accounts: []domain.Account{
			{ID: 1, Name: "Current", AccountType: domain.AccountCash, StartingBalance: 10000000},
			{
				ID: 2, Name: "Car Loan", AccountType: domain.AccountMortgage,
				StartingBalance: -50000, AmortisationYears: 1, InterestRate: 0,
				PaymentFromAccountID: &payer,
				MortgageStartDate:    timePtr(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)),
			},
		},
	}

	e := NewEngine()
	result, err := e.RunProjection(s, 3, nil)
	require.NoError(t, err)

	var labels []string
	for _, ann := range result.Annotations {
		labels = append(labels, ann.Label)
	}
	assert.Contains(t, labels, "Paid Off: Car Loan")
}

func timePtr(t time.Time) *time.Time { return &t }
