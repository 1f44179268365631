package engine

import (
	"fmt"
	"math"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// Unit convention: an RSU account's balance is unvested units x100, the same
// minor-unit scale as money. Vesting math, the balance decrement and the
// valuation below all share that scale.

// cumulativeVestedPercent walks the tranche schedule and returns the target
// cumulative vested percentage after monthsElapsed. Each tranche's percent is
// earned linearly across the 12 months ending Year*12 months after grant.
func cumulativeVestedPercent(schedule []domain.VestingTranche, monthsElapsed int) float64 {
	var cum float64
	for _, tranche := range schedule {
		if tranche.Year <= 0 {
			continue
		}
		start := (tranche.Year - 1) * 12
		frac := (float64(monthsElapsed) - float64(start)) / 12.0
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		cum += tranche.Percent * frac
	}
	if cum > 100 {
		cum = 100
	}
	return cum
}

// processRSUVesting vests units so each grant's remaining balance tracks its
// schedule's cumulative target. Vested units are valued at the grown unit
// price, taxed payroll-style (income tax plus NI on the full value), and the
// net proceeds are credited to the grant's target account.
func (e *Engine) processRSUVesting(s *domain.Scenario, ctx *Context) {
	for i := range s.Accounts {
		rsu := &s.Accounts[i]
		if rsu.AccountType != domain.AccountRSUGrant {
			continue
		}
		if rsu.GrantDate == nil || len(rsu.VestingSchedule) == 0 {
			continue
		}

		// Quarterly grants release only on quarter months; the cumulative
		// target makes the skipped months catch up automatically.
		if rsu.VestingCadence == domain.CadenceQuarterly {
			switch ctx.MonthStart.Month() {
			case 1, 4, 7, 10:
			default:
				continue
			}
		}

		monthsElapsed := monthsBetween(*rsu.GrantDate, ctx.MonthStart)
		if monthsElapsed <= 0 {
			continue
		}

		currentUnits := ctx.Balances[rsu.ID]
		if currentUnits <= 0 {
			continue
		}

		cum := cumulativeVestedPercent(rsu.VestingSchedule, monthsElapsed)
		targetRemaining := int64(math.Round(float64(rsu.StartingBalance) * (1 - cum/100)))
		unitsToVest := currentUnits - targetRemaining
		if unitsToVest <= 0 {
			continue
		}
		if unitsToVest > currentUnits {
			unitsToVest = currentUnits
		}

		price := rsuUnitPrice(rsu, monthsElapsed)
		grossValue := int64(math.Round(float64(unitsToVest) * price / 100.0))
		if rsu.Currency == domain.CurrencyUSD {
			grossValue = int64(math.Round(float64(grossValue) / s.FXRate()))
		}

		var taxDeducted int64
		if grossValue > 0 && len(rsu.OwnerIDs) > 0 {
			earnings := ctx.earnings(rsu.OwnerIDs[0])
			taxDeducted = e.Tax.PayrollDeductions(grossValue, grossValue, earnings.Taxable, earnings.NIable)
			earnings.Taxable += grossValue
			earnings.NIable += grossValue
		} else if grossValue > 0 {
			taxDeducted = e.Tax.PayrollDeductions(grossValue, grossValue, 0, 0)
		}

		ctx.Balances[rsu.ID] -= unitsToVest

		if rsu.RSUTargetAccountID == nil {
			continue
		}
		targetID := *rsu.RSUTargetAccountID
		if _, ok := ctx.Balances[targetID]; !ok {
			continue
		}

		net := grossValue - taxDeducted
		if contributionHeadroom(s, ctx, targetID) < net {
			ctx.warn(targetID,
				fmt.Sprintf("Tax Limit: RSU vest '%s' exceeds allowance.", rsu.Name),
				"rsu_vest", rsu.ID)
		}

		ctx.Balances[targetID] += net
		ctx.BookCosts[targetID] += net
		f := ctx.flow(targetID)
		f.Income += grossValue
		f.Tax += taxDeducted
		trackContribution(s, ctx, targetID, net)
	}
}
