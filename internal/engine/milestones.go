package engine

import (
	"fmt"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// detectMilestones compares start-of-month balances against the
// post-processor balances and emits timeline annotations for the crossings a
// user cares about: a debt reaching zero, an RSU grant fully vesting, liquid
// assets overtaking total debt, an owner hitting retirement age, and the
// liquid position going negative.
func (e *Engine) detectMilestones(s *domain.Scenario, ctx *Context) {
	prev := func(acc *domain.Account) int64 {
		if bal, ok := ctx.PrevBalances[acc.ID]; ok {
			return bal
		}
		return acc.StartingBalance
	}

	var currLiquid, prevLiquid, currSigned, prevSigned, currDebt, prevDebt int64
	for i := range s.Accounts {
		acc := &s.Accounts[i]
		currBal := ctx.Balances[acc.ID]
		prevBal := prev(acc)

		switch acc.AccountType {
		case domain.AccountMortgage, domain.AccountLoan:
			if prevBal < 0 && currBal >= 0 {
				ctx.annotate(fmt.Sprintf("Paid Off: %s", acc.Name), "milestone")
			}
			if currBal < 0 {
				currDebt += -currBal
			}
			if prevBal < 0 {
				prevDebt += -prevBal
			}
		case domain.AccountRSUGrant:
			if prevBal > 0 && currBal <= 0 {
				ctx.annotate(fmt.Sprintf("Vested: %s", acc.Name), "milestone")
			}
		case domain.AccountCash, domain.AccountInvestment:
			// Pension-wrapped holdings are locked away, not liquid.
			if acc.TaxWrapper == domain.WrapperPension {
				continue
			}
			currSigned += currBal
			prevSigned += prevBal
			if currBal > 0 {
				currLiquid += currBal
			}
			if prevBal > 0 {
				prevLiquid += prevBal
			}
		}
	}

	// Only meaningful when there was debt to clear.
	if prevDebt > 0 && prevLiquid < prevDebt && currLiquid >= currDebt {
		ctx.annotate("Liquid assets exceed liabilities", "milestone")
	}

	if prevSigned >= 0 && currSigned < 0 {
		ctx.annotate("Insolvency Risk", "milestone")
	}

	for i := range s.Owners {
		owner := &s.Owners[i]
		if owner.BirthDate == nil || owner.RetirementAge <= 0 {
			continue
		}
		birthday := addMonths(monthAnchor(*owner.BirthDate), owner.RetirementAge*12)
		if sameMonth(birthday, ctx.MonthStart) {
			ctx.annotate(fmt.Sprintf("Retirement: %s", owner.Name), "milestone")
		}
	}
}
