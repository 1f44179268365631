package engine

import (
	"math"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// processInterest applies monthly interest or growth to every account except
// Mortgages, which accrue inside the mortgage processor alongside their
// payments, and RSU balances, which are unit counts whose price growth
// happens at valuation. Asset accounts use the geometric twelfth of the
// annual rate, (1+r/100)^(1/12)-1, so a 5% account compounds to exactly 5%
// over a year of months. Loan debt is charged at r/12, the same convention as
// mortgage interest.
//
// Interest on unwrapped accounts is taxable: the gross is split evenly
// across the account's owners and each owner is taxed against their own
// Personal Savings Allowance and year-to-date interest. Property counts as
// capital appreciation rather than savings income, so it grows untaxed.
func (e *Engine) processInterest(s *domain.Scenario, ctx *Context) {
	for i := range s.Accounts {
		acc := &s.Accounts[i]
		switch acc.AccountType {
		case domain.AccountMortgage, domain.AccountRSUGrant:
			continue
		}
		if acc.InterestRate == 0 {
			continue
		}
		balance := ctx.Balances[acc.ID]
		if balance == 0 {
			continue
		}

		if acc.AccountType == domain.AccountLoan {
			if balance < 0 {
				interest := int64(math.Round(float64(-balance) * acc.InterestRate / 100 / 12))
				ctx.Balances[acc.ID] -= interest
				ctx.flow(acc.ID).Interest -= interest
			}
			continue
		}

		monthlyFactor := math.Pow(1+acc.InterestRate/100, 1.0/12) - 1
		gross := int64(math.Round(float64(balance) * monthlyFactor))
		if gross == 0 {
			continue
		}

		taxable := !acc.TaxWrapper.IsWrapped() &&
			acc.AccountType != domain.AccountProperty &&
			acc.AccountType != domain.AccountMainResidence

		var tax int64
		if gross > 0 && taxable && len(acc.OwnerIDs) > 0 {
			perOwner := gross / int64(len(acc.OwnerIDs))
			for _, ownerID := range acc.OwnerIDs {
				earnings := ctx.earnings(ownerID)
				prior := ctx.YTDInterest[ownerID]
				tax += e.Tax.SavingsTax(perOwner, earnings.Taxable+prior, prior)
				ctx.YTDInterest[ownerID] += perOwner
			}
		}

		net := gross - tax
		ctx.Balances[acc.ID] += net

		flow := ctx.flow(acc.ID)
		if acc.AccountType == domain.AccountCash {
			flow.Interest += gross
		} else {
			flow.Growth += gross
		}
		flow.Tax += tax
	}
}
