package engine

import (
	"fmt"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// processIncome credits every income source firing this month. Pre-tax
// sources route salary sacrifice and employer pension contributions to their
// target account first, then pay marginal income tax and NI on the adjusted
// gross (benefits in kind count for tax but not NI). Post-tax sources credit
// as-is. Headroom breaches on the destination warn but never block.
func (e *Engine) processIncome(s *domain.Scenario, ctx *Context) {
	type ownedSource struct {
		src     *domain.IncomeSource
		ownerID int64
	}
	seen := make(map[int64]bool)
	var sources []ownedSource
	for i := range s.Owners {
		owner := &s.Owners[i]
		for j := range owner.IncomeSources {
			inc := &owner.IncomeSources[j]
			if seen[inc.ID] {
				continue
			}
			seen[inc.ID] = true
			ownerID := inc.OwnerID
			if ownerID == 0 {
				ownerID = owner.ID
			}
			sources = append(sources, ownedSource{src: inc, ownerID: ownerID})
		}
	}

	for _, os := range sources {
		inc := os.src
		if _, ok := ctx.Balances[inc.AccountID]; !ok {
			continue
		}
		if !itemActive(inc.StartDate, inc.EndDate, ctx.MonthStart) {
			continue
		}
		if !cadenceFires(inc.Cadence, inc.StartDate, ctx.MonthStart, false) {
			continue
		}

		earnings := ctx.earnings(os.ownerID)
		gross := inc.NetValue
		netToPay := gross
		var taxDeducted int64

		// Employer pension contributions ride alongside the salary into the
		// sacrifice target; they are not deducted from gross pay.
		if inc.EmployerPensionContribution > 0 && inc.SalarySacrificeAccountID != nil {
			target := *inc.SalarySacrificeAccountID
			if _, ok := ctx.Balances[target]; ok {
				amount := inc.EmployerPensionContribution
				ctx.Balances[target] += amount
				ctx.BookCosts[target] += amount
				f := ctx.flow(target)
				f.EmployerContribution += amount
				f.TransfersIn += amount
				trackContribution(s, ctx, target, amount)
			}
		}

		if inc.IsPreTax {
			sacrifice := inc.SalarySacrificeValue
			adjustedGross := gross - sacrifice
			if adjustedGross < 0 {
				adjustedGross = 0
			}
			if sacrifice > 0 && inc.SalarySacrificeAccountID != nil {
				target := *inc.SalarySacrificeAccountID
				if _, ok := ctx.Balances[target]; ok {
					ctx.Balances[target] += sacrifice
					ctx.BookCosts[target] += sacrifice
					ctx.flow(target).TransfersIn += sacrifice
					trackContribution(s, ctx, target, sacrifice)
				}
			}

			amountForTax := adjustedGross + inc.TaxableBenefitValue
			amountForNI := adjustedGross
			taxDeducted = e.Tax.PayrollDeductions(amountForTax, amountForNI, earnings.Taxable, earnings.NIable)
			earnings.Taxable += amountForTax
			earnings.NIable += amountForNI
			netToPay = adjustedGross - taxDeducted
		} else {
			earnings.Taxable += gross
			earnings.NIable += gross
		}

		finalCredit := netToPay
		if target := s.Account(inc.AccountID); target != nil && inc.Currency != "" {
			finalCredit = convertCurrency(netToPay, inc.Currency, target.Currency, s.FXRate())
		}

		if contributionHeadroom(s, ctx, inc.AccountID) < finalCredit {
			ctx.warn(inc.AccountID,
				fmt.Sprintf("Tax Limit: Income '%s' exceeds allowance.", inc.Name),
				"income", inc.ID)
		}

		ctx.Balances[inc.AccountID] += finalCredit
		ctx.BookCosts[inc.AccountID] += finalCredit // new principal, not a gain
		f := ctx.flow(inc.AccountID)
		f.Income += gross
		f.Tax += taxDeducted
		trackContribution(s, ctx, inc.AccountID, finalCredit)
	}
}
