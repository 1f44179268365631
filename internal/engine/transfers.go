package engine

import (
	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// disposalCGT computes the book-cost consumption and total CGT for a
// withdrawal from an account. The gain is split evenly across the account's
// owners and each share is taxed at that owner's marginal rate against their
// own year-to-date gains and earnings, which are updated in place.
func (e *Engine) disposalCGT(s *domain.Scenario, ctx *Context, acc *domain.Account, withdrawal int64) (costPortion, cgt int64) {
	costPortion, gain := disposalImpact(withdrawal, ctx.Balances[acc.ID], ctx.BookCosts[acc.ID], acc.AccountType, acc.TaxWrapper)
	if gain <= 0 || len(acc.OwnerIDs) == 0 {
		return costPortion, 0
	}
	gainPerOwner := gain / int64(len(acc.OwnerIDs))
	var total int64
	for _, ownerID := range acc.OwnerIDs {
		earnings := ctx.ownerTaxable(ownerID)
		total += e.Tax.CapitalGainsTax(gainPerOwner, ctx.YTDGains[ownerID], earnings)
		ctx.YTDGains[ownerID] += gainPerOwner
	}
	return costPortion, total
}

// processTransfers executes every scheduled transfer firing this month. The
// source side pays CGT on disposal; the target receives value minus CGT and
// is checked (but never blocked) against contribution headroom.
func (e *Engine) processTransfers(s *domain.Scenario, ctx *Context) {
	seen := make(map[int64]bool)
	for i := range s.Transfers {
		transfer := &s.Transfers[i]
		if seen[transfer.ID] {
			continue
		}
		seen[transfer.ID] = true

		if !itemActive(transfer.StartDate, transfer.EndDate, ctx.MonthStart) {
			continue
		}
		from := s.Account(transfer.FromAccountID)
		to := s.Account(transfer.ToAccountID)
		if from == nil || to == nil {
			continue
		}
		if !cadenceFires(transfer.Cadence, transfer.StartDate, ctx.MonthStart, false) {
			continue
		}

		value := convertCurrency(transfer.Value, from.Currency, to.Currency, s.FXRate())

		if transfer.ShowOnChart {
			ctx.annotate(transfer.Name, "transaction")
		}

		if contributionHeadroom(s, ctx, to.ID) < value {
			ctx.warn(to.ID, "Tax Limit: Transfer exceeds allowance.", "transfer", transfer.ID)
		}

		costPortion, cgt := e.disposalCGT(s, ctx, from, value)

		ctx.Balances[from.ID] -= value
		ctx.BookCosts[from.ID] -= costPortion
		fromFlow := ctx.flow(from.ID)
		fromFlow.TransfersOut += value
		fromFlow.CGT += cgt

		netReceived := value - cgt
		ctx.Balances[to.ID] += netReceived
		ctx.BookCosts[to.ID] += netReceived
		ctx.flow(to.ID).TransfersIn += netReceived
		trackContribution(s, ctx, to.ID, netReceived)
	}
}
