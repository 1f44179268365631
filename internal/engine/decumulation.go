package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

const (
	// pensionAccessAge gates drawdown from Pension candidates.
	pensionAccessAge = 55

	// deficitCeiling: a single-account shortfall above this is skipped with a
	// warning rather than drained from the portfolio.
	deficitCeiling = int64(100_000_000) // £1,000,000

	// grossUpIterations bounds the pension net->gross solver.
	grossUpIterations = 20
)

// candidate drain order: taxable investments first, then ISA, then pension.
const (
	drainTaxable = iota
	drainISA
	drainPension
)

// processDecumulation fills cash shortfalls by selling other assets when an
// enabled strategy covers the current month. Candidates are drained in a
// fixed priority order: unwrapped Investment/GIA (paying CGT), then ISA
// (tax-free), then Pension. Pension drains only when the owner has reached the
// access age, and are grossed up so the net after the 25% tax-free portion and
// marginal income tax on the rest matches what the cash account needs.
func (e *Engine) processDecumulation(s *domain.Scenario, ctx *Context) {
	strategy := activeStrategy(s, ctx)
	if strategy == nil {
		return
	}

	type deficit struct {
		acc  *domain.Account
		need int64
	}
	var deficits []deficit
	for i := range s.Accounts {
		acc := &s.Accounts[i]
		if acc.AccountType != domain.AccountCash {
			continue
		}
		bal := ctx.Balances[acc.ID]
		if bal >= acc.MinBalance {
			continue
		}
		need := acc.MinBalance - bal
		if need > deficitCeiling {
			ctx.warn(acc.ID,
				fmt.Sprintf("Decumulation: shortfall of %s on %s is too large to auto-fill.", formatPence(need), acc.Name),
				"decumulation", strategy.ID)
			continue
		}
		deficits = append(deficits, deficit{acc: acc, need: need})
	}
	if len(deficits) == 0 {
		return
	}

	candidates := e.drainCandidates(s, ctx)

	for _, d := range deficits {
		need := d.need
		for _, cand := range candidates {
			if need <= 0 {
				break
			}
			if ctx.Balances[cand.acc.ID] <= 0 {
				continue
			}
			var filled int64
			if cand.order == drainPension {
				filled = e.drainPension(s, ctx, cand.acc, d.acc, need)
			} else {
				filled = e.drainInvestment(s, ctx, cand.acc, d.acc, need)
			}
			need -= filled
		}
	}
}

func activeStrategy(s *domain.Scenario, ctx *Context) *domain.DecumulationStrategy {
	for i := range s.DecumulationStrategies {
		strat := &s.DecumulationStrategies[i]
		if !strat.Enabled {
			continue
		}
		if strat.StartDate != nil && ctx.MonthStart.Before(monthAnchor(*strat.StartDate)) {
			continue
		}
		if strat.EndDate != nil && ctx.MonthStart.After(*strat.EndDate) {
			continue
		}
		return strat
	}
	return nil
}

type drainCandidate struct {
	acc   *domain.Account
	order int
}

// drainCandidates returns positive-balance source accounts in drain order.
// Pension candidates whose primary owner has not reached the access age (or
// has no birth date on file) are excluded outright, never partially used.
func (e *Engine) drainCandidates(s *domain.Scenario, ctx *Context) []drainCandidate {
	var out []drainCandidate
	for i := range s.Accounts {
		acc := &s.Accounts[i]
		if ctx.Balances[acc.ID] <= 0 {
			continue
		}
		switch {
		case acc.TaxWrapper == domain.WrapperGIA,
			acc.AccountType == domain.AccountInvestment && !acc.TaxWrapper.IsWrapped():
			out = append(out, drainCandidate{acc: acc, order: drainTaxable})
		case acc.TaxWrapper == domain.WrapperISA || acc.TaxWrapper == domain.WrapperLISA:
			out = append(out, drainCandidate{acc: acc, order: drainISA})
		case acc.TaxWrapper == domain.WrapperPension || acc.AccountType == domain.AccountPension:
			if e.pensionAccessible(s, ctx, acc) {
				out = append(out, drainCandidate{acc: acc, order: drainPension})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].order < out[j].order })
	return out
}

func (e *Engine) pensionAccessible(s *domain.Scenario, ctx *Context, acc *domain.Account) bool {
	if len(acc.OwnerIDs) == 0 {
		return false
	}
	owner := s.Owner(acc.OwnerIDs[0])
	if owner == nil || owner.BirthDate == nil {
		return false
	}
	return monthsBetween(*owner.BirthDate, ctx.MonthStart) >= pensionAccessAge*12
}

// drainInvestment moves up to `need` net pence from an ISA/GIA candidate into
// the deficit account, paying CGT on taxable disposals. Returns the net
// amount delivered.
func (e *Engine) drainInvestment(s *domain.Scenario, ctx *Context, source, target *domain.Account, need int64) int64 {
	gross := need
	if bal := ctx.Balances[source.ID]; gross > bal {
		gross = bal
	}
	if gross <= 0 {
		return 0
	}

	costPortion, cgt := e.disposalCGT(s, ctx, source, gross)

	ctx.Balances[source.ID] -= gross
	ctx.BookCosts[source.ID] -= costPortion
	sourceFlow := ctx.flow(source.ID)
	sourceFlow.TransfersOut += gross
	sourceFlow.CGT += cgt

	net := gross - cgt
	ctx.Balances[target.ID] += net
	ctx.BookCosts[target.ID] += net
	ctx.flow(target.ID).TransfersIn += net

	e.logDrawdown(ctx, source, target, gross, "Drawdown")
	return net
}

// drainPension withdraws the gross amount whose net (25% tax-free plus the
// taxed remaining 75%) covers `need`. UK bands are piecewise-linear, so a
// few fixed-point iterations converge to within a penny; if they don't, or
// the pot is too small, it falls back to best effort at the available
// balance. Returns the net amount delivered.
func (e *Engine) drainPension(s *domain.Scenario, ctx *Context, source, target *domain.Account, need int64) int64 {
	if len(source.OwnerIDs) == 0 {
		return 0
	}
	ownerID := source.OwnerIDs[0]
	earnings := ctx.earnings(ownerID)
	balance := ctx.Balances[source.ID]

	netOf := func(gross int64) (net, tax int64) {
		taxable := gross * 3 / 4
		tax = e.Tax.PayrollDeductions(taxable, 0, earnings.Taxable, earnings.NIable)
		return gross - tax, tax
	}

	gross := need
	var tax int64
	for i := 0; i < grossUpIterations; i++ {
		if gross > balance {
			gross = balance
			break
		}
		var net int64
		net, tax = netOf(gross)
		diff := need - net
		if diff >= -1 && diff <= 1 {
			break
		}
		gross += diff
	}
	if gross > balance {
		gross = balance
	}
	if gross <= 0 {
		return 0
	}
	net, tax := netOf(gross)
	if net <= 0 {
		return 0
	}

	taxable := gross * 3 / 4
	earnings.Taxable += taxable

	ctx.Balances[source.ID] -= gross
	sourceFlow := ctx.flow(source.ID)
	sourceFlow.TransfersOut += gross
	sourceFlow.Tax += tax

	ctx.Balances[target.ID] += net
	ctx.BookCosts[target.ID] += net
	ctx.flow(target.ID).TransfersIn += net

	e.logDrawdown(ctx, source, target, gross, "Pension Drawdown")
	return net
}

func (e *Engine) logDrawdown(ctx *Context, source, target *domain.Account, gross int64, reason string) {
	ctx.RuleLogs = append(ctx.RuleLogs, domain.RuleLog{
		Date:          ctx.MonthStart,
		RuleType:      "decumulation",
		Action:        fmt.Sprintf("Sold %s", formatPence(gross)),
		Amount:        decimal.New(gross, -2),
		SourceAccount: source.Name,
		TargetAccount: target.Name,
		Reason:        reason,
	})
}
