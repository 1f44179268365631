package engine

import (
	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// processCosts debits every cost firing this month. No balance floor is
// enforced here; overdrafts surface as end-of-month warnings or are filled by
// decumulation.
func (e *Engine) processCosts(s *domain.Scenario, ctx *Context) {
	seen := make(map[int64]bool)
	for i := range s.Costs {
		cost := &s.Costs[i]
		if seen[cost.ID] {
			continue
		}
		seen[cost.ID] = true

		if _, ok := ctx.Balances[cost.AccountID]; !ok {
			continue
		}
		if cost.StartDate.IsZero() {
			continue
		}
		if !itemActive(cost.StartDate, cost.EndDate, ctx.MonthStart) {
			continue
		}
		if !cadenceFires(cost.Cadence, cost.StartDate, ctx.MonthStart, false) {
			continue
		}

		value := cost.Value
		if target := s.Account(cost.AccountID); target != nil && cost.Currency != "" {
			value = convertCurrency(value, cost.Currency, target.Currency, s.FXRate())
		}

		ctx.Balances[cost.AccountID] -= value
		ctx.flow(cost.AccountID).Costs += value
	}
}
