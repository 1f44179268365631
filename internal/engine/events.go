package engine

import (
	"fmt"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// processEvents applies one-off events whose date falls inside
// [month_start, next_month_start) and on or after the scenario start.
// income_expense events credit (positive value) or debit (negative value) a
// single account; transfer events move money between two accounts with CGT
// on the source disposal, exactly like scheduled transfers.
func (e *Engine) processEvents(s *domain.Scenario, ctx *Context) {
	nextMonth := addMonths(ctx.MonthStart, 1)

	seen := make(map[int64]bool)
	for i := range s.FinancialEvents {
		event := &s.FinancialEvents[i]
		if seen[event.ID] {
			continue
		}
		seen[event.ID] = true

		if event.Date.Before(ctx.MonthStart) || !event.Date.Before(nextMonth) {
			continue
		}
		if event.Date.Before(s.StartDate) {
			continue
		}

		if event.ShowOnChart {
			ctx.annotate(event.Name, "transaction")
		}

		switch event.EventType {
		case domain.EventIncomeExpense:
			e.applyIncomeExpenseEvent(s, ctx, event)
		case domain.EventTransfer:
			e.applyTransferEvent(s, ctx, event)
		}
	}
}

func (e *Engine) applyIncomeExpenseEvent(s *domain.Scenario, ctx *Context, event *domain.FinancialEvent) {
	accountID := event.ToAccountID
	if accountID == nil {
		accountID = event.FromAccountID
	}
	if accountID == nil {
		return
	}
	acc := s.Account(*accountID)
	if acc == nil {
		return
	}
	if _, ok := ctx.Balances[acc.ID]; !ok {
		return
	}

	value := event.Value
	if event.Currency != "" {
		value = convertCurrency(value, event.Currency, acc.Currency, s.FXRate())
	}

	if value > 0 {
		if contributionHeadroom(s, ctx, acc.ID) < value {
			ctx.warn(acc.ID,
				fmt.Sprintf("Tax Limit: Event '%s' exceeds allowance.", event.Name),
				"event", event.ID)
		}
		ctx.BookCosts[acc.ID] += value
		trackContribution(s, ctx, acc.ID, value)
	}
	ctx.Balances[acc.ID] += value
	ctx.flow(acc.ID).Events += value
}

func (e *Engine) applyTransferEvent(s *domain.Scenario, ctx *Context, event *domain.FinancialEvent) {
	if event.FromAccountID == nil || event.ToAccountID == nil {
		return
	}
	from := s.Account(*event.FromAccountID)
	to := s.Account(*event.ToAccountID)
	if from == nil || to == nil {
		return
	}

	value := convertCurrency(event.Value, from.Currency, to.Currency, s.FXRate())
	if value <= 0 {
		return
	}

	if contributionHeadroom(s, ctx, to.ID) < value {
		ctx.warn(to.ID,
			fmt.Sprintf("Tax Limit: Event '%s' exceeds allowance.", event.Name),
			"event", event.ID)
	}

	costPortion, cgt := e.disposalCGT(s, ctx, from, value)

	ctx.Balances[from.ID] -= value
	ctx.BookCosts[from.ID] -= costPortion
	fromFlow := ctx.flow(from.ID)
	fromFlow.Events -= value
	fromFlow.CGT += cgt

	netReceived := value - cgt
	ctx.Balances[to.ID] += netReceived
	ctx.BookCosts[to.ID] += netReceived
	ctx.flow(to.ID).Events += netReceived
	trackContribution(s, ctx, to.ID, netReceived)
}
