package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// processRules evaluates automation rules in ascending priority order. Each
// rule computes a candidate amount, which is then clamped against the
// target's contribution headroom (zero-and-warn when exhausted, trim-and-warn
// when partial), charged CGT on the source disposal, executed, and logged.
func (e *Engine) processRules(s *domain.Scenario, ctx *Context) {
	seen := make(map[int64]bool)
	var rules []*domain.AutomationRule
	for i := range s.AutomationRules {
		r := &s.AutomationRules[i]
		if !seen[r.ID] {
			rules = append(rules, r)
			seen[r.ID] = true
		}
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })

	for _, rule := range rules {
		if rule.StartDate != nil && ctx.MonthStart.Before(monthAnchor(*rule.StartDate)) {
			continue
		}
		if rule.EndDate != nil && ctx.MonthStart.After(*rule.EndDate) {
			continue
		}
		start := ctx.MonthStart
		if rule.StartDate != nil {
			start = *rule.StartDate
		}
		// Annual rules anchor to January, unlike other periodic items.
		if !cadenceFires(rule.Cadence, start, ctx.MonthStart, true) {
			continue
		}

		sourceID := rule.SourceAccountID
		sourceBal, ok := ctx.Balances[sourceID]
		if !ok {
			continue
		}
		sourceAcc := s.Account(sourceID)
		if sourceAcc != nil && sourceAcc.AccountType == domain.AccountRSUGrant {
			continue // RSU accounts cannot be rule sources
		}

		var targetID int64
		hasTarget := rule.TargetAccountID != nil
		if hasTarget {
			targetID = *rule.TargetAccountID
		}

		amount, reason := e.ruleAmount(ctx, rule, sourceBal, targetID, hasTarget)

		// Headroom clamp on the target.
		if hasTarget && amount > 0 {
			headroom := contributionHeadroom(s, ctx, targetID)
			if headroom < headroomUnlimited {
				if headroom <= 0 {
					amount = 0
					reason = "Skipped: Tax Limit Reached"
					ctx.warn(targetID, fmt.Sprintf("Tax Limit: Rule '%s' skipped.", rule.Name), "rule", rule.ID)
				} else if amount > headroom {
					amount = headroom
					reason += " (Trimmed)"
					ctx.warn(targetID, fmt.Sprintf("Tax Limit: Rule '%s' trimmed.", rule.Name), "rule", rule.ID)
				}
			}
		}

		if amount <= 0 {
			continue
		}

		var cgt int64
		if sourceAcc != nil {
			var costPortion int64
			costPortion, cgt = e.disposalCGT(s, ctx, sourceAcc, amount)
			ctx.BookCosts[sourceID] -= costPortion
		}

		ctx.Balances[sourceID] -= amount
		sourceFlow := ctx.flow(sourceID)
		sourceFlow.TransfersOut += amount
		sourceFlow.CGT += cgt

		targetName := "External"
		if hasTarget {
			if _, ok := ctx.Balances[targetID]; ok {
				net := amount - cgt
				ctx.Balances[targetID] += net
				ctx.BookCosts[targetID] += net
				ctx.flow(targetID).TransfersIn += net
				trackContribution(s, ctx, targetID, net)
				if acc := s.Account(targetID); acc != nil {
					targetName = acc.Name
					if acc.AccountType == domain.AccountMortgage {
						ctx.flow(targetID).MortgageRepaymentsIn += net
					}
				}
			} else {
				sourceFlow.Events += amount
			}
		} else {
			sourceFlow.Events += amount
		}

		sourceName := "?"
		if sourceAcc != nil {
			sourceName = sourceAcc.Name
		}
		ctx.RuleLogs = append(ctx.RuleLogs, domain.RuleLog{
			Date:          ctx.MonthStart,
			RuleType:      string(rule.RuleType),
			Action:        fmt.Sprintf("Moved %s", formatPence(amount)),
			Amount:        decimal.New(amount, -2),
			SourceAccount: sourceName,
			TargetAccount: targetName,
			Reason:        reason,
		})
	}
}

// ruleAmount computes the candidate transfer for one rule before headroom and
// CGT adjustments.
func (e *Engine) ruleAmount(ctx *Context, rule *domain.AutomationRule, sourceBal int64, targetID int64, hasTarget bool) (int64, string) {
	targetBal := int64(0)
	if hasTarget {
		targetBal = ctx.Balances[targetID]
	}
	trigger := rule.TriggerValue

	switch rule.RuleType {
	case domain.RuleSweep:
		if sourceBal > trigger {
			return sourceBal - trigger, "Sweep"
		}
	case domain.RuleTopUp:
		if hasTarget && targetBal < trigger {
			deficit := trigger - targetBal
			if sourceBal <= 0 {
				return 0, "Top-Up"
			}
			if deficit > sourceBal {
				deficit = sourceBal
			}
			return deficit, "Top-Up"
		}
	case domain.RuleSmartTransfer:
		var fixed int64
		if rule.TransferValue != nil {
			fixed = *rule.TransferValue
		}
		if sourceBal >= trigger+fixed {
			return fixed, "Smart Transfer"
		}
		return 0, "Skipped: Low Funds"
	case domain.RuleMortgageSmart:
		if hasTarget {
			return e.mortgageSmartAmount(ctx, rule, sourceBal, targetID)
		}
	}
	return 0, ""
}

// mortgageSmartAmount computes this month's slice of a MortgageSmart rule's
// annual overpayment allowance. The allowance is a percentage of the mortgage
// balance, recomputed each year at the rule's anchor month; whatever remains
// is spread evenly over the months until the next anchor. The prior window is
// reported as a MortgageStat when the window rolls over.
func (e *Engine) mortgageSmartAmount(ctx *Context, rule *domain.AutomationRule, sourceBal, targetID int64) (int64, string) {
	mortgageBal, ok := ctx.Balances[targetID]
	if !ok || mortgageBal >= 0 {
		return 0, ""
	}
	debt := -mortgageBal

	percent := 10.0
	if rule.TransferValue != nil {
		percent = float64(*rule.TransferValue)
	}

	window, tracked := ctx.MortgageState[rule.ID]
	if !tracked {
		window = &overpayWindow{}
		ctx.MortgageState[rule.ID] = window
	}

	anchorMonth := time.January
	if rule.StartDate != nil {
		anchorMonth = rule.StartDate.Month()
	}

	if ctx.MonthStart.Month() == anchorMonth {
		if window.Allowance > 0 {
			ruleName := rule.Name
			if ruleName == "" {
				ruleName = "Overpayment Rule"
			}
			ctx.MortgageStats = append(ctx.MortgageStats, domain.MortgageStat{
				YearStart: ctx.MonthStart.Year() - 1,
				RuleID:    rule.ID,
				RuleName:  ruleName,
				Allowance: decimal.New(window.Allowance, -2),
				Paid:      decimal.New(window.Paid, -2),
				Headroom:  decimal.New(window.Allowance-window.Paid, -2),
			})
		}
		window.Allowance = int64(float64(debt) * percent / 100)
		window.Paid = 0
	}

	remaining := window.Allowance - window.Paid
	if remaining <= 0 {
		return 0, ""
	}

	monthsUntil := (int(anchorMonth) - int(ctx.MonthStart.Month())) % 12
	if monthsUntil <= 0 {
		monthsUntil += 12
	}
	slice := remaining / int64(monthsUntil)

	if sourceBal < rule.TriggerValue+slice {
		return 0, "Skipped: Low Funds"
	}
	if slice > debt {
		slice = debt
	}
	window.Paid += slice
	return slice, "Smart Smooth"
}
