package engine

import (
	"math"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// annuityPayment returns the level monthly payment that amortizes principal
// pence over the given number of months at an annual percentage rate, using
// the standard r/12 convention.
func annuityPayment(principal int64, annualRate float64, months int) int64 {
	if principal <= 0 || months <= 0 {
		return 0
	}
	if annualRate == 0 {
		return principal / int64(months)
	}
	r := annualRate / 100 / 12
	factor := math.Pow(1+r, float64(months))
	return int64(float64(principal) * r * factor / (factor - 1))
}

// processMortgages pays and accrues each mortgage. Inside the fixed-rate
// window the payment is the original loan's annuity at the fixed rate;
// outside it the payment re-amortizes the remaining balance over the
// remaining term every month. Payment first, then interest accrual on the
// post-payment balance; the order fixes the exact monthly numbers.
func (e *Engine) processMortgages(s *domain.Scenario, ctx *Context) {
	for i := range s.Accounts {
		mtg := &s.Accounts[i]
		if mtg.AccountType != domain.AccountMortgage {
			continue
		}
		balance := ctx.Balances[mtg.ID]
		if balance >= 0 {
			continue // paid off
		}

		rate := mtg.InterestRate
		inFixedWindow := false
		if mtg.MortgageStartDate != nil && mtg.FixedRatePeriodYears > 0 && mtg.FixedInterestRate != nil {
			fixedEnd := mtg.MortgageStartDate.AddDate(mtg.FixedRatePeriodYears, 0, 0)
			if ctx.MonthStart.Before(fixedEnd) {
				rate = *mtg.FixedInterestRate
				inFixedWindow = true
			}
		}

		termMonths := mtg.AmortisationYears * 12
		var payment int64
		if termMonths > 0 {
			if inFixedWindow && mtg.OriginalLoanAmount > 0 {
				payment = annuityPayment(mtg.OriginalLoanAmount, rate, termMonths)
			} else {
				remaining := -balance
				monthsRemaining := termMonths
				if mtg.MortgageStartDate != nil {
					monthsRemaining = termMonths - monthsBetween(*mtg.MortgageStartDate, ctx.MonthStart)
				}
				if monthsRemaining < 1 {
					monthsRemaining = 1
				}
				payment = annuityPayment(remaining, rate, monthsRemaining)
			}
		}

		// Never overshoot payoff.
		if payment > -balance {
			payment = -balance
		}

		if payment > 0 && mtg.PaymentFromAccountID != nil {
			payerID := *mtg.PaymentFromAccountID
			if _, ok := ctx.Balances[payerID]; ok {
				ctx.Balances[payerID] -= payment
				ctx.flow(payerID).MortgagePaymentsOut += payment
				ctx.Balances[mtg.ID] += payment
				ctx.flow(mtg.ID).MortgageRepaymentsIn += payment
			}
		}

		// Interest accrues on whatever debt is left after the payment.
		postPayment := ctx.Balances[mtg.ID]
		if postPayment < 0 {
			interest := int64(math.Round(float64(-postPayment) * rate / 100 / 12))
			ctx.Balances[mtg.ID] -= interest
			ctx.flow(mtg.ID).Interest -= interest
		}
	}
}
