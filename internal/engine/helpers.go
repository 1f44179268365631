package engine

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// headroomUnlimited is the sentinel returned when no contribution limit
// applies to an account.
const headroomUnlimited = int64(999_999_999_999)

// formatPence renders a pence amount as £1,234.56 for warning messages.
func formatPence(pence int64) string {
	neg := ""
	if pence < 0 {
		neg = "-"
		pence = -pence
	}
	pounds := pence / 100
	var groups string
	for pounds >= 1000 {
		groups = fmt.Sprintf(",%03d%s", pounds%1000, groups)
		pounds /= 1000
	}
	return fmt.Sprintf("%s£%d%s.%02d", neg, pounds, groups, pence%100)
}

// convertCurrency maps an amount between account currencies using the
// scenario's GBP->USD rate. Only the GBP/USD pair converts; any other
// combination passes through unchanged.
func convertCurrency(amount int64, from, to domain.Currency, gbpToUSD float64) int64 {
	if from == "" {
		from = domain.CurrencyGBP
	}
	if to == "" {
		to = domain.CurrencyGBP
	}
	if from == to {
		return amount
	}
	switch {
	case from == domain.CurrencyUSD && to == domain.CurrencyGBP:
		return int64(math.Round(float64(amount) / gbpToUSD))
	case from == domain.CurrencyGBP && to == domain.CurrencyUSD:
		return int64(math.Round(float64(amount) * gbpToUSD))
	}
	return amount
}

// disposalImpact apportions book cost to a withdrawal and returns the cost
// portion consumed plus the realized gain. Disposals out of any tax wrapper
// are exempt, as are Cash and debt accounts and the main residence (private
// residence relief).
func disposalImpact(withdrawal, balance, bookCost int64, accountType domain.AccountType, wrapper domain.TaxWrapper) (costPortion, gain int64) {
	if wrapper.IsWrapped() {
		return 0, 0
	}
	switch accountType {
	case domain.AccountCash, domain.AccountMortgage, domain.AccountLoan, domain.AccountMainResidence:
		return 0, 0
	}
	if balance <= 0 || withdrawal <= 0 {
		return 0, 0
	}
	fraction := decimal.NewFromInt(withdrawal).Div(decimal.NewFromInt(balance))
	if fraction.GreaterThan(decimal.NewFromInt(1)) {
		fraction = decimal.NewFromInt(1)
	}
	costPortion = decimal.NewFromInt(bookCost).Mul(fraction).IntPart()
	return costPortion, withdrawal - costPortion
}

// contributionKey is the composite "wrapper:type" bucket contributions are
// tracked under per owner.
func contributionKey(wrapper domain.TaxWrapper, accountType domain.AccountType) string {
	return string(wrapper) + ":" + string(accountType)
}

// trackContribution records a credit into a wrapped account against the
// primary owner's year-to-date contribution map. Unwrapped accounts,
// ownerless accounts and non-positive amounts are no-ops.
func trackContribution(s *domain.Scenario, ctx *Context, accountID, amount int64) {
	if amount <= 0 {
		return
	}
	acc := s.Account(accountID)
	if acc == nil || !acc.TaxWrapper.IsWrapped() || len(acc.OwnerIDs) == 0 {
		return
	}
	ownerID := acc.OwnerIDs[0]
	contribs, ok := ctx.YTDContributions[ownerID]
	if !ok {
		contribs = make(map[string]int64)
		ctx.YTDContributions[ownerID] = contribs
	}
	contribs[contributionKey(acc.TaxWrapper, acc.AccountType)] += amount
}

// contributionHeadroom returns the pence still creditable into an account
// this tax year before a TaxLimit is breached: the minimum remaining headroom
// across every limit active this month that covers the account's wrapper (and
// type, when the limit restricts types). Unwrapped accounts are unlimited;
// wrapped accounts with no owner get zero.
func contributionHeadroom(s *domain.Scenario, ctx *Context, accountID int64) int64 {
	acc := s.Account(accountID)
	if acc == nil || !acc.TaxWrapper.IsWrapped() {
		return headroomUnlimited
	}
	if len(acc.OwnerIDs) == 0 {
		return 0
	}
	ownerID := acc.OwnerIDs[0]

	var applicable []*domain.TaxLimit
	for i := range s.TaxLimits {
		limit := &s.TaxLimits[i]
		if limit.StartDate.After(ctx.MonthStart) {
			continue
		}
		if limit.EndDate != nil && limit.EndDate.Before(ctx.MonthStart) {
			continue
		}
		if !containsWrapper(limit.Wrappers, acc.TaxWrapper) {
			continue
		}
		if len(limit.AccountTypes) > 0 && !containsType(limit.AccountTypes, acc.AccountType) {
			continue
		}
		applicable = append(applicable, limit)
	}
	if len(applicable) == 0 {
		return headroomUnlimited
	}

	minHeadroom := headroomUnlimited
	for _, limit := range applicable {
		var usage int64
		for key, amount := range ctx.YTDContributions[ownerID] {
			wrapper, accountType := splitContributionKey(key)
			if !containsWrapper(limit.Wrappers, wrapper) {
				continue
			}
			if len(limit.AccountTypes) > 0 && !containsType(limit.AccountTypes, accountType) {
				continue
			}
			usage += amount
		}
		headroom := limit.Amount - usage
		if headroom < 0 {
			headroom = 0
		}
		if headroom < minHeadroom {
			minHeadroom = headroom
		}
	}
	return minHeadroom
}

func splitContributionKey(key string) (domain.TaxWrapper, domain.AccountType) {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return domain.TaxWrapper(key[:i]), domain.AccountType(key[i+1:])
		}
	}
	return domain.TaxWrapper(key), ""
}

func containsWrapper(ws []domain.TaxWrapper, w domain.TaxWrapper) bool {
	for _, x := range ws {
		if x == w {
			return true
		}
	}
	return false
}

func containsType(ts []domain.AccountType, t domain.AccountType) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

// rsuUnitPrice returns an RSU account's current per-unit price in pence,
// grown at the account's rate (monthly r/12 compounding) since grant.
func rsuUnitPrice(acc *domain.Account, monthsElapsed int) float64 {
	monthlyRate := acc.InterestRate / 100 / 12
	return float64(acc.UnitPrice) * math.Pow(1+monthlyRate, float64(monthsElapsed))
}

// gbpBalances values every account in GBP pence and returns the per-account
// map plus the total. RSU balances (units x100) are valued at the grown unit
// price; USD balances convert at the scenario rate.
func gbpBalances(s *domain.Scenario, ctx *Context) (map[int64]int64, int64) {
	out := make(map[int64]int64, len(ctx.Balances))
	var total int64
	for i := range s.Accounts {
		acc := &s.Accounts[i]
		bal, ok := ctx.Balances[acc.ID]
		if !ok {
			continue
		}
		val := bal
		if acc.AccountType == domain.AccountRSUGrant {
			if acc.GrantDate == nil || acc.UnitPrice == 0 {
				val = 0
			} else {
				monthsElapsed := 0
				if ctx.MonthStart.After(*acc.GrantDate) {
					monthsElapsed = monthsBetween(*acc.GrantDate, ctx.MonthStart)
				}
				price := rsuUnitPrice(acc, monthsElapsed)
				units := float64(bal) / 100.0
				val = int64(units * price)
				if acc.Currency == domain.CurrencyUSD {
					val = int64(math.Round(float64(val) / s.FXRate()))
				}
			}
		} else if acc.Currency == domain.CurrencyUSD {
			val = int64(math.Round(float64(bal) / s.FXRate()))
		}
		out[acc.ID] = val
		total += val
	}
	return out, total
}

// liquidAssets sums positive Cash and Investment balances in GBP pence,
// excluding anything inside a Pension wrapper.
func liquidAssets(s *domain.Scenario, balancesGBP map[int64]int64) int64 {
	var total int64
	for i := range s.Accounts {
		acc := &s.Accounts[i]
		if acc.AccountType != domain.AccountCash && acc.AccountType != domain.AccountInvestment {
			continue
		}
		if acc.TaxWrapper == domain.WrapperPension {
			continue
		}
		if v := balancesGBP[acc.ID]; v > 0 {
			total += v
		}
	}
	return total
}
