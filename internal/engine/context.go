package engine

import (
	"time"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// flowSet accumulates one account's movements for the current month, in
// pence. It is converted to pounds exactly once, when the month's data point
// is built.
type flowSet struct {
	Income               int64
	Costs                int64
	TransfersIn          int64
	TransfersOut         int64
	MortgagePaymentsOut  int64
	MortgageRepaymentsIn int64
	Interest             int64
	Events               int64
	Tax                  int64
	CGT                  int64
	EmployerContribution int64
	Growth               int64
}

// earningsYTD tracks one owner's year-to-date payroll totals in pence. The
// taxable and NI-able figures diverge when benefits in kind are present.
type earningsYTD struct {
	Taxable int64
	NIable  int64
}

// overpayWindow is the per-rule running state of a MortgageSmart annual
// overpayment allowance.
type overpayWindow struct {
	Allowance int64
	Paid      int64
}

// Context is the mutable simulation state for a single projection run. It is
// created fresh inside RunProjection, exclusively owned by that run, and
// discarded when it returns; nothing here survives between runs.
type Context struct {
	MonthStart time.Time

	Balances  map[int64]int64 // accountID -> pence (RSU: units x100)
	BookCosts map[int64]int64 // accountID -> pence
	Flows     map[int64]*flowSet

	// Year-to-date trackers, reset on crossing 6 April.
	YTDContributions map[int64]map[string]int64 // ownerID -> "wrapper:type" -> pence
	YTDEarnings      map[int64]*earningsYTD     // ownerID
	YTDInterest      map[int64]int64            // ownerID -> pence
	YTDGains         map[int64]int64            // ownerID -> pence

	Warnings      []domain.Warning
	RuleLogs      []domain.RuleLog
	MortgageState map[int64]*overpayWindow // ruleID
	MortgageStats []domain.MortgageStat
	Annotations   []domain.Annotation

	PrevBalances map[int64]int64
}

func newContext(s *domain.Scenario) *Context {
	ctx := &Context{
		MonthStart:       monthAnchor(s.StartDate),
		Balances:         make(map[int64]int64, len(s.Accounts)),
		BookCosts:        make(map[int64]int64, len(s.Accounts)),
		Flows:            make(map[int64]*flowSet, len(s.Accounts)),
		YTDContributions: make(map[int64]map[string]int64),
		YTDEarnings:      make(map[int64]*earningsYTD),
		YTDInterest:      make(map[int64]int64),
		YTDGains:         make(map[int64]int64),
		MortgageState:    make(map[int64]*overpayWindow),
		PrevBalances:     make(map[int64]int64, len(s.Accounts)),
	}
	for i := range s.Accounts {
		acc := &s.Accounts[i]
		ctx.Balances[acc.ID] = acc.StartingBalance
		if acc.BookCost != nil {
			ctx.BookCosts[acc.ID] = *acc.BookCost
		} else {
			ctx.BookCosts[acc.ID] = acc.StartingBalance
		}
	}
	return ctx
}

// resetFlows zeroes the per-month accumulators for every account.
func (ctx *Context) resetFlows(s *domain.Scenario) {
	for i := range s.Accounts {
		ctx.Flows[s.Accounts[i].ID] = &flowSet{}
	}
}

// resetYTD empties the year-to-date trackers; called on tax-year rollover.
func (ctx *Context) resetYTD() {
	ctx.YTDContributions = make(map[int64]map[string]int64)
	ctx.YTDEarnings = make(map[int64]*earningsYTD)
	ctx.YTDInterest = make(map[int64]int64)
	ctx.YTDGains = make(map[int64]int64)
}

// flow returns the accumulator for an account, creating it lazily when the
// account was not part of the month's reset.
func (ctx *Context) flow(accountID int64) *flowSet {
	f, ok := ctx.Flows[accountID]
	if !ok {
		f = &flowSet{}
		ctx.Flows[accountID] = f
	}
	return f
}

// earnings returns the YTD payroll tracker for an owner, creating it on
// first use.
func (ctx *Context) earnings(ownerID int64) *earningsYTD {
	e, ok := ctx.YTDEarnings[ownerID]
	if !ok {
		e = &earningsYTD{}
		ctx.YTDEarnings[ownerID] = e
	}
	return e
}

func (ctx *Context) ownerTaxable(ownerID int64) int64 {
	if e, ok := ctx.YTDEarnings[ownerID]; ok {
		return e.Taxable
	}
	return 0
}

func (ctx *Context) warn(accountID int64, message, sourceType string, sourceID int64) {
	ctx.Warnings = append(ctx.Warnings, domain.Warning{
		Date:       ctx.MonthStart,
		AccountID:  accountID,
		Message:    message,
		SourceType: sourceType,
		SourceID:   sourceID,
	})
}

func (ctx *Context) annotate(label, annType string) {
	ctx.Annotations = append(ctx.Annotations, domain.Annotation{
		Date:  ctx.MonthStart,
		Label: label,
		Type:  annType,
	})
}
