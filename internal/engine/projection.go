package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// Logger is the minimal logging surface the engine uses. The CLI wires a zap
// sugared logger behind it; library callers can leave the default no-op.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...interface{}) {}
func (NopLogger) Infof(string, ...interface{})  {}
func (NopLogger) Warnf(string, ...interface{})  {}
func (NopLogger) Errorf(string, ...interface{}) {}

// Engine runs monthly projections over a scenario.
type Engine struct {
	Tax    *TaxCalculator
	Logger Logger
}

// NewEngine creates an engine with the current UK tax configuration.
func NewEngine() *Engine {
	return &Engine{
		Tax:    NewTaxCalculator(),
		Logger: NopLogger{},
	}
}

// SetLogger replaces the engine's logger. A nil logger restores the no-op.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	e.Logger = l
}

// RunProjection walks the scenario forward month by month and returns the
// full time series. Overrides, if any, are applied to a clone so the caller's
// scenario is never mutated. The first loop iteration simulates the start
// month itself; the result therefore holds months+1 data points, the extra
// one being the opening snapshot dated at the scenario start.
func (e *Engine) RunProjection(s *domain.Scenario, months int, overrides []domain.Override) (*domain.ProjectionResult, error) {
	if s == nil {
		return nil, fmt.Errorf("projection: scenario is nil")
	}
	if months < 0 {
		return nil, fmt.Errorf("projection: months must be non-negative, got %d", months)
	}
	if s.StartDate.IsZero() {
		return nil, fmt.Errorf("projection: scenario %d has no start date", s.ID)
	}

	if len(overrides) > 0 {
		s = s.Clone()
		applyOverrides(s, overrides)
	}

	ctx := newContext(s)
	for _, ann := range s.ChartAnnotations {
		ctx.Annotations = append(ctx.Annotations, domain.Annotation{
			Date:  ann.Date,
			Label: ann.Label,
			Type:  ann.AnnotationType,
		})
	}

	e.Logger.Infof("running projection: scenario=%q months=%d accounts=%d", s.Name, months, len(s.Accounts))

	result := &domain.ProjectionResult{}
	breakdown, total := gbpBalances(s, ctx)
	result.DataPoints = append(result.DataPoints, dataPoint(s, s.StartDate, breakdown, total, nil))

	anchor := monthAnchor(s.StartDate)
	currentFY := ukFiscalYear(s.StartDate)

	for i := 0; i < months; i++ {
		ctx.PrevBalances = copyBalances(ctx.Balances)
		ctx.MonthStart = addMonths(anchor, i)

		if fy := ukFiscalYear(ctx.MonthStart); fy != currentFY {
			e.Logger.Debugf("tax year rollover: %d -> %d", currentFY, fy)
			ctx.resetYTD()
			currentFY = fy
		}
		ctx.resetFlows(s)

		e.processIncome(s, ctx)
		e.processCosts(s, ctx)
		e.processTransfers(s, ctx)
		e.processEvents(s, ctx)
		e.processRSUVesting(s, ctx)
		e.processMortgages(s, ctx)
		e.processRules(s, ctx)
		e.processDecumulation(s, ctx)
		e.processInterest(s, ctx)

		e.detectMilestones(s, ctx)

		breakdown, total = gbpBalances(s, ctx)
		endOfMonth := addMonths(ctx.MonthStart, 1).AddDate(0, 0, -1)
		result.DataPoints = append(result.DataPoints, dataPoint(s, endOfMonth, breakdown, total, ctx.Flows))

		for j := range s.Accounts {
			acc := &s.Accounts[j]
			if acc.AccountType != domain.AccountCash && acc.AccountType != domain.AccountInvestment {
				continue
			}
			if bal := ctx.Balances[acc.ID]; bal < acc.MinBalance {
				ctx.warn(acc.ID,
					fmt.Sprintf("Negative Balance: %s is overdrawn (%s).", acc.Name, formatPence(bal)),
					"balance", acc.ID)
			}
		}
	}

	result.Warnings = dedupeWarnings(ctx.Warnings)
	result.RuleLogs = ctx.RuleLogs
	result.MortgageStats = ctx.MortgageStats
	result.Annotations = ctx.Annotations

	e.Logger.Infof("projection complete: points=%d warnings=%d annotations=%d",
		len(result.DataPoints), len(result.Warnings), len(result.Annotations))
	return result, nil
}

func copyBalances(in map[int64]int64) map[int64]int64 {
	out := make(map[int64]int64, len(in))
	for id, bal := range in {
		out[id] = bal
	}
	return out
}

func dataPoint(s *domain.Scenario, date time.Time, breakdown map[int64]int64, total int64, flows map[int64]*flowSet) domain.DataPoint {
	dp := domain.DataPoint{
		Date:            date,
		Balance:         decimal.New(total, -2),
		LiquidAssets:    decimal.New(liquidAssets(s, breakdown), -2),
		AccountBalances: make(map[int64]decimal.Decimal, len(breakdown)),
		Flows:           make(map[int64]domain.AccountFlows, len(flows)),
	}
	for id, pence := range breakdown {
		dp.AccountBalances[id] = decimal.New(pence, -2)
	}
	for id, f := range flows {
		dp.Flows[id] = domain.AccountFlows{
			Income:               decimal.New(f.Income, -2),
			Costs:                decimal.New(f.Costs, -2),
			TransfersIn:          decimal.New(f.TransfersIn, -2),
			TransfersOut:         decimal.New(f.TransfersOut, -2),
			MortgagePaymentsOut:  decimal.New(f.MortgagePaymentsOut, -2),
			MortgageRepaymentsIn: decimal.New(f.MortgageRepaymentsIn, -2),
			Interest:             decimal.New(f.Interest, -2),
			Events:               decimal.New(f.Events, -2),
			Tax:                  decimal.New(f.Tax, -2),
			CGT:                  decimal.New(f.CGT, -2),
			EmployerContribution: decimal.New(f.EmployerContribution, -2),
			Growth:               decimal.New(f.Growth, -2),
		}
	}
	return dp
}

// dedupeWarnings collapses repeats of the same condition: overdrafts by
// account and year, source-driven warnings by year, source and account, and
// anything else by account and exact message.
func dedupeWarnings(warnings []domain.Warning) []domain.Warning {
	type key struct {
		year       int
		sourceType string
		sourceID   int64
		accountID  int64
		message    string
	}
	seen := make(map[key]bool)
	out := make([]domain.Warning, 0, len(warnings))
	for _, w := range warnings {
		var k key
		switch w.SourceType {
		case "balance":
			k = key{year: w.Date.Year(), accountID: w.AccountID, sourceType: "balance"}
		case "income", "transfer", "event", "rsu_vest":
			k = key{year: w.Date.Year(), sourceType: w.SourceType, sourceID: w.SourceID, accountID: w.AccountID}
		default:
			k = key{accountID: w.AccountID, message: w.Message}
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, w)
	}
	return out
}
