package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Output types of a projection run. All monetary values here are whole
// currency units (GBP pounds) for display; the engine computes in pence and
// converts exactly once, when a data point is built.

// AccountFlows is the per-account movement breakdown for one month, in
// pounds.
type AccountFlows struct {
	Income               decimal.Decimal `json:"income"`
	Costs                decimal.Decimal `json:"costs"`
	TransfersIn          decimal.Decimal `json:"transfersIn"`
	TransfersOut         decimal.Decimal `json:"transfersOut"`
	MortgagePaymentsOut  decimal.Decimal `json:"mortgagePaymentsOut"`
	MortgageRepaymentsIn decimal.Decimal `json:"mortgageRepaymentsIn"`
	Interest             decimal.Decimal `json:"interest"`
	Events               decimal.Decimal `json:"events"`
	Tax                  decimal.Decimal `json:"tax"`
	CGT                  decimal.Decimal `json:"cgt"`
	EmployerContribution decimal.Decimal `json:"employerContribution"`
	Growth               decimal.Decimal `json:"growth"`
}

// DataPoint is one month of the projection time series.
type DataPoint struct {
	Date            time.Time                 `json:"date"`
	Balance         decimal.Decimal           `json:"balance"`
	LiquidAssets    decimal.Decimal           `json:"liquidAssets"`
	AccountBalances map[int64]decimal.Decimal `json:"accountBalances"`
	Flows           map[int64]AccountFlows    `json:"flows"`
}

// Warning is an advisory policy breach (tax limit, overdraft). The operation
// that triggered it still completed.
type Warning struct {
	Date       time.Time `json:"date"`
	AccountID  int64     `json:"accountId"`
	Message    string    `json:"message"`
	SourceType string    `json:"sourceType"`
	SourceID   int64     `json:"sourceId"`
}

// RuleLog records a single automation-rule (or drawdown) execution.
type RuleLog struct {
	Date          time.Time       `json:"date"`
	RuleType      string          `json:"ruleType"`
	Action        string          `json:"action"`
	Amount        decimal.Decimal `json:"amount"`
	SourceAccount string          `json:"sourceAccount"`
	TargetAccount string          `json:"targetAccount"`
	Reason        string          `json:"reason"`
}

// MortgageStat reports one completed annual window of a MortgageSmart rule.
type MortgageStat struct {
	YearStart int             `json:"yearStart"`
	RuleID    int64           `json:"ruleId"`
	RuleName  string          `json:"ruleName"`
	Allowance decimal.Decimal `json:"allowance"`
	Paid      decimal.Decimal `json:"paid"`
	Headroom  decimal.Decimal `json:"headroom"`
}

// Annotation is a timeline marker, either user-authored or derived by the
// milestone analyzer.
type Annotation struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Type  string    `json:"type"`
}

// ProjectionResult is the complete output of one projection run.
type ProjectionResult struct {
	DataPoints    []DataPoint    `json:"dataPoints"`
	Warnings      []Warning      `json:"warnings"`
	RuleLogs      []RuleLog      `json:"ruleLogs"`
	MortgageStats []MortgageStat `json:"mortgageStats"`
	Annotations   []Annotation   `json:"annotations"`
}

// Override is an in-memory what-if patch applied to a cloned scenario before
// a run. Type is one of account, income, cost, transfer, event, tax_limit,
// rule, decumulation_strategy.
type Override struct {
	Type  string      `yaml:"type" json:"type"`
	ID    int64       `yaml:"id" json:"id"`
	Field string      `yaml:"field" json:"field"`
	Value interface{} `yaml:"value" json:"value"`
}
