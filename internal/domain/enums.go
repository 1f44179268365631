package domain

// AccountType classifies what an account holds. Monetary accounts hold cash
// in their stated currency; an RSUGrant account's balance is an unvested unit
// count (scaled by 100), not cash.
type AccountType string

const (
	AccountCash          AccountType = "Cash"
	AccountInvestment    AccountType = "Investment"
	AccountPension       AccountType = "Pension"
	AccountProperty      AccountType = "Property"
	AccountMainResidence AccountType = "Main Residence"
	AccountMortgage      AccountType = "Mortgage"
	AccountLoan          AccountType = "Loan"
	AccountRSUGrant      AccountType = "RSU Grant"
	AccountCrypto        AccountType = "Crypto"
	AccountOther         AccountType = "Other"
)

// IsLiability reports whether balances of this type are normally negative.
func (t AccountType) IsLiability() bool {
	return t == AccountMortgage || t == AccountLoan
}

// TaxWrapper is the tax-advantaged envelope an account sits inside.
type TaxWrapper string

const (
	WrapperNone         TaxWrapper = "None"
	WrapperISA          TaxWrapper = "ISA"
	WrapperLISA         TaxWrapper = "Lifetime ISA"
	WrapperPension      TaxWrapper = "Pension"
	WrapperGIA          TaxWrapper = "GIA"
	WrapperOffshoreBond TaxWrapper = "Offshore Bond"
	WrapperVCT          TaxWrapper = "VCT"
	WrapperEIS          TaxWrapper = "EIS"
)

// IsWrapped reports whether the wrapper is a real tax envelope (anything but
// None). Disposals out of wrapped accounts are CGT-exempt and contributions
// into them count against TaxLimits.
func (w TaxWrapper) IsWrapped() bool {
	return w != "" && w != WrapperNone
}

// Currency of an account or flow.
type Currency string

const (
	CurrencyGBP Currency = "GBP"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Cadence is the recurrence pattern of a periodic item.
type Cadence string

const (
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
	CadenceAnnually  Cadence = "annually"
	CadenceOnce      Cadence = "once"
)

// FinancialEventType distinguishes one-off event shapes.
type FinancialEventType string

const (
	EventIncomeExpense FinancialEventType = "income_expense"
	EventTransfer      FinancialEventType = "transfer"
)

// RuleType selects the automation behaviour of an AutomationRule.
type RuleType string

const (
	RuleSweep         RuleType = "sweep"
	RuleTopUp         RuleType = "top_up"
	RuleSmartTransfer RuleType = "transfer"
	RuleMortgageSmart RuleType = "mortgage_smart"
)
