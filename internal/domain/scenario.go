package domain

import "time"

// All monetary fields on these types are int64 pence (minor units). Negative
// balances are liabilities. Rates are annual percentages (3.5 means 3.5%).

// Owner is a person in the scenario. Owners hold accounts (many-to-many,
// referenced by ID) and income sources.
type Owner struct {
	ID            int64          `yaml:"id" json:"id"`
	Name          string         `yaml:"name" json:"name"`
	BirthDate     *time.Time     `yaml:"birth_date,omitempty" json:"birthDate,omitempty"`
	RetirementAge int            `yaml:"retirement_age,omitempty" json:"retirementAge,omitempty"`
	Notes         string         `yaml:"notes,omitempty" json:"notes,omitempty"`
	IncomeSources []IncomeSource `yaml:"income_sources,omitempty" json:"incomeSources,omitempty"`
}

// VestingTranche is one step of an RSU vesting schedule: Percent of the grant
// is earned linearly across the 12 months ending Year years after grant.
type VestingTranche struct {
	Year    int     `yaml:"year" json:"year"`
	Percent float64 `yaml:"percent" json:"percent"`
}

// Account is a named money container.
type Account struct {
	ID          int64       `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	AccountType AccountType `yaml:"account_type" json:"accountType"`
	TaxWrapper  TaxWrapper  `yaml:"tax_wrapper,omitempty" json:"taxWrapper,omitempty"`
	Currency    Currency    `yaml:"currency,omitempty" json:"currency,omitempty"`

	StartingBalance int64   `yaml:"starting_balance" json:"startingBalance"`
	BookCost        *int64  `yaml:"book_cost,omitempty" json:"bookCost,omitempty"`
	MinBalance      int64   `yaml:"min_balance,omitempty" json:"minBalance,omitempty"`
	InterestRate    float64 `yaml:"interest_rate,omitempty" json:"interestRate,omitempty"`

	OwnerIDs []int64 `yaml:"owner_ids,omitempty" json:"ownerIds,omitempty"`

	// Mortgage fields.
	OriginalLoanAmount   int64      `yaml:"original_loan_amount,omitempty" json:"originalLoanAmount,omitempty"`
	MortgageStartDate    *time.Time `yaml:"mortgage_start_date,omitempty" json:"mortgageStartDate,omitempty"`
	AmortisationYears    int        `yaml:"amortisation_period_years,omitempty" json:"amortisationPeriodYears,omitempty"`
	FixedInterestRate    *float64   `yaml:"fixed_interest_rate,omitempty" json:"fixedInterestRate,omitempty"`
	FixedRatePeriodYears int        `yaml:"fixed_rate_period_years,omitempty" json:"fixedRatePeriodYears,omitempty"`
	PaymentFromAccountID *int64     `yaml:"payment_from_account_id,omitempty" json:"paymentFromAccountId,omitempty"`

	// RSU fields. StartingBalance is unvested units x100.
	GrantDate          *time.Time       `yaml:"grant_date,omitempty" json:"grantDate,omitempty"`
	VestingSchedule    []VestingTranche `yaml:"vesting_schedule,omitempty" json:"vestingSchedule,omitempty"`
	VestingCadence     Cadence          `yaml:"vesting_cadence,omitempty" json:"vestingCadence,omitempty"`
	UnitPrice          int64            `yaml:"unit_price,omitempty" json:"unitPrice,omitempty"`
	RSUTargetAccountID *int64           `yaml:"rsu_target_account_id,omitempty" json:"rsuTargetAccountId,omitempty"`

	Notes string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// IncomeSource is a periodic credit into one account, owned by one Owner.
// NetValue is the gross amount per period when IsPreTax is set, otherwise the
// amount credited as-is.
type IncomeSource struct {
	ID        int64  `yaml:"id" json:"id"`
	OwnerID   int64  `yaml:"owner_id,omitempty" json:"ownerId,omitempty"`
	AccountID int64  `yaml:"account_id" json:"accountId"`
	Name      string `yaml:"name" json:"name"`

	NetValue  int64      `yaml:"net_value" json:"netValue"`
	Cadence   Cadence    `yaml:"cadence" json:"cadence"`
	StartDate time.Time  `yaml:"start_date" json:"startDate"`
	EndDate   *time.Time `yaml:"end_date,omitempty" json:"endDate,omitempty"`
	Currency  Currency   `yaml:"currency,omitempty" json:"currency,omitempty"`

	IsPreTax                    bool   `yaml:"is_pre_tax,omitempty" json:"isPreTax,omitempty"`
	SalarySacrificeValue        int64  `yaml:"salary_sacrifice_value,omitempty" json:"salarySacrificeValue,omitempty"`
	SalarySacrificeAccountID    *int64 `yaml:"salary_sacrifice_account_id,omitempty" json:"salarySacrificeAccountId,omitempty"`
	EmployerPensionContribution int64  `yaml:"employer_pension_contribution,omitempty" json:"employerPensionContribution,omitempty"`
	TaxableBenefitValue         int64  `yaml:"taxable_benefit_value,omitempty" json:"taxableBenefitValue,omitempty"`
}

// Cost is a periodic debit from one account.
type Cost struct {
	ID        int64      `yaml:"id" json:"id"`
	AccountID int64      `yaml:"account_id" json:"accountId"`
	Name      string     `yaml:"name" json:"name"`
	Value     int64      `yaml:"value" json:"value"`
	Cadence   Cadence    `yaml:"cadence" json:"cadence"`
	StartDate time.Time  `yaml:"start_date" json:"startDate"`
	EndDate   *time.Time `yaml:"end_date,omitempty" json:"endDate,omitempty"`
	Currency  Currency   `yaml:"currency,omitempty" json:"currency,omitempty"`
}

// Transfer is a scheduled movement between two accounts.
type Transfer struct {
	ID            int64      `yaml:"id" json:"id"`
	FromAccountID int64      `yaml:"from_account_id" json:"fromAccountId"`
	ToAccountID   int64      `yaml:"to_account_id" json:"toAccountId"`
	Name          string     `yaml:"name" json:"name"`
	Value         int64      `yaml:"value" json:"value"`
	Cadence       Cadence    `yaml:"cadence" json:"cadence"`
	StartDate     time.Time  `yaml:"start_date" json:"startDate"`
	EndDate       *time.Time `yaml:"end_date,omitempty" json:"endDate,omitempty"`
	ShowOnChart   bool       `yaml:"show_on_chart,omitempty" json:"showOnChart,omitempty"`
}

// FinancialEvent is a one-off, date-stamped credit/debit or transfer.
type FinancialEvent struct {
	ID            int64              `yaml:"id" json:"id"`
	Name          string             `yaml:"name" json:"name"`
	EventType     FinancialEventType `yaml:"event_type" json:"eventType"`
	Value         int64              `yaml:"value" json:"value"`
	Date          time.Time          `yaml:"date" json:"date"`
	FromAccountID *int64             `yaml:"from_account_id,omitempty" json:"fromAccountId,omitempty"`
	ToAccountID   *int64             `yaml:"to_account_id,omitempty" json:"toAccountId,omitempty"`
	Currency      Currency           `yaml:"currency,omitempty" json:"currency,omitempty"`
	ShowOnChart   bool               `yaml:"show_on_chart,omitempty" json:"showOnChart,omitempty"`
}

// TaxLimit caps cumulative annual contributions into a set of wrappers,
// optionally restricted to particular account types.
type TaxLimit struct {
	ID           int64         `yaml:"id" json:"id"`
	Name         string        `yaml:"name" json:"name"`
	Amount       int64         `yaml:"amount" json:"amount"`
	Wrappers     []TaxWrapper  `yaml:"wrappers" json:"wrappers"`
	AccountTypes []AccountType `yaml:"account_types,omitempty" json:"accountTypes,omitempty"`
	StartDate    time.Time     `yaml:"start_date" json:"startDate"`
	EndDate      *time.Time    `yaml:"end_date,omitempty" json:"endDate,omitempty"`
}

// DecumulationStrategy toggles automated drawdown for a date range.
type DecumulationStrategy struct {
	ID        int64      `yaml:"id" json:"id"`
	Name      string     `yaml:"name" json:"name"`
	Enabled   bool       `yaml:"enabled" json:"enabled"`
	StartDate *time.Time `yaml:"start_date,omitempty" json:"startDate,omitempty"`
	EndDate   *time.Time `yaml:"end_date,omitempty" json:"endDate,omitempty"`
}

// AutomationRule is a conditional money movement evaluated monthly in
// ascending priority order.
type AutomationRule struct {
	ID              int64      `yaml:"id" json:"id"`
	Name            string     `yaml:"name" json:"name"`
	RuleType        RuleType   `yaml:"rule_type" json:"ruleType"`
	SourceAccountID int64      `yaml:"source_account_id" json:"sourceAccountId"`
	TargetAccountID *int64     `yaml:"target_account_id,omitempty" json:"targetAccountId,omitempty"`
	TriggerValue    int64      `yaml:"trigger_value" json:"triggerValue"`
	TransferValue   *int64     `yaml:"transfer_value,omitempty" json:"transferValue,omitempty"`
	Cadence         Cadence    `yaml:"cadence,omitempty" json:"cadence,omitempty"`
	StartDate       *time.Time `yaml:"start_date,omitempty" json:"startDate,omitempty"`
	EndDate         *time.Time `yaml:"end_date,omitempty" json:"endDate,omitempty"`
	Priority        int        `yaml:"priority,omitempty" json:"priority,omitempty"`
}

// ChartAnnotation is a user-authored marker on the output timeline.
type ChartAnnotation struct {
	ID             int64     `yaml:"id" json:"id"`
	Date           time.Time `yaml:"date" json:"date"`
	Label          string    `yaml:"label" json:"label"`
	AnnotationType string    `yaml:"annotation_type,omitempty" json:"annotationType,omitempty"`
}

// Scenario is the root aggregate a projection runs over. It is read-only
// during a run; simulation overrides are applied to a clone.
type Scenario struct {
	ID           int64     `yaml:"id,omitempty" json:"id,omitempty"`
	Name         string    `yaml:"name" json:"name"`
	Description  string    `yaml:"description,omitempty" json:"description,omitempty"`
	StartDate    time.Time `yaml:"start_date" json:"startDate"`
	GBPToUSDRate float64   `yaml:"gbp_to_usd_rate,omitempty" json:"gbpToUsdRate,omitempty"`

	Owners                 []Owner                `yaml:"owners,omitempty" json:"owners,omitempty"`
	Accounts               []Account              `yaml:"accounts,omitempty" json:"accounts,omitempty"`
	Costs                  []Cost                 `yaml:"costs,omitempty" json:"costs,omitempty"`
	Transfers              []Transfer             `yaml:"transfers,omitempty" json:"transfers,omitempty"`
	FinancialEvents        []FinancialEvent       `yaml:"financial_events,omitempty" json:"financialEvents,omitempty"`
	AutomationRules        []AutomationRule       `yaml:"automation_rules,omitempty" json:"automationRules,omitempty"`
	TaxLimits              []TaxLimit             `yaml:"tax_limits,omitempty" json:"taxLimits,omitempty"`
	DecumulationStrategies []DecumulationStrategy `yaml:"decumulation_strategies,omitempty" json:"decumulationStrategies,omitempty"`
	ChartAnnotations       []ChartAnnotation      `yaml:"chart_annotations,omitempty" json:"chartAnnotations,omitempty"`
}

// FXRate returns the GBP->USD rate, defaulting to 1.25 when unset.
func (s *Scenario) FXRate() float64 {
	if s.GBPToUSDRate == 0 {
		return 1.25
	}
	return s.GBPToUSDRate
}

// Account returns the account with the given ID, or nil.
func (s *Scenario) Account(id int64) *Account {
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			return &s.Accounts[i]
		}
	}
	return nil
}

// Owner returns the owner with the given ID, or nil.
func (s *Scenario) Owner(id int64) *Owner {
	for i := range s.Owners {
		if s.Owners[i].ID == id {
			return &s.Owners[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the scenario. The projection engine clones
// before applying simulation overrides so the caller's aggregate is never
// mutated.
func (s *Scenario) Clone() *Scenario {
	out := *s
	out.Owners = make([]Owner, len(s.Owners))
	for i, o := range s.Owners {
		oc := o
		oc.BirthDate = cloneTime(o.BirthDate)
		oc.IncomeSources = make([]IncomeSource, len(o.IncomeSources))
		for j, inc := range o.IncomeSources {
			ic := inc
			ic.EndDate = cloneTime(inc.EndDate)
			ic.SalarySacrificeAccountID = cloneInt64(inc.SalarySacrificeAccountID)
			oc.IncomeSources[j] = ic
		}
		out.Owners[i] = oc
	}
	out.Accounts = make([]Account, len(s.Accounts))
	for i, a := range s.Accounts {
		ac := a
		ac.BookCost = cloneInt64(a.BookCost)
		ac.MortgageStartDate = cloneTime(a.MortgageStartDate)
		ac.FixedInterestRate = cloneFloat64(a.FixedInterestRate)
		ac.PaymentFromAccountID = cloneInt64(a.PaymentFromAccountID)
		ac.GrantDate = cloneTime(a.GrantDate)
		ac.RSUTargetAccountID = cloneInt64(a.RSUTargetAccountID)
		ac.OwnerIDs = append([]int64(nil), a.OwnerIDs...)
		ac.VestingSchedule = append([]VestingTranche(nil), a.VestingSchedule...)
		out.Accounts[i] = ac
	}
	out.Costs = make([]Cost, len(s.Costs))
	for i, c := range s.Costs {
		cc := c
		cc.EndDate = cloneTime(c.EndDate)
		out.Costs[i] = cc
	}
	out.Transfers = make([]Transfer, len(s.Transfers))
	for i, t := range s.Transfers {
		tc := t
		tc.EndDate = cloneTime(t.EndDate)
		out.Transfers[i] = tc
	}
	out.FinancialEvents = make([]FinancialEvent, len(s.FinancialEvents))
	for i, e := range s.FinancialEvents {
		ec := e
		ec.FromAccountID = cloneInt64(e.FromAccountID)
		ec.ToAccountID = cloneInt64(e.ToAccountID)
		out.FinancialEvents[i] = ec
	}
	out.AutomationRules = make([]AutomationRule, len(s.AutomationRules))
	for i, r := range s.AutomationRules {
		rc := r
		rc.TargetAccountID = cloneInt64(r.TargetAccountID)
		rc.TransferValue = cloneInt64(r.TransferValue)
		rc.StartDate = cloneTime(r.StartDate)
		rc.EndDate = cloneTime(r.EndDate)
		out.AutomationRules[i] = rc
	}
	out.TaxLimits = make([]TaxLimit, len(s.TaxLimits))
	for i, l := range s.TaxLimits {
		lc := l
		lc.EndDate = cloneTime(l.EndDate)
		lc.Wrappers = append([]TaxWrapper(nil), l.Wrappers...)
		lc.AccountTypes = append([]AccountType(nil), l.AccountTypes...)
		out.TaxLimits[i] = lc
	}
	out.DecumulationStrategies = make([]DecumulationStrategy, len(s.DecumulationStrategies))
	for i, d := range s.DecumulationStrategies {
		dc := d
		dc.StartDate = cloneTime(d.StartDate)
		dc.EndDate = cloneTime(d.EndDate)
		out.DecumulationStrategies[i] = dc
	}
	out.ChartAnnotations = append([]ChartAnnotation(nil), s.ChartAnnotations...)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat64(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
