package engine

import "github.com/kevinjoyner/marty-financial-planner/internal/domain"

// applyOverrides patches a cloned scenario with what-if edits before a run.
// Unknown types, unresolved IDs, unknown fields, and uncoercible values are
// all skipped silently: a partially-valid override list still produces a
// best-effort forecast.
func applyOverrides(s *domain.Scenario, overrides []domain.Override) {
	for _, o := range overrides {
		switch o.Type {
		case "account":
			if acc := s.Account(o.ID); acc != nil {
				overrideAccount(acc, o)
			}
		case "income":
			for i := range s.Owners {
				for j := range s.Owners[i].IncomeSources {
					if inc := &s.Owners[i].IncomeSources[j]; inc.ID == o.ID {
						overrideIncome(inc, o)
					}
				}
			}
		case "cost":
			for i := range s.Costs {
				if c := &s.Costs[i]; c.ID == o.ID {
					overrideCost(c, o)
				}
			}
		case "transfer":
			for i := range s.Transfers {
				if t := &s.Transfers[i]; t.ID == o.ID {
					overrideTransfer(t, o)
				}
			}
		case "event":
			for i := range s.FinancialEvents {
				if ev := &s.FinancialEvents[i]; ev.ID == o.ID {
					overrideEvent(ev, o)
				}
			}
		case "tax_limit":
			for i := range s.TaxLimits {
				if l := &s.TaxLimits[i]; l.ID == o.ID {
					overrideTaxLimit(l, o)
				}
			}
		case "rule":
			for i := range s.AutomationRules {
				if r := &s.AutomationRules[i]; r.ID == o.ID {
					overrideRule(r, o)
				}
			}
		case "decumulation_strategy", "strategy":
			for i := range s.DecumulationStrategies {
				if st := &s.DecumulationStrategies[i]; st.ID == o.ID {
					overrideStrategy(st, o)
				}
			}
		}
	}
}

func overrideAccount(acc *domain.Account, o domain.Override) {
	switch o.Field {
	case "name":
		setString(&acc.Name, o.Value)
	case "starting_balance":
		setInt64(&acc.StartingBalance, o.Value)
	case "book_cost":
		if v, ok := asInt64(o.Value); ok {
			acc.BookCost = &v
		}
	case "min_balance":
		setInt64(&acc.MinBalance, o.Value)
	case "interest_rate":
		setFloat64(&acc.InterestRate, o.Value)
	case "fixed_interest_rate":
		if v, ok := asFloat64(o.Value); ok {
			acc.FixedInterestRate = &v
		}
	case "unit_price":
		setInt64(&acc.UnitPrice, o.Value)
	}
}

func overrideIncome(inc *domain.IncomeSource, o domain.Override) {
	switch o.Field {
	case "name":
		setString(&inc.Name, o.Value)
	case "net_value":
		setInt64(&inc.NetValue, o.Value)
	case "is_pre_tax":
		setBool(&inc.IsPreTax, o.Value)
	case "salary_sacrifice_value":
		setInt64(&inc.SalarySacrificeValue, o.Value)
	case "employer_pension_contribution":
		setInt64(&inc.EmployerPensionContribution, o.Value)
	case "taxable_benefit_value":
		setInt64(&inc.TaxableBenefitValue, o.Value)
	case "cadence":
		if v, ok := asString(o.Value); ok {
			inc.Cadence = domain.Cadence(v)
		}
	}
}

func overrideCost(c *domain.Cost, o domain.Override) {
	switch o.Field {
	case "name":
		setString(&c.Name, o.Value)
	case "value":
		setInt64(&c.Value, o.Value)
	case "cadence":
		if v, ok := asString(o.Value); ok {
			c.Cadence = domain.Cadence(v)
		}
	}
}

func overrideTransfer(t *domain.Transfer, o domain.Override) {
	switch o.Field {
	case "name":
		setString(&t.Name, o.Value)
	case "value":
		setInt64(&t.Value, o.Value)
	case "cadence":
		if v, ok := asString(o.Value); ok {
			t.Cadence = domain.Cadence(v)
		}
	}
}

func overrideEvent(ev *domain.FinancialEvent, o domain.Override) {
	switch o.Field {
	case "name":
		setString(&ev.Name, o.Value)
	case "value":
		setInt64(&ev.Value, o.Value)
	}
}

func overrideTaxLimit(l *domain.TaxLimit, o domain.Override) {
	switch o.Field {
	case "name":
		setString(&l.Name, o.Value)
	case "amount":
		setInt64(&l.Amount, o.Value)
	}
}

func overrideRule(r *domain.AutomationRule, o domain.Override) {
	switch o.Field {
	case "name":
		setString(&r.Name, o.Value)
	case "trigger_value":
		setInt64(&r.TriggerValue, o.Value)
	case "transfer_value":
		if v, ok := asInt64(o.Value); ok {
			r.TransferValue = &v
		}
	case "priority":
		if v, ok := asInt64(o.Value); ok {
			r.Priority = int(v)
		}
	}
}

func overrideStrategy(st *domain.DecumulationStrategy, o domain.Override) {
	switch o.Field {
	case "name":
		setString(&st.Name, o.Value)
	case "enabled":
		setBool(&st.Enabled, o.Value)
	}
}

// Override values arrive as interface{} from YAML or JSON, so numbers may be
// int, int64, or float64 depending on the decoder.

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func asFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asBool(v interface{}) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func setInt64(dst *int64, v interface{}) {
	if n, ok := asInt64(v); ok {
		*dst = n
	}
}

func setFloat64(dst *float64, v interface{}) {
	if n, ok := asFloat64(v); ok {
		*dst = n
	}
}

func setBool(dst *bool, v interface{}) {
	if b, ok := asBool(v); ok {
		*dst = b
	}
}

func setString(dst *string, v interface{}) {
	if s, ok := asString(v); ok {
		*dst = s
	}
}
