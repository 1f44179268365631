package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// InputParser handles parsing of scenario files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a scenario from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Scenario, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var scenario domain.Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("scenario validation failed: %w", err)
	}

	return &scenario, nil
}

// ValidateScenario checks the scenario is runnable: required fields present
// and every cross-reference resolving to an entity in the same scenario.
// Engine-level policy problems (overdrafts, tax limits) are not validated
// here; those surface as warnings during a run.
func (ip *InputParser) ValidateScenario(s *domain.Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if s.StartDate.IsZero() {
		return fmt.Errorf("scenario start date is required")
	}

	accountIDs := make(map[int64]bool, len(s.Accounts))
	for i := range s.Accounts {
		acc := &s.Accounts[i]
		if acc.Name == "" {
			return fmt.Errorf("account %d: name is required", acc.ID)
		}
		if acc.AccountType == "" {
			return fmt.Errorf("account %d (%s): account type is required", acc.ID, acc.Name)
		}
		if accountIDs[acc.ID] {
			return fmt.Errorf("account %d (%s): duplicate account id", acc.ID, acc.Name)
		}
		accountIDs[acc.ID] = true
	}

	ownerIDs := make(map[int64]bool, len(s.Owners))
	for i := range s.Owners {
		o := &s.Owners[i]
		if o.Name == "" {
			return fmt.Errorf("owner %d: name is required", o.ID)
		}
		if ownerIDs[o.ID] {
			return fmt.Errorf("owner %d (%s): duplicate owner id", o.ID, o.Name)
		}
		ownerIDs[o.ID] = true
	}

	for i := range s.Accounts {
		acc := &s.Accounts[i]
		for _, oid := range acc.OwnerIDs {
			if !ownerIDs[oid] {
				return fmt.Errorf("account %d (%s): owner %d not found", acc.ID, acc.Name, oid)
			}
		}
		if acc.PaymentFromAccountID != nil && !accountIDs[*acc.PaymentFromAccountID] {
			return fmt.Errorf("account %d (%s): payment-from account %d not found", acc.ID, acc.Name, *acc.PaymentFromAccountID)
		}
		if acc.RSUTargetAccountID != nil && !accountIDs[*acc.RSUTargetAccountID] {
			return fmt.Errorf("account %d (%s): RSU target account %d not found", acc.ID, acc.Name, *acc.RSUTargetAccountID)
		}
		if acc.AccountType == domain.AccountRSUGrant {
			for _, tr := range acc.VestingSchedule {
				if tr.Year <= 0 {
					return fmt.Errorf("account %d (%s): vesting tranche year must be positive", acc.ID, acc.Name)
				}
				if tr.Percent < 0 || tr.Percent > 100 {
					return fmt.Errorf("account %d (%s): vesting tranche percent must be 0-100", acc.ID, acc.Name)
				}
			}
		}
	}

	for i := range s.Owners {
		o := &s.Owners[i]
		for j := range o.IncomeSources {
			inc := &o.IncomeSources[j]
			if !accountIDs[inc.AccountID] {
				return fmt.Errorf("income source %d (%s): account %d not found", inc.ID, inc.Name, inc.AccountID)
			}
			if inc.SalarySacrificeAccountID != nil && !accountIDs[*inc.SalarySacrificeAccountID] {
				return fmt.Errorf("income source %d (%s): salary sacrifice account %d not found", inc.ID, inc.Name, *inc.SalarySacrificeAccountID)
			}
			if inc.StartDate.IsZero() {
				return fmt.Errorf("income source %d (%s): start date is required", inc.ID, inc.Name)
			}
		}
	}

	for i := range s.Costs {
		c := &s.Costs[i]
		if !accountIDs[c.AccountID] {
			return fmt.Errorf("cost %d (%s): account %d not found", c.ID, c.Name, c.AccountID)
		}
		if c.StartDate.IsZero() {
			return fmt.Errorf("cost %d (%s): start date is required", c.ID, c.Name)
		}
	}

	for i := range s.Transfers {
		t := &s.Transfers[i]
		if !accountIDs[t.FromAccountID] {
			return fmt.Errorf("transfer %d (%s): source account %d not found", t.ID, t.Name, t.FromAccountID)
		}
		if !accountIDs[t.ToAccountID] {
			return fmt.Errorf("transfer %d (%s): target account %d not found", t.ID, t.Name, t.ToAccountID)
		}
	}

	for i := range s.FinancialEvents {
		ev := &s.FinancialEvents[i]
		if ev.FromAccountID == nil && ev.ToAccountID == nil {
			return fmt.Errorf("event %d (%s): at least one account is required", ev.ID, ev.Name)
		}
		if ev.FromAccountID != nil && !accountIDs[*ev.FromAccountID] {
			return fmt.Errorf("event %d (%s): source account %d not found", ev.ID, ev.Name, *ev.FromAccountID)
		}
		if ev.ToAccountID != nil && !accountIDs[*ev.ToAccountID] {
			return fmt.Errorf("event %d (%s): target account %d not found", ev.ID, ev.Name, *ev.ToAccountID)
		}
	}

	for i := range s.AutomationRules {
		r := &s.AutomationRules[i]
		if !accountIDs[r.SourceAccountID] {
			return fmt.Errorf("rule %d (%s): source account %d not found", r.ID, r.Name, r.SourceAccountID)
		}
		if r.TargetAccountID != nil && !accountIDs[*r.TargetAccountID] {
			return fmt.Errorf("rule %d (%s): target account %d not found", r.ID, r.Name, *r.TargetAccountID)
		}
	}

	for i := range s.TaxLimits {
		l := &s.TaxLimits[i]
		if len(l.Wrappers) == 0 {
			return fmt.Errorf("tax limit %d (%s): at least one wrapper is required", l.ID, l.Name)
		}
		if l.Amount < 0 {
			return fmt.Errorf("tax limit %d (%s): amount must be non-negative", l.ID, l.Name)
		}
	}

	return nil
}
