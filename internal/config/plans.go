package config

import (
	"fmt"

	"mindhaven/internal/models"

	"github.com/BurntSushi/toml"
)

// PlanCatalog is the purchasable plan pricing, loaded from a TOML file so
// prices can change without a rebuild.
type PlanCatalog struct {
	Plans []PlanPricing `toml:"plan" json:"plans"`
}

// PlanPricing describes one purchasable tier.
type PlanPricing struct {
	Plan               string   `toml:"plan" json:"plan"`
	Name               string   `toml:"name" json:"name"`
	Currency           string   `toml:"currency" json:"currency"`
	MonthlyAmountPaise int64    `toml:"monthly_amount_paise" json:"monthly_amount_paise"`
	YearlyAmountPaise  int64    `toml:"yearly_amount_paise" json:"yearly_amount_paise"`
	Features           []string `toml:"features" json:"features"`
}

// LoadPlanCatalog loads plan pricing from a TOML file.
func LoadPlanCatalog(filename string) (*PlanCatalog, error) {
	catalog := &PlanCatalog{}
	if _, err := toml.DecodeFile(filename, catalog); err != nil {
		return nil, fmt.Errorf("failed to load plan catalog: %w", err)
	}
	for _, p := range catalog.Plans {
		plan, err := models.ParsePlan(p.Plan)
		if err != nil {
			return nil, err
		}
		if !plan.Paid() {
			return nil, fmt.Errorf("plan catalog may only list purchasable tiers, got %s", plan)
		}
	}
	return catalog, nil
}

// Amount returns the charge for a plan and billing cycle in the smallest
// currency unit.
func (c *PlanCatalog) Amount(plan models.Plan, cycle models.BillingCycle) (int64, string, error) {
	for _, p := range c.Plans {
		if p.Plan != string(plan) {
			continue
		}
		if cycle == models.BillingYearly {
			return p.YearlyAmountPaise, p.Currency, nil
		}
		return p.MonthlyAmountPaise, p.Currency, nil
	}
	return 0, "", fmt.Errorf("no pricing for plan %s", plan)
}
