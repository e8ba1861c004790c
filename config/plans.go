package config

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var plansYAML []byte

const (
	PlanFree      = "plan_free"
	PlanUnlimited = "plan_unlimited"
)

// Plan is one entry of the subscription catalogue.
type Plan struct {
	ID            string   `yaml:"id" json:"id"`
	Name          string   `yaml:"name" json:"name"`
	Status        string   `yaml:"status" json:"-"`
	PricePerMonth int      `yaml:"price_per_month" json:"pricePerMonth"`
	MonthlyLimit  int      `yaml:"monthly_limit" json:"monthlyLimit"`
	TrialDays     int      `yaml:"trial_days,omitempty" json:"trialDays,omitempty"`
	DeleteTimers  []int    `yaml:"delete_timers" json:"deleteTimers"`
	Features      []string `yaml:"features" json:"features"`
}

// PricePaise is the plan price in the smallest currency unit.
func (p Plan) PricePaise() int {
	return p.PricePerMonth * 100
}

// AllowsTimer reports whether minutes is one of the plan's auto-delete timers.
func (p Plan) AllowsTimer(minutes int) bool {
	for _, m := range p.DeleteTimers {
		if m == minutes {
			return true
		}
	}
	return false
}

type PlanCatalog struct {
	Plans []Plan `yaml:"plans"`
}

// LoadPlans parses the embedded plan catalogue.
func LoadPlans() (*PlanCatalog, error) {
	return ParsePlans(plansYAML)
}

func ParsePlans(data []byte) (*PlanCatalog, error) {
	var catalog PlanCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse plans: %w", err)
	}
	if _, ok := catalog.Get(PlanFree); !ok {
		return nil, fmt.Errorf("plan catalogue is missing %s", PlanFree)
	}
	if _, ok := catalog.Get(PlanUnlimited); !ok {
		return nil, fmt.Errorf("plan catalogue is missing %s", PlanUnlimited)
	}
	return &catalog, nil
}

func (c *PlanCatalog) Get(id string) (Plan, bool) {
	for _, p := range c.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// ForStatus maps a user's subscription status to the plan that governs it.
// Trial users get the unlimited plan's features.
func (c *PlanCatalog) ForStatus(status string) Plan {
	if status == "trial" || status == "unlimited" {
		p, _ := c.Get(PlanUnlimited)
		return p
	}
	p, _ := c.Get(PlanFree)
	return p
}

func (c *PlanCatalog) Free() Plan {
	p, _ := c.Get(PlanFree)
	return p
}

func (c *PlanCatalog) Unlimited() Plan {
	p, _ := c.Get(PlanUnlimited)
	return p
}
