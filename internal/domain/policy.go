package domain

import (
	"fmt"
	"strings"
)

// TreasuryPolicy is the tunable part of the engine: every constant the panel
// used to hardcode lives here and can be overridden from the policy file.
type TreasuryPolicy struct {
	StartCash            Money                `json:"startCash" yaml:"start_cash"`
	ProjectionBufferDays int                  `json:"projectionBufferDays" yaml:"projection_buffer_days"`
	RiskThreshold        Money                `json:"riskThreshold" yaml:"risk_threshold"`
	DefaultScenario      ScenarioConfig       `json:"defaultScenario" yaml:"default_scenario"`
	Classification       ClassificationPolicy `json:"classification" yaml:"classification"`
	FixedExpenses        []FixedExpense       `json:"fixedExpenses" yaml:"fixed_expenses"`
}

// DefaultTreasuryPolicy returns the operating assumptions of the demo fleet.
func DefaultTreasuryPolicy() TreasuryPolicy {
	return TreasuryPolicy{
		StartCash:            800_000_000,
		ProjectionBufferDays: 15,
		RiskThreshold:        20_000_000,
		DefaultScenario:      DefaultScenario(),
		Classification:       DefaultClassificationPolicy(),
		FixedExpenses: []FixedExpense{
			{Description: "INFRAESTRUCTURA AWS", Amount: 2_500_000, DayOfMonth: 5},
			{Description: "OFICINA & ADMIN", Amount: 4_500_000, DayOfMonth: 1},
			{Description: "NOMINA SOPORTE (Q1)", Amount: 6_000_000, DayOfMonth: 15},
			{Description: "NOMINA SOPORTE (Q2)", Amount: 6_000_000, DayOfMonth: 30},
		},
	}
}

// Validate checks the policy once at load time.
func (p TreasuryPolicy) Validate() error {
	if p.StartCash < 0 {
		return &ErrValidation{Field: "start_cash", Message: "must not be negative"}
	}
	if p.ProjectionBufferDays < 0 {
		return &ErrValidation{Field: "projection_buffer_days", Message: "must not be negative"}
	}
	if p.RiskThreshold < 0 {
		return &ErrValidation{Field: "risk_threshold", Message: "must not be negative"}
	}
	if err := p.DefaultScenario.Validate(); err != nil {
		return fmt.Errorf("default_scenario: %w", err)
	}
	if !validShare(p.Classification.DefaultShare) {
		return &ErrValidation{Field: "classification.default_share", Message: "must be within [0,1]"}
	}
	for i, r := range p.Classification.Rules {
		if strings.TrimSpace(string(r.Category)) == "" {
			return &ErrValidation{Field: fmt.Sprintf("classification.rules[%d].category", i), Message: "required"}
		}
		if len(r.Patterns) == 0 {
			return &ErrValidation{Field: fmt.Sprintf("classification.rules[%d].patterns", i), Message: "at least one pattern"}
		}
		if !validShare(r.CurrentShare) {
			return &ErrValidation{Field: fmt.Sprintf("classification.rules[%d].current_share", i), Message: "must be within [0,1]"}
		}
	}
	for i, e := range p.FixedExpenses {
		if e.Amount <= 0 {
			return &ErrValidation{Field: fmt.Sprintf("fixed_expenses[%d].amount", i), Message: "must be positive"}
		}
		if e.DayOfMonth < 1 || e.DayOfMonth > 31 {
			return &ErrValidation{Field: fmt.Sprintf("fixed_expenses[%d].day_of_month", i), Message: "must be within 1-31"}
		}
	}
	return nil
}

func validShare(v float64) bool {
	return v >= 0 && v <= 1
}
