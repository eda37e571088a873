package domain

import (
	"github.com/shopspring/decimal"
)

// RulesDocument is the on-disk form of the yearly tax rules (rules YAML).
type RulesDocument struct {
	Metadata RulesMetadata `yaml:"metadata" json:"metadata"`
	Years    []TaxRules    `yaml:"years" json:"years"`
}

// RulesMetadata describes where the rule data came from.
type RulesMetadata struct {
	Description string `yaml:"description" json:"description"`
	LastUpdated string `yaml:"last_updated" json:"last_updated"`
}

// TaxRules holds one tax year's standard deduction and bracket table.
//
// The status-keyed maps are optional. When a filing status has no entry the
// default StandardDeduction and Brackets apply.
type TaxRules struct {
	Year                      int                             `yaml:"year" json:"year"`
	StandardDeduction         decimal.Decimal                 `yaml:"standard_deduction" json:"standard_deduction"`
	Brackets                  []TaxBracket                    `yaml:"brackets" json:"brackets"`
	StandardDeductionByStatus map[FilingStatus]decimal.Decimal `yaml:"standard_deduction_by_status,omitempty" json:"standard_deduction_by_status,omitempty"`
	BracketsByStatus          map[FilingStatus][]TaxBracket    `yaml:"brackets_by_status,omitempty" json:"brackets_by_status,omitempty"`
}

// StandardDeductionFor returns the standard deduction for a filing status.
func (r TaxRules) StandardDeductionFor(fs FilingStatus) decimal.Decimal {
	if amt, ok := r.StandardDeductionByStatus[fs]; ok {
		return amt
	}
	return r.StandardDeduction
}
