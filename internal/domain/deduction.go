package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	money "github.com/equitytax/tax-calculator/pkg/decimal"
)

// DeductionType selects which deduction variant applies.
type DeductionType string

const (
	DeductionStandard DeductionType = "standard"
	DeductionItemized DeductionType = "itemized"
)

// Itemized deduction category names.
const (
	ItemizedMortgageInterest = "mortgage_interest"
	ItemizedPropertyTax      = "property_tax"
	ItemizedCharitable       = "charitable"
	ItemizedMedical          = "medical"
	ItemizedStateTax         = "state_tax"
)

// DefaultStandardDeduction is the 2023 standard deduction used when a return does not carry one.
var DefaultStandardDeduction = decimal.NewFromInt(13850)

// ItemizedDeductions holds the itemized expense categories.
type ItemizedDeductions struct {
	MortgageInterest decimal.Decimal `yaml:"mortgage_interest" json:"mortgage_interest"`
	PropertyTax      decimal.Decimal `yaml:"property_tax" json:"property_tax"`
	Charitable       decimal.Decimal `yaml:"charitable" json:"charitable"`
	Medical          decimal.Decimal `yaml:"medical" json:"medical"`
	StateTax         decimal.Decimal `yaml:"state_tax" json:"state_tax"`
}

// Total returns the sum of the itemized categories.
func (id ItemizedDeductions) Total() decimal.Decimal {
	return money.Sum(id.MortgageInterest, id.PropertyTax, id.Charitable, id.Medical, id.StateTax)
}

// Categories returns the category amounts in display order.
func (id ItemizedDeductions) Categories() []CategoryAmount {
	return []CategoryAmount{
		{ItemizedMortgageInterest, id.MortgageInterest},
		{ItemizedPropertyTax, id.PropertyTax},
		{ItemizedCharitable, id.Charitable},
		{ItemizedMedical, id.Medical},
		{ItemizedStateTax, id.StateTax},
	}
}

// DeductionSelection is either the standard deduction or an itemized list.
// Itemized amounts are kept when Type is standard so a user can switch back without re-entry.
type DeductionSelection struct {
	Type           DeductionType      `yaml:"type" json:"type"`
	StandardAmount decimal.Decimal    `yaml:"standard_amount" json:"standard_amount"`
	Itemized       ItemizedDeductions `yaml:"itemized" json:"itemized"`
}

// Standard returns a standard deduction selection for amount.
func Standard(amount decimal.Decimal) DeductionSelection {
	return DeductionSelection{Type: DeductionStandard, StandardAmount: amount}
}

// Itemized returns an itemized deduction selection.
func Itemized(items ItemizedDeductions) DeductionSelection {
	return DeductionSelection{Type: DeductionItemized, Itemized: items}
}

// Total resolves the deduction amount for the selected variant.
// Anything other than itemized resolves as standard.
func (ds DeductionSelection) Total() decimal.Decimal {
	if ds.Type == DeductionItemized {
		return ds.Itemized.Total()
	}
	return ds.StandardAmount
}

// ParseDeductionType converts a string into a DeductionType.
func ParseDeductionType(s string) (DeductionType, error) {
	switch DeductionType(s) {
	case DeductionStandard, DeductionItemized:
		return DeductionType(s), nil
	case "":
		return DeductionStandard, nil
	}
	return "", fmt.Errorf("unknown deduction type %q", s)
}
