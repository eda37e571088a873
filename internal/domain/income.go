package domain

import (
	"github.com/shopspring/decimal"

	money "github.com/equitytax/tax-calculator/pkg/decimal"
)

// Income category names.
const (
	IncomeWages     = "wages"
	IncomeInterest  = "interest"
	IncomeDividends = "dividends"
	IncomeBusiness  = "business"
	IncomeRental    = "rental"
	IncomeOther     = "other"
)

// IncomeBreakdown holds the reported income per category.
type IncomeBreakdown struct {
	Wages     decimal.Decimal `yaml:"wages" json:"wages"`
	Interest  decimal.Decimal `yaml:"interest" json:"interest"`
	Dividends decimal.Decimal `yaml:"dividends" json:"dividends"`
	Business  decimal.Decimal `yaml:"business" json:"business"`
	Rental    decimal.Decimal `yaml:"rental" json:"rental"`
	Other     decimal.Decimal `yaml:"other" json:"other"`
}

// Total returns the sum of all income categories.
func (ib IncomeBreakdown) Total() decimal.Decimal {
	return money.Sum(ib.Wages, ib.Interest, ib.Dividends, ib.Business, ib.Rental, ib.Other)
}

// Categories returns the category amounts in display order.
func (ib IncomeBreakdown) Categories() []CategoryAmount {
	return []CategoryAmount{
		{IncomeWages, ib.Wages},
		{IncomeInterest, ib.Interest},
		{IncomeDividends, ib.Dividends},
		{IncomeBusiness, ib.Business},
		{IncomeRental, ib.Rental},
		{IncomeOther, ib.Other},
	}
}

// CategoryAmount pairs a category name with its amount.
type CategoryAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

func validateNonNegative(prefix string, amounts []CategoryAmount) ValidationErrors {
	var errs ValidationErrors
	for _, c := range amounts {
		if c.Amount.IsNegative() {
			errs = append(errs, ValidationError{Field: prefix + "." + c.Name, Message: "cannot be negative"})
		}
	}
	return errs
}
