package domain

import "github.com/shopspring/decimal"

// TaxComputationResult holds the quantities derived from a return's income and deductions.
//
// RefundAmount mirrors max(0, -TaxOwed). Since TaxOwed is never negative it is always zero;
// payments and withholding are not credited anywhere yet.
type TaxComputationResult struct {
	TotalIncome     decimal.Decimal `yaml:"total_income" json:"total_income"`
	TotalDeductions decimal.Decimal `yaml:"total_deductions" json:"total_deductions"`
	TaxableIncome   decimal.Decimal `yaml:"taxable_income" json:"taxable_income"`
	TaxOwed         decimal.Decimal `yaml:"tax_owed" json:"tax_owed"`
	RefundAmount    decimal.Decimal `yaml:"refund_amount" json:"refund_amount"`
}

// BracketSlice is the portion of taxable income that fell into one bracket.
type BracketSlice struct {
	Bracket TaxBracket      `json:"bracket"`
	Amount  decimal.Decimal `json:"amount"`
	Tax     decimal.Decimal `json:"tax"`
}
