package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/equitytax/tax-calculator/internal/domain"
	money "github.com/equitytax/tax-calculator/pkg/decimal"
)

// TAX CALCULATION ASSUMPTIONS:
//
// 1. Progressive brackets: each slice of taxable income is taxed only at the
//    rate of the bracket it falls in. Brackets are not inflation indexed.
//
// 2. Rounding: only the final tax is rounded, to cents, half away from zero.
//    Per-bracket amounts in Breakdown are exact.
//
// 3. Filing status does not change the table unless the year's rules carry a
//    status-specific schedule (see RuleBook).
//
// 4. No credits, payments, or withholding are applied, so RefundAmount is
//    always zero.

// ComputeTax returns the tax owed on taxableIncome under table.
// Non-positive income owes nothing.
func ComputeTax(taxableIncome decimal.Decimal, table *BracketTable) decimal.Decimal {
	if taxableIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	total := decimal.Zero
	for _, s := range Breakdown(taxableIncome, table) {
		total = total.Add(s.Tax)
	}
	return money.RoundCents(total)
}

// Breakdown splits taxableIncome across the brackets it reaches. Brackets the
// income never reaches are omitted. Slice taxes are not rounded.
func Breakdown(taxableIncome decimal.Decimal, table *BracketTable) []domain.BracketSlice {
	var slices []domain.BracketSlice
	remaining := taxableIncome

	for _, bracket := range table.brackets {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		// The amount taxed here is limited by the bracket width; the top
		// bracket takes everything left.
		inBracket := remaining
		if width, bounded := bracket.Width(); bounded {
			inBracket = decimal.Min(remaining, width)
		}

		slices = append(slices, domain.BracketSlice{
			Bracket: bracket,
			Amount:  inBracket,
			Tax:     inBracket.Mul(bracket.Rate),
		})
		remaining = remaining.Sub(inBracket)
	}

	return slices
}

// ComputeDerivedTotals derives every calculated field of a return from its
// income and deduction inputs. It does no validation of its own.
func ComputeDerivedTotals(income domain.IncomeBreakdown, deductions domain.DeductionSelection, table *BracketTable) domain.TaxComputationResult {
	totalIncome := income.Total()
	totalDeductions := deductions.Total()
	taxable := money.ClampZero(totalIncome.Sub(totalDeductions))
	owed := ComputeTax(taxable, table)

	return domain.TaxComputationResult{
		TotalIncome:     totalIncome,
		TotalDeductions: totalDeductions,
		TaxableIncome:   taxable,
		TaxOwed:         owed,
		RefundAmount:    money.ClampZero(owed.Neg()),
	}
}

// MarginalRate returns the rate applied to the next dollar of taxableIncome.
func MarginalRate(taxableIncome decimal.Decimal, table *BracketTable) decimal.Decimal {
	rate := table.brackets[0].Rate
	for _, b := range table.brackets {
		if taxableIncome.LessThan(b.Min) {
			break
		}
		rate = b.Rate
	}
	return rate
}

// EffectiveRate returns taxOwed / totalIncome to four places, or zero when
// there is no income.
func EffectiveRate(taxOwed, totalIncome decimal.Decimal) decimal.Decimal {
	if totalIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return taxOwed.DivRound(totalIncome, 4)
}

// BestDeduction returns whichever of the standard amount or the itemized list
// gives the larger deduction. Ties go to standard. The result is advisory;
// callers decide whether to apply it.
func BestDeduction(standard decimal.Decimal, itemized domain.ItemizedDeductions) domain.DeductionSelection {
	if itemized.Total().GreaterThan(standard) {
		sel := domain.Itemized(itemized)
		sel.StandardAmount = standard
		return sel
	}
	sel := domain.Standard(standard)
	sel.Itemized = itemized
	return sel
}
