package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/equitytax/tax-calculator/internal/domain"
)

// Calculator computes returns against a RuleBook.
type Calculator struct {
	Rules  *RuleBook
	Debug  bool // Log per-bracket detail at debug level
	Logger Logger
}

// NewCalculator creates a calculator over rules. A nil rules argument uses the built-in 2023 rules.
func NewCalculator(rules *RuleBook) *Calculator {
	if rules == nil {
		rules = DefaultRuleBook()
	}
	return &Calculator{Rules: rules, Logger: NopLogger{}}
}

// SetLogger sets the logger for the calculator. If nil is provided, a no-op logger is used.
func (c *Calculator) SetLogger(l Logger) {
	if l == nil {
		c.Logger = NopLogger{}
		return
	}
	c.Logger = l
}

// Compute derives the calculated totals for ret using the table for its tax
// year and filing status. ret is not modified.
func (c *Calculator) Compute(ret *domain.TaxReturn) (domain.TaxComputationResult, error) {
	yr, err := c.Rules.ForYear(ret.TaxYear)
	if err != nil {
		return domain.TaxComputationResult{}, err
	}
	table := yr.Table(ret.PersonalInfo.FilingStatus)
	result := ComputeDerivedTotals(ret.Income, ret.Deductions, table)

	if c.Debug {
		c.Logger.Debugf("TAX CALCULATION BREAKDOWN (return %s, year %d)", ret.ID, ret.TaxYear)
		c.Logger.Debugf("  Total Income:     $%s", result.TotalIncome.StringFixed(2))
		c.Logger.Debugf("  Total Deductions: $%s (%s)", result.TotalDeductions.StringFixed(2), ret.Deductions.Type)
		c.Logger.Debugf("  Taxable Income:   $%s", result.TaxableIncome.StringFixed(2))
		for _, s := range Breakdown(result.TaxableIncome, table) {
			c.Logger.Debugf("    %s%% on $%s = $%s", s.Bracket.Rate.Shift(2).String(), s.Amount.StringFixed(2), s.Tax.StringFixed(2))
		}
		c.Logger.Debugf("  Tax Owed:         $%s", result.TaxOwed.StringFixed(2))
	}
	return result, nil
}

// Apply computes ret's totals and stores them on ret.
func (c *Calculator) Apply(ret *domain.TaxReturn) error {
	result, err := c.Compute(ret)
	if err != nil {
		return fmt.Errorf("compute return %s: %w", ret.ID, err)
	}
	ret.Calculations = result
	return nil
}

// TableFor returns the bracket table for a year and filing status.
func (c *Calculator) TableFor(year int, fs domain.FilingStatus) (*BracketTable, error) {
	yr, err := c.Rules.ForYear(year)
	if err != nil {
		return nil, err
	}
	return yr.Table(fs), nil
}

// StandardDeduction returns the standard deduction for a year and filing status.
func (c *Calculator) StandardDeduction(year int, fs domain.FilingStatus) (decimal.Decimal, error) {
	yr, err := c.Rules.ForYear(year)
	if err != nil {
		return decimal.Zero, err
	}
	return yr.StandardDeduction(fs), nil
}

// Estimate computes tax for a bare taxable income amount.
type Estimate struct {
	Year          int                   `json:"year"`
	TaxableIncome decimal.Decimal       `json:"taxable_income"`
	TaxOwed       decimal.Decimal       `json:"tax_owed"`
	MarginalRate  decimal.Decimal       `json:"marginal_rate"`
	EffectiveRate decimal.Decimal       `json:"effective_rate"`
	Slices        []domain.BracketSlice `json:"slices"`
}

// EstimateTax returns the tax and bracket detail for taxableIncome in year.
func (c *Calculator) EstimateTax(year int, fs domain.FilingStatus, taxableIncome decimal.Decimal) (*Estimate, error) {
	table, err := c.TableFor(year, fs)
	if err != nil {
		return nil, err
	}
	owed := ComputeTax(taxableIncome, table)
	return &Estimate{
		Year:          year,
		TaxableIncome: taxableIncome,
		TaxOwed:       owed,
		MarginalRate:  MarginalRate(taxableIncome, table),
		EffectiveRate: EffectiveRate(owed, taxableIncome),
		Slices:        Breakdown(taxableIncome, table),
	}, nil
}

// DefaultStandardAmount fills a zero StandardAmount on a standard-deduction
// return from the rules for its year and filing status. Years without rules
// are left alone; Compute reports them.
func (c *Calculator) DefaultStandardAmount(ret *domain.TaxReturn) {
	if ret.Deductions.Type != domain.DeductionStandard || !ret.Deductions.StandardAmount.IsZero() {
		return
	}
	amt, err := c.StandardDeduction(ret.TaxYear, ret.PersonalInfo.FilingStatus)
	if err != nil {
		return
	}
	ret.Deductions.StandardAmount = amt
}
