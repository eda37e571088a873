package calculation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/equitytax/tax-calculator/internal/domain"
)

// ErrUnknownTaxYear is returned when no rules are loaded for a year.
var ErrUnknownTaxYear = errors.New("no tax rules for year")

// YearRules is one tax year's validated rules.
type YearRules struct {
	Year int

	raw            domain.TaxRules
	table          *BracketTable
	tablesByStatus map[domain.FilingStatus]*BracketTable
}

// Table returns the bracket table for a filing status, falling back to the
// default table.
func (yr *YearRules) Table(fs domain.FilingStatus) *BracketTable {
	if t, ok := yr.tablesByStatus[fs]; ok {
		return t
	}
	return yr.table
}

// StandardDeduction returns the standard deduction for a filing status.
func (yr *YearRules) StandardDeduction(fs domain.FilingStatus) decimal.Decimal {
	return yr.raw.StandardDeductionFor(fs)
}

// RuleBook holds validated rules keyed by tax year. It is read-only after
// construction and safe for concurrent use.
type RuleBook struct {
	years map[int]*YearRules
}

// NewRuleBook validates every year's rules. A year may appear only once.
func NewRuleBook(rules ...domain.TaxRules) (*RuleBook, error) {
	rb := &RuleBook{years: make(map[int]*YearRules, len(rules))}
	for _, r := range rules {
		if _, dup := rb.years[r.Year]; dup {
			return nil, &ConfigurationError{Year: r.Year, Index: -1, Reason: "year defined more than once"}
		}
		yr, err := newYearRules(r)
		if err != nil {
			return nil, err
		}
		rb.years[r.Year] = yr
	}
	if len(rb.years) == 0 {
		return nil, &ConfigurationError{Index: -1, Reason: "no tax years defined"}
	}
	return rb, nil
}

func newYearRules(r domain.TaxRules) (*YearRules, error) {
	if r.Year <= 0 {
		return nil, &ConfigurationError{Index: -1, Reason: fmt.Sprintf("invalid tax year %d", r.Year)}
	}
	if r.StandardDeduction.IsNegative() {
		return nil, &ConfigurationError{Year: r.Year, Index: -1, Reason: "standard deduction cannot be negative"}
	}
	for fs, amt := range r.StandardDeductionByStatus {
		if !fs.Valid() {
			return nil, &ConfigurationError{Year: r.Year, Index: -1, Reason: fmt.Sprintf("unknown filing status %q", fs)}
		}
		if amt.IsNegative() {
			return nil, &ConfigurationError{Year: r.Year, Index: -1, Reason: fmt.Sprintf("standard deduction for %s cannot be negative", fs)}
		}
	}

	table, err := NewBracketTable(r.Brackets)
	if err != nil {
		return nil, withYear(err, r.Year)
	}

	yr := &YearRules{Year: r.Year, raw: r, table: table, tablesByStatus: map[domain.FilingStatus]*BracketTable{}}
	for fs, brackets := range r.BracketsByStatus {
		if !fs.Valid() {
			return nil, &ConfigurationError{Year: r.Year, Index: -1, Reason: fmt.Sprintf("unknown filing status %q", fs)}
		}
		if len(brackets) == 0 {
			continue
		}
		t, err := NewBracketTable(brackets)
		if err != nil {
			return nil, withYear(err, r.Year)
		}
		yr.tablesByStatus[fs] = t
	}
	return yr, nil
}

func withYear(err error, year int) error {
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		ce.Year = year
		return ce
	}
	return err
}

// DefaultRules2023 returns the built-in 2023 rules.
func DefaultRules2023() domain.TaxRules {
	return domain.TaxRules{
		Year:              2023,
		StandardDeduction: domain.DefaultStandardDeduction,
		Brackets:          Brackets2023(),
	}
}

// DefaultRuleBook returns a RuleBook with only the built-in 2023 rules.
func DefaultRuleBook() *RuleBook {
	rb, err := NewRuleBook(DefaultRules2023())
	if err != nil {
		panic(err)
	}
	return rb
}

// ForYear returns the rules for year.
func (rb *RuleBook) ForYear(year int) (*YearRules, error) {
	yr, ok := rb.years[year]
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrUnknownTaxYear, year)
	}
	return yr, nil
}

// Years returns the loaded years in ascending order.
func (rb *RuleBook) Years() []int {
	years := make([]int, 0, len(rb.years))
	for y := range rb.years {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Latest returns the most recent loaded year.
func (rb *RuleBook) Latest() int {
	years := rb.Years()
	return years[len(years)-1]
}
