package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/equitytax/tax-calculator/internal/domain"
)

// ConfigurationError reports a malformed bracket table or rule set.
type ConfigurationError struct {
	Year   int // 0 when the table is not tied to a tax year
	Index  int // bracket index, -1 when the problem is not a single bracket
	Reason string
}

func (e *ConfigurationError) Error() string {
	msg := e.Reason
	if e.Index >= 0 {
		msg = fmt.Sprintf("bracket %d: %s", e.Index, msg)
	}
	if e.Year > 0 {
		msg = fmt.Sprintf("tax year %d: %s", e.Year, msg)
	}
	return "invalid tax configuration: " + msg
}

// BracketTable is a validated, immutable bracket schedule.
// It is safe for concurrent use.
type BracketTable struct {
	brackets []domain.TaxBracket
}

// NewBracketTable validates brackets and returns a table. Brackets must be
// ordered and contiguous starting at zero, with rates in (0, 1] and only the
// last bracket unbounded.
func NewBracketTable(brackets []domain.TaxBracket) (*BracketTable, error) {
	if len(brackets) == 0 {
		return nil, &ConfigurationError{Index: -1, Reason: "bracket table is empty"}
	}

	one := decimal.NewFromInt(1)
	for i, b := range brackets {
		if b.Rate.LessThanOrEqual(decimal.Zero) || b.Rate.GreaterThan(one) {
			return nil, &ConfigurationError{Index: i, Reason: fmt.Sprintf("rate %s outside (0, 1]", b.Rate)}
		}
		if i == 0 {
			if !b.Min.IsZero() {
				return nil, &ConfigurationError{Index: i, Reason: fmt.Sprintf("first bracket must start at 0, got %s", b.Min)}
			}
		} else {
			prev := brackets[i-1]
			if prev.Max == nil {
				return nil, &ConfigurationError{Index: i - 1, Reason: "only the last bracket may be unbounded"}
			}
			if !b.Min.Equal(*prev.Max) {
				return nil, &ConfigurationError{Index: i, Reason: fmt.Sprintf("min %s does not equal previous max %s", b.Min, prev.Max)}
			}
		}
		if b.Max != nil && b.Max.LessThanOrEqual(b.Min) {
			return nil, &ConfigurationError{Index: i, Reason: fmt.Sprintf("max %s must exceed min %s", b.Max, b.Min)}
		}
	}
	if last := len(brackets) - 1; brackets[last].Max != nil {
		return nil, &ConfigurationError{Index: last, Reason: "top bracket must be unbounded"}
	}

	cp := make([]domain.TaxBracket, len(brackets))
	copy(cp, brackets)
	return &BracketTable{brackets: cp}, nil
}

// MustBracketTable is like NewBracketTable but panics on error.
// Use only for tables compiled into the binary.
func MustBracketTable(brackets []domain.TaxBracket) *BracketTable {
	t, err := NewBracketTable(brackets)
	if err != nil {
		panic(err)
	}
	return t
}

// Brackets returns a copy of the bracket definitions.
func (t *BracketTable) Brackets() []domain.TaxBracket {
	cp := make([]domain.TaxBracket, len(t.brackets))
	copy(cp, t.brackets)
	return cp
}

// Len returns the number of brackets.
func (t *BracketTable) Len() int { return len(t.brackets) }

// Brackets2023 returns the 2023 federal single-filer schedule.
func Brackets2023() []domain.TaxBracket {
	return []domain.TaxBracket{
		domain.NewBracket(0, 11000, 0.10),
		domain.NewBracket(11000, 44725, 0.12),
		domain.NewBracket(44725, 95375, 0.22),
		domain.NewBracket(95375, 182050, 0.24),
		domain.NewBracket(182050, 231250, 0.32),
		domain.NewBracket(231250, 578125, 0.35),
		domain.NewTopBracket(578125, 0.37),
	}
}

// Table2023 returns the validated 2023 table.
func Table2023() *BracketTable {
	return MustBracketTable(Brackets2023())
}
