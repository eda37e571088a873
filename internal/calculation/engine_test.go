package calculation

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equitytax/tax-calculator/internal/domain"
)

type recordingLogger struct {
	NopLogger
	lines []string
}

func (r *recordingLogger) Debugf(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func jointlyRules() domain.TaxRules {
	rules := DefaultRules2023()
	rules.StandardDeductionByStatus = map[domain.FilingStatus]decimal.Decimal{
		domain.FilingMarriedJointly: decimal.NewFromInt(27700),
	}
	rules.BracketsByStatus = map[domain.FilingStatus][]domain.TaxBracket{
		domain.FilingMarriedJointly: {
			domain.NewBracket(0, 22000, 0.10),
			domain.NewTopBracket(22000, 0.12),
		},
	}
	return rules
}

func TestNewRuleBook(t *testing.T) {
	rb, err := NewRuleBook(DefaultRules2023(), domain.TaxRules{Year: 2022, StandardDeduction: decimal.NewFromInt(12950), Brackets: Brackets2023()})
	require.NoError(t, err)
	assert.Equal(t, []int{2022, 2023}, rb.Years())
	assert.Equal(t, 2023, rb.Latest())

	_, err = rb.ForYear(2019)
	assert.ErrorIs(t, err, ErrUnknownTaxYear)

	yr, err := rb.ForYear(2023)
	require.NoError(t, err)
	assert.True(t, yr.StandardDeduction(domain.FilingSingle).Equal(decimal.NewFromInt(13850)))
}

func TestNewRuleBook_Errors(t *testing.T) {
	var ce *ConfigurationError

	_, err := NewRuleBook()
	assert.True(t, errors.As(err, &ce))

	_, err = NewRuleBook(DefaultRules2023(), DefaultRules2023())
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 2023, ce.Year)

	bad := DefaultRules2023()
	bad.Brackets = bad.Brackets[1:]
	_, err = NewRuleBook(bad)
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 2023, ce.Year)
	assert.Equal(t, 0, ce.Index)

	neg := DefaultRules2023()
	neg.StandardDeduction = decimal.NewFromInt(-1)
	_, err = NewRuleBook(neg)
	assert.True(t, errors.As(err, &ce))

	status := DefaultRules2023()
	status.BracketsByStatus = map[domain.FilingStatus][]domain.TaxBracket{"weird": Brackets2023()}
	_, err = NewRuleBook(status)
	assert.True(t, errors.As(err, &ce))
}

func TestCalculator_Compute(t *testing.T) {
	rb, err := NewRuleBook(jointlyRules())
	require.NoError(t, err)
	calc := NewCalculator(rb)

	ret := &domain.TaxReturn{
		ID:           "r1",
		TaxYear:      2023,
		PersonalInfo: domain.PersonalInfo{FilingStatus: domain.FilingSingle},
		Income:       domain.IncomeBreakdown{Wages: decimal.NewFromInt(60000), Interest: decimal.NewFromInt(500)},
		Deductions:   domain.Standard(decimal.NewFromInt(13850)),
	}

	result, err := calc.Compute(ret)
	require.NoError(t, err)
	assert.True(t, result.TaxOwed.Equal(decimal.RequireFromString("5570.50")))
	assert.True(t, ret.Calculations.TaxOwed.IsZero(), "Compute must not modify the return")

	// Married filing jointly falls on its own table.
	ret.PersonalInfo.FilingStatus = domain.FilingMarriedJointly
	result, err = calc.Compute(ret)
	require.NoError(t, err)
	// 22000*0.10 + 24650*0.12
	assert.True(t, result.TaxOwed.Equal(decimal.NewFromInt(5158)))

	// Head of household has no table of its own.
	ret.PersonalInfo.FilingStatus = domain.FilingHeadOfHousehold
	require.NoError(t, calc.Apply(ret))
	assert.True(t, ret.Calculations.TaxOwed.Equal(decimal.RequireFromString("5570.50")))

	ret.TaxYear = 2021
	assert.ErrorIs(t, calc.Apply(ret), ErrUnknownTaxYear)
}

func TestCalculator_DebugLogging(t *testing.T) {
	logger := &recordingLogger{}
	calc := NewCalculator(nil)
	calc.SetLogger(logger)
	calc.Debug = true

	_, err := calc.Compute(&domain.TaxReturn{
		TaxYear:    2023,
		Income:     domain.IncomeBreakdown{Wages: decimal.NewFromInt(50000)},
		Deductions: domain.Standard(decimal.Zero),
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(strings.Join(logger.lines, "\n"), "Tax Owed:         $6307.50"))

	calc.SetLogger(nil)
	assert.IsType(t, NopLogger{}, calc.Logger)
}

func TestCalculator_EstimateTax(t *testing.T) {
	calc := NewCalculator(nil)

	est, err := calc.EstimateTax(2023, domain.FilingSingle, decimal.NewFromInt(50000))
	require.NoError(t, err)
	assert.True(t, est.TaxOwed.Equal(decimal.RequireFromString("6307.50")))
	assert.True(t, est.MarginalRate.Equal(decimal.RequireFromString("0.22")))
	assert.Len(t, est.Slices, 3)

	_, err = calc.EstimateTax(1999, domain.FilingSingle, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrUnknownTaxYear)

	std, err := calc.StandardDeduction(2023, domain.FilingSingle)
	require.NoError(t, err)
	assert.True(t, std.Equal(decimal.NewFromInt(13850)))
}

func TestCalculator_DefaultStandardAmount(t *testing.T) {
	rb, err := NewRuleBook(jointlyRules())
	require.NoError(t, err)
	calc := NewCalculator(rb)

	ret := &domain.TaxReturn{TaxYear: 2023, Deductions: domain.DeductionSelection{Type: domain.DeductionStandard}}
	ret.PersonalInfo.FilingStatus = domain.FilingMarriedJointly
	calc.DefaultStandardAmount(ret)
	assert.True(t, ret.Deductions.StandardAmount.Equal(decimal.NewFromInt(27700)))

	kept := &domain.TaxReturn{TaxYear: 2023, Deductions: domain.Standard(decimal.NewFromInt(5000))}
	calc.DefaultStandardAmount(kept)
	assert.True(t, kept.Deductions.StandardAmount.Equal(decimal.NewFromInt(5000)))

	itemized := &domain.TaxReturn{TaxYear: 2023, Deductions: domain.Itemized(domain.ItemizedDeductions{})}
	calc.DefaultStandardAmount(itemized)
	assert.True(t, itemized.Deductions.StandardAmount.IsZero())

	unknown := &domain.TaxReturn{TaxYear: 2001, Deductions: domain.DeductionSelection{Type: domain.DeductionStandard}}
	calc.DefaultStandardAmount(unknown)
	assert.True(t, unknown.Deductions.StandardAmount.IsZero())
}
