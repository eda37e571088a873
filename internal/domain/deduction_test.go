package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomeBreakdown_Total(t *testing.T) {
	ib := IncomeBreakdown{
		Wages:     decimal.NewFromInt(50000),
		Interest:  decimal.NewFromInt(1000),
		Dividends: decimal.NewFromInt(500),
		Business:  decimal.NewFromInt(10000),
		Rental:    decimal.NewFromInt(5000),
		Other:     decimal.NewFromInt(1000),
	}
	assert.True(t, ib.Total().Equal(decimal.NewFromInt(67500)))
	assert.True(t, IncomeBreakdown{}.Total().IsZero())
	assert.Len(t, ib.Categories(), 6)
}

func TestDeductionSelection_Total(t *testing.T) {
	items := ItemizedDeductions{
		MortgageInterest: decimal.NewFromInt(12000),
		PropertyTax:      decimal.NewFromInt(5000),
		Charitable:       decimal.NewFromInt(2000),
		Medical:          decimal.NewFromInt(1000),
		StateTax:         decimal.NewFromInt(3000),
	}

	testCases := []struct {
		name      string
		selection DeductionSelection
		expected  int64
	}{
		{"standard", Standard(DefaultStandardDeduction), 13850},
		{"itemized", Itemized(items), 23000},
		{"standard keeps itemized values unused", DeductionSelection{Type: DeductionStandard, StandardAmount: decimal.NewFromInt(13850), Itemized: items}, 13850},
		{"empty type resolves as standard", DeductionSelection{StandardAmount: decimal.NewFromInt(5000), Itemized: items}, 5000},
		{"itemized with nothing", Itemized(ItemizedDeductions{}), 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.selection.Total().Equal(decimal.NewFromInt(tc.expected)), "got %s", tc.selection.Total())
		})
	}
}

func TestParseDeductionType(t *testing.T) {
	dt, err := ParseDeductionType("itemized")
	require.NoError(t, err)
	assert.Equal(t, DeductionItemized, dt)

	dt, err = ParseDeductionType("")
	require.NoError(t, err)
	assert.Equal(t, DeductionStandard, dt)

	_, err = ParseDeductionType("bogus")
	assert.Error(t, err)
}

func TestTaxRules_StatusFallback(t *testing.T) {
	jointly := []TaxBracket{NewBracket(0, 22000, 0.10), NewTopBracket(22000, 0.12)}
	rules := TaxRules{
		Year:              2023,
		StandardDeduction: decimal.NewFromInt(13850),
		Brackets:          []TaxBracket{NewBracket(0, 11000, 0.10), NewTopBracket(11000, 0.12)},
		StandardDeductionByStatus: map[FilingStatus]decimal.Decimal{
			FilingMarriedJointly: decimal.NewFromInt(27700),
		},
		BracketsByStatus: map[FilingStatus][]TaxBracket{
			FilingMarriedJointly: jointly,
		},
	}

	assert.True(t, rules.StandardDeductionFor(FilingSingle).Equal(decimal.NewFromInt(13850)))
	assert.True(t, rules.StandardDeductionFor(FilingMarriedJointly).Equal(decimal.NewFromInt(27700)))
}
