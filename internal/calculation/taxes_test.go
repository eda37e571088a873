package calculation

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equitytax/tax-calculator/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// TestComputeTax2023 checks tax owed against hand-computed 2023 figures.
func TestComputeTax2023(t *testing.T) {
	table := Table2023()

	tests := []struct {
		name     string
		taxable  string
		expected string
	}{
		{"zero income", "0", "0"},
		{"negative income", "-5000", "0"},
		{"first bracket edge", "11000", "1100.00"},
		{"just past first edge", "11000.01", "1100.00"},
		{"second bracket edge", "44725", "5147.00"},
		{"into 22% bracket", "50000", "6307.50"},
		{"worked example", "46650", "5570.50"},
		{"third bracket edge", "95375", "16290.00"},
		{"round hundred thousand", "100000", "17400.00"},
		{"fourth bracket edge", "182050", "37092.00"},
		{"fifth bracket edge", "231250", "52836.00"},
		{"quarter million", "250000", "59398.50"},
		{"top bracket edge", "578125", "174242.25"},
		{"one million", "1000000", "330336.00"},
		{"fractional", "12345.67", "1261.48"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax := ComputeTax(d(tt.taxable), table)
			assert.True(t, tax.Equal(d(tt.expected)), "taxable %s: expected %s, got %s", tt.taxable, tt.expected, tax.StringFixed(2))
		})
	}
}

// TestComputeTax_RoundsHalfAwayFromZero pins the rounding rule: half-cent
// results round up, not to even.
func TestComputeTax_RoundsHalfAwayFromZero(t *testing.T) {
	table := Table2023()

	assert.Equal(t, "0.01", ComputeTax(d("0.05"), table).StringFixed(2)) // 0.005
	assert.Equal(t, "1.01", ComputeTax(d("10.05"), table).StringFixed(2)) // 1.005
	assert.Equal(t, "0.02", ComputeTax(d("0.15"), table).StringFixed(2)) // 0.015
	assert.Equal(t, "0.00", ComputeTax(d("0.01"), table).StringFixed(2)) // 0.001
}

func TestComputeTax_Monotonic(t *testing.T) {
	table := Table2023()
	prev := decimal.Zero
	for x := int64(0); x <= 700000; x += 2500 {
		tax := ComputeTax(decimal.NewFromInt(x), table)
		assert.True(t, tax.GreaterThanOrEqual(prev), "tax decreased at %d", x)
		prev = tax
	}
}

func TestComputeTax_BoundaryContinuity(t *testing.T) {
	table := Table2023()
	cent := d("0.01")
	for _, b := range table.Brackets()[1:] {
		below := ComputeTax(b.Min.Sub(cent), table)
		at := ComputeTax(b.Min, table)
		above := ComputeTax(b.Min.Add(cent), table)

		assert.True(t, at.Sub(below).LessThanOrEqual(cent), "jump below %s", b.Min)
		assert.True(t, above.Sub(at).LessThanOrEqual(cent), "jump above %s", b.Min)
	}
}

func TestComputeTax_ConcurrentCallers(t *testing.T) {
	table := Table2023()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, ComputeTax(d("50000"), table).Equal(d("6307.50")))
		}()
	}
	wg.Wait()
}

func TestBreakdown(t *testing.T) {
	table := Table2023()

	slices := Breakdown(d("1000000"), table)
	require.Len(t, slices, 7)

	expectedTax := []string{"1100", "4047", "11143", "20802", "15744", "121406.25", "156093.75"}
	amount := decimal.Zero
	for i, s := range slices {
		assert.True(t, s.Tax.Equal(d(expectedTax[i])), "bracket %d: got %s", i, s.Tax)
		amount = amount.Add(s.Amount)
	}
	assert.True(t, amount.Equal(d("1000000")))
	assert.True(t, slices[6].Bracket.Unbounded())

	assert.Len(t, Breakdown(d("11000"), table), 1)
	assert.Len(t, Breakdown(d("11000.01"), table), 2)
	assert.Empty(t, Breakdown(decimal.Zero, table))
}

func TestComputeDerivedTotals(t *testing.T) {
	table := Table2023()

	t.Run("standard deduction worked example", func(t *testing.T) {
		income := domain.IncomeBreakdown{Wages: d("60000"), Interest: d("500")}
		result := ComputeDerivedTotals(income, domain.Standard(d("13850")), table)

		assert.True(t, result.TotalIncome.Equal(d("60500")))
		assert.True(t, result.TotalDeductions.Equal(d("13850")))
		assert.True(t, result.TaxableIncome.Equal(d("46650")))
		assert.True(t, result.TaxOwed.Equal(d("5570.50")))
		assert.True(t, result.RefundAmount.IsZero())
	})

	t.Run("deduction larger than income", func(t *testing.T) {
		income := domain.IncomeBreakdown{Wages: d("10000")}
		result := ComputeDerivedTotals(income, domain.Standard(d("13850")), table)

		assert.True(t, result.TaxableIncome.IsZero())
		assert.True(t, result.TaxOwed.IsZero())
		assert.True(t, result.RefundAmount.IsZero())
	})

	t.Run("itemized", func(t *testing.T) {
		income := domain.IncomeBreakdown{Wages: d("100000"), Business: d("20000")}
		items := domain.ItemizedDeductions{MortgageInterest: d("15000"), StateTax: d("5000")}
		result := ComputeDerivedTotals(income, domain.Itemized(items), table)

		assert.True(t, result.TotalDeductions.Equal(d("20000")))
		assert.True(t, result.TaxableIncome.Equal(d("100000")))
		assert.True(t, result.TaxOwed.Equal(d("17400")))
	})

	t.Run("idempotent", func(t *testing.T) {
		income := domain.IncomeBreakdown{Wages: d("75000"), Dividends: d("1234.56")}
		ded := domain.Standard(d("13850"))
		first := ComputeDerivedTotals(income, ded, table)
		second := ComputeDerivedTotals(income, ded, table)
		assert.Equal(t, first, second)
	})
}

func TestMarginalAndEffectiveRate(t *testing.T) {
	table := Table2023()

	assert.True(t, MarginalRate(decimal.Zero, table).Equal(d("0.10")))
	assert.True(t, MarginalRate(d("10999.99"), table).Equal(d("0.10")))
	assert.True(t, MarginalRate(d("11000"), table).Equal(d("0.12")))
	assert.True(t, MarginalRate(d("50000"), table).Equal(d("0.22")))
	assert.True(t, MarginalRate(d("2000000"), table).Equal(d("0.37")))

	assert.True(t, EffectiveRate(d("1100"), d("11000")).Equal(d("0.1")))
	assert.True(t, EffectiveRate(d("6307.50"), d("50000")).Equal(d("0.1262")))
	assert.True(t, EffectiveRate(d("100"), decimal.Zero).IsZero())
}

func TestBestDeduction(t *testing.T) {
	standard := d("13850")

	small := domain.ItemizedDeductions{Charitable: d("2000")}
	sel := BestDeduction(standard, small)
	assert.Equal(t, domain.DeductionStandard, sel.Type)
	assert.True(t, sel.Total().Equal(standard))
	assert.True(t, sel.Itemized.Charitable.Equal(d("2000")))

	large := domain.ItemizedDeductions{MortgageInterest: d("12000"), PropertyTax: d("4000")}
	sel = BestDeduction(standard, large)
	assert.Equal(t, domain.DeductionItemized, sel.Type)
	assert.True(t, sel.Total().Equal(d("16000")))

	tie := domain.ItemizedDeductions{MortgageInterest: d("13850")}
	assert.Equal(t, domain.DeductionStandard, BestDeduction(standard, tie).Type)
}
