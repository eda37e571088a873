package calculation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equitytax/tax-calculator/internal/domain"
)

func TestNewBracketTable_Valid(t *testing.T) {
	table, err := NewBracketTable(Brackets2023())
	require.NoError(t, err)
	assert.Equal(t, 7, table.Len())

	// Returned slices are copies.
	b := table.Brackets()
	b[0].Rate = decimal.NewFromInt(1)
	assert.True(t, table.Brackets()[0].Rate.Equal(decimal.NewFromFloat(0.10)))
}

func TestNewBracketTable_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		brackets []domain.TaxBracket
		index    int
	}{
		{"empty", nil, -1},
		{"first min not zero", []domain.TaxBracket{domain.NewBracket(100, 200, 0.1), domain.NewTopBracket(200, 0.2)}, 0},
		{"gap", []domain.TaxBracket{domain.NewBracket(0, 100, 0.1), domain.NewTopBracket(150, 0.2)}, 1},
		{"overlap", []domain.TaxBracket{domain.NewBracket(0, 100, 0.1), domain.NewTopBracket(50, 0.2)}, 1},
		{"zero rate", []domain.TaxBracket{domain.NewBracket(0, 100, 0), domain.NewTopBracket(100, 0.2)}, 0},
		{"rate above one", []domain.TaxBracket{domain.NewBracket(0, 100, 0.1), domain.NewTopBracket(100, 1.5)}, 1},
		{"max not above min", []domain.TaxBracket{domain.NewBracket(0, 0, 0.1), domain.NewTopBracket(0, 0.2)}, 0},
		{"unbounded in the middle", []domain.TaxBracket{domain.NewTopBracket(0, 0.1), domain.NewTopBracket(100, 0.2)}, 0},
		{"bounded top", []domain.TaxBracket{domain.NewBracket(0, 100, 0.1), domain.NewBracket(100, 200, 0.2)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewBracketTable(tt.brackets)
			assert.Nil(t, table)

			var ce *ConfigurationError
			require.True(t, errors.As(err, &ce), "expected ConfigurationError, got %v", err)
			assert.Equal(t, tt.index, ce.Index)
			assert.Contains(t, err.Error(), "invalid tax configuration")
		})
	}
}

func TestMustBracketTable_Panics(t *testing.T) {
	assert.Panics(t, func() { MustBracketTable(nil) })
}

func TestConfigurationError_Message(t *testing.T) {
	err := &ConfigurationError{Year: 2023, Index: 2, Reason: "bad"}
	assert.Equal(t, "invalid tax configuration: tax year 2023: bracket 2: bad", err.Error())

	err = &ConfigurationError{Index: -1, Reason: "bracket table is empty"}
	assert.Equal(t, "invalid tax configuration: bracket table is empty", err.Error())
}
