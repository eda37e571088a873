package output

import (
	"strconv"

	"github.com/shopspring/decimal"

	money "github.com/equitytax/tax-calculator/pkg/decimal"
)

// FormatCurrency formats a decimal as USD currency with 2 decimals and
// thousands separators.
func FormatCurrency(amount decimal.Decimal) string {
	return money.NewMoneyFromDecimal(amount).Format()
}

// FormatPercentage formats a decimal as a percentage with 2 decimals.
// The value is expected in percentage units (12.5 means 12.5%).
func FormatPercentage(amount decimal.Decimal) string { return amount.StringFixed(2) + "%" }

// FormatRate formats a 0-1 fraction as a percentage.
func FormatRate(rate decimal.Decimal) string { return FormatPercentage(rate.Shift(2)) }

func intToString(v int) string { return strconv.Itoa(v) }

func boolToString(v bool) string { return strconv.FormatBool(v) }
