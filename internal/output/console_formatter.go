package output

import (
	"bytes"
	"fmt"
	"strings"
)

// ConsoleFormatter renders a plain-text summary suited to a terminal.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string      { return "console" }
func (c ConsoleFormatter) Extension() string { return "txt" }

func (c ConsoleFormatter) Format(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "FEDERAL INCOME TAX SUMMARY (%d)\n", r.TaxYear)
	fmt.Fprintln(&buf, "================================")
	if r.Taxpayer != "" {
		fmt.Fprintf(&buf, "Taxpayer:        %s", r.Taxpayer)
		if r.MaskedSSN != "" {
			fmt.Fprintf(&buf, " (%s)", r.MaskedSSN)
		}
		fmt.Fprintln(&buf)
	}
	fmt.Fprintf(&buf, "Filing Status:   %s\n", r.FilingStatus)
	if r.FilerAge > 0 {
		fmt.Fprintf(&buf, "Age at Year End: %d\n", r.FilerAge)
	}
	if r.Status != "" {
		fmt.Fprintf(&buf, "Return Status:   %s\n", r.Status)
	}
	if !r.DueDate.IsZero() {
		fmt.Fprintf(&buf, "Due Date:        %s\n", r.DueDate.Format("2006-01-02"))
	}

	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "INCOME")
	for _, c := range r.Income {
		if c.Amount.IsZero() {
			continue
		}
		fmt.Fprintf(&buf, "  %-18s %14s\n", label(c.Name), FormatCurrency(c.Amount))
	}
	fmt.Fprintf(&buf, "  %-18s %14s\n", "Total", FormatCurrency(r.Result.TotalIncome))

	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "DEDUCTIONS (%s)\n", r.DeductionType)
	for _, c := range r.Deductions {
		if c.Amount.IsZero() {
			continue
		}
		fmt.Fprintf(&buf, "  %-18s %14s\n", label(c.Name), FormatCurrency(c.Amount))
	}
	fmt.Fprintf(&buf, "  %-18s %14s\n", "Total", FormatCurrency(r.Result.TotalDeductions))
	if r.Recommended != "" && r.Recommended != r.DeductionType {
		fmt.Fprintf(&buf, "  Note: %s deductions would be larger\n", r.Recommended)
	}

	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "TAX BY BRACKET")
	for _, s := range r.Slices {
		fmt.Fprintf(&buf, "  %7s on %14s = %12s\n", FormatRate(s.Bracket.Rate), FormatCurrency(s.Amount), FormatCurrency(s.Tax))
	}

	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Taxable Income:  %s\n", FormatCurrency(r.Result.TaxableIncome))
	fmt.Fprintf(&buf, "Tax Owed:        %s\n", FormatCurrency(r.Result.TaxOwed))
	fmt.Fprintf(&buf, "Refund:          %s\n", FormatCurrency(r.Result.RefundAmount))
	fmt.Fprintf(&buf, "Marginal Rate:   %s\n", FormatRate(r.MarginalRate))
	fmt.Fprintf(&buf, "Effective Rate:  %s\n", FormatRate(r.EffectiveRate))
	return buf.Bytes(), nil
}

// label turns "mortgage_interest" into "Mortgage interest".
func label(name string) string {
	s := strings.ReplaceAll(name, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
