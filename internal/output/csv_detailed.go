package output

import (
	"bytes"
	"encoding/csv"
)

// CSVDetailedExporter writes one row per bracket of the return's table,
// including brackets the income never reached.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string      { return "detailed-csv" }
func (c CSVDetailedExporter) Extension() string { return "csv" }

func (c CSVDetailedExporter) Format(r *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"TaxYear", "Bracket", "Min", "Max", "Unbounded", "Rate", "AmountInBracket", "TaxInBracket"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for i, b := range r.Brackets {
		amount, tax := "0.00", "0.00"
		if i < len(r.Slices) {
			amount = r.Slices[i].Amount.StringFixed(2)
			tax = r.Slices[i].Tax.StringFixed(2)
		}
		max := ""
		if b.Max != nil {
			max = b.Max.StringFixed(2)
		}
		row := []string{
			intToString(r.TaxYear),
			intToString(i + 1),
			b.Min.StringFixed(2),
			max,
			boolToString(b.Unbounded()),
			b.Rate.String(),
			amount,
			tax,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
