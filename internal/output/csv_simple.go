package output

import (
	"bytes"
	"encoding/csv"
)

// CSVSummarizer implements the summary CSV output (one row per return).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string      { return "csv" }
func (c CSVSummarizer) Extension() string { return "csv" }

var summaryHeader = []string{
	"ReturnID", "UserID", "TaxYear", "FilingStatus", "Status", "DeductionType",
	"TotalIncome", "TotalDeductions", "TaxableIncome", "TaxOwed", "RefundAmount",
	"MarginalRate", "EffectiveRate",
}

func (c CSVSummarizer) Format(r *Report) ([]byte, error) {
	return FormatSummaryCSV([]*Report{r})
}

// FormatSummaryCSV writes one summary row per report, in the order given.
func FormatSummaryCSV(reports []*Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(summaryHeader); err != nil {
		return nil, err
	}
	for _, r := range reports {
		row := []string{
			r.ReturnID,
			r.UserID,
			intToString(r.TaxYear),
			string(r.FilingStatus),
			string(r.Status),
			string(r.DeductionType),
			r.Result.TotalIncome.StringFixed(2),
			r.Result.TotalDeductions.StringFixed(2),
			r.Result.TaxableIncome.StringFixed(2),
			r.Result.TaxOwed.StringFixed(2),
			r.Result.RefundAmount.StringFixed(2),
			r.MarginalRate.StringFixed(4),
			r.EffectiveRate.StringFixed(4),
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
