package output

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMarginLeft   = 15.0
	pdfMarginTop    = 15.0
	pdfMarginRight  = 15.0
	pdfMarginBottom = 15.0
	pdfContentWidth = 210.0 - pdfMarginLeft - pdfMarginRight
)

// PDFFormatter renders a one-page printable summary.
type PDFFormatter struct{}

func (p PDFFormatter) Name() string      { return "pdf" }
func (p PDFFormatter) Extension() string { return "pdf" }

func (p PDFFormatter) Format(r *Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginRight)
	pdf.SetAutoPageBreak(true, pdfMarginBottom)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetTitle(fmt.Sprintf("Federal Income Tax Summary %d", r.TaxYear), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(pdfContentWidth, 12, fmt.Sprintf("Federal Income Tax Summary %d", r.TaxYear), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(pdfContentWidth, 6, "Generated: "+r.GeneratedAt.Format("2 January 2006 15:04 MST"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetTextColor(0, 0, 0)
	pdfSection(pdf, "Filer")
	pdfRow(pdf, "Taxpayer", r.Taxpayer)
	pdfRow(pdf, "SSN", r.MaskedSSN)
	pdfRow(pdf, "Filing status", string(r.FilingStatus))
	if r.FilerAge > 0 {
		pdfRow(pdf, "Age at year end", intToString(r.FilerAge))
	}
	pdfRow(pdf, "Return status", string(r.Status))
	if !r.DueDate.IsZero() {
		pdfRow(pdf, "Due date", r.DueDate.Format("2 January 2006"))
	}
	pdf.Ln(4)

	pdfSection(pdf, "Income")
	for _, c := range r.Income {
		pdfRow(pdf, label(c.Name), FormatCurrency(c.Amount))
	}
	pdfTotal(pdf, "Total income", FormatCurrency(r.Result.TotalIncome))
	pdf.Ln(4)

	pdfSection(pdf, fmt.Sprintf("Deductions (%s)", r.DeductionType))
	for _, c := range r.Deductions {
		pdfRow(pdf, label(c.Name), FormatCurrency(c.Amount))
	}
	pdfTotal(pdf, "Total deductions", FormatCurrency(r.Result.TotalDeductions))
	pdf.Ln(4)

	pdfSection(pdf, "Tax by bracket")
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(240, 248, 255)
	cols := []float64{30, 50, 50, 50}
	for i, h := range []string{"Rate", "Bracket start", "Income taxed", "Tax"} {
		pdf.CellFormat(cols[i], 6, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, s := range r.Slices {
		pdf.CellFormat(cols[0], 6, FormatRate(s.Bracket.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[1], 6, FormatCurrency(s.Bracket.Min), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 6, FormatCurrency(s.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 6, FormatCurrency(s.Tax), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdfSection(pdf, "Result")
	pdfRow(pdf, "Taxable income", FormatCurrency(r.Result.TaxableIncome))
	pdfTotal(pdf, "Tax owed", FormatCurrency(r.Result.TaxOwed))
	pdfRow(pdf, "Refund", FormatCurrency(r.Result.RefundAmount))
	pdfRow(pdf, "Marginal rate", FormatRate(r.MarginalRate))
	pdfRow(pdf, "Effective rate", FormatRate(r.EffectiveRate))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pdfSection(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(0, 51, 102)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(pdfContentWidth, 7, title, "", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 10)
}

func pdfRow(pdf *fpdf.Fpdf, name, value string) {
	pdf.CellFormat(70, 6, name, "", 0, "L", false, 0, "")
	pdf.CellFormat(pdfContentWidth-70, 6, value, "", 1, "R", false, 0, "")
}

func pdfTotal(pdf *fpdf.Fpdf, name, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 6, name, "T", 0, "L", false, 0, "")
	pdf.CellFormat(pdfContentWidth-70, 6, value, "T", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 10)
}
