package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/equitytax/tax-calculator/internal/calculation"
	"github.com/equitytax/tax-calculator/internal/domain"
)

// Report is the formatter input: one return, its computed totals, and the
// bracket detail for its year and filing status.
type Report struct {
	GeneratedAt   time.Time                   `json:"generated_at" yaml:"generated_at"`
	ReturnID      string                      `json:"return_id,omitempty" yaml:"return_id,omitempty"`
	UserID        string                      `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Taxpayer      string                      `json:"taxpayer,omitempty" yaml:"taxpayer,omitempty"`
	MaskedSSN     string                      `json:"masked_ssn,omitempty" yaml:"masked_ssn,omitempty"`
	FilerAge      int                         `json:"filer_age,omitempty" yaml:"filer_age,omitempty"`
	TaxYear       int                         `json:"tax_year" yaml:"tax_year"`
	FilingStatus  domain.FilingStatus         `json:"filing_status" yaml:"filing_status"`
	Status        domain.ReturnStatus         `json:"status,omitempty" yaml:"status,omitempty"`
	DueDate       time.Time                   `json:"due_date" yaml:"due_date"`
	Income        []domain.CategoryAmount     `json:"income" yaml:"income"`
	DeductionType domain.DeductionType        `json:"deduction_type" yaml:"deduction_type"`
	Deductions    []domain.CategoryAmount     `json:"deductions" yaml:"deductions"`
	Result        domain.TaxComputationResult `json:"result" yaml:"result"`
	Slices        []domain.BracketSlice       `json:"slices" yaml:"slices"`
	Brackets      []domain.TaxBracket         `json:"brackets" yaml:"brackets"`
	MarginalRate  decimal.Decimal             `json:"marginal_rate" yaml:"marginal_rate"`
	EffectiveRate decimal.Decimal             `json:"effective_rate" yaml:"effective_rate"`
	// Recommended is the deduction variant with the larger total. Informational only.
	Recommended domain.DeductionType `json:"recommended_deduction" yaml:"recommended_deduction"`
}

// NewReport assembles a report from a return whose Calculations are current
// and the bracket table it was computed with.
func NewReport(ret *domain.TaxReturn, table *calculation.BracketTable, generatedAt time.Time) *Report {
	res := ret.Calculations

	var deductions []domain.CategoryAmount
	if ret.Deductions.Type == domain.DeductionItemized {
		deductions = ret.Deductions.Itemized.Categories()
	} else {
		deductions = []domain.CategoryAmount{{Name: string(domain.DeductionStandard), Amount: ret.Deductions.StandardAmount}}
	}

	return &Report{
		GeneratedAt:   generatedAt,
		ReturnID:      ret.ID,
		UserID:        ret.UserID,
		Taxpayer:      ret.FullName(),
		MaskedSSN:     ret.PersonalInfo.MaskedSSN(),
		FilerAge:      ret.AgeAtYearEnd(),
		TaxYear:       ret.TaxYear,
		FilingStatus:  ret.PersonalInfo.FilingStatus,
		Status:        ret.Status,
		DueDate:       ret.DueDate,
		Income:        ret.Income.Categories(),
		DeductionType: ret.Deductions.Type,
		Deductions:    deductions,
		Result:        res,
		Slices:        calculation.Breakdown(res.TaxableIncome, table),
		Brackets:      table.Brackets(),
		MarginalRate:  calculation.MarginalRate(res.TaxableIncome, table),
		EffectiveRate: calculation.EffectiveRate(res.TaxOwed, res.TotalIncome),
		Recommended:   calculation.BestDeduction(ret.Deductions.StandardAmount, ret.Deductions.Itemized).Type,
	}
}

// BuildReport computes ret with calc and returns its report. ret is not modified.
func BuildReport(calc *calculation.Calculator, ret *domain.TaxReturn, generatedAt time.Time) (*Report, error) {
	table, err := calc.TableFor(ret.TaxYear, ret.PersonalInfo.FilingStatus)
	if err != nil {
		return nil, err
	}
	result, err := calc.Compute(ret)
	if err != nil {
		return nil, err
	}
	computed := *ret
	computed.Calculations = result
	return NewReport(&computed, table, generatedAt), nil
}

// slug names report files after the return, falling back to the year.
func (r *Report) slug() string {
	if r.ReturnID != "" {
		return r.ReturnID
	}
	if r.UserID != "" {
		return fmt.Sprintf("%s_%d", strings.ReplaceAll(r.UserID, "/", "_"), r.TaxYear)
	}
	return intToString(r.TaxYear)
}

// GenerateReport writes the report in the named format into dir. The special
// format "all" writes every registered format. It returns the written paths.
func GenerateReport(r *Report, format, dir string) ([]string, error) {
	if NormalizeFormatName(format) == "all" {
		var paths []string
		for _, f := range builtInFormatters {
			p, err := WriteFormatted(f, r, dir)
			if err != nil {
				return paths, fmt.Errorf("%s: %w", f.Name(), err)
			}
			paths = append(paths, p)
		}
		return paths, nil
	}

	f, err := LookupFormatter(format)
	if err != nil {
		return nil, err
	}
	p, err := WriteFormatted(f, r, dir)
	if err != nil {
		return nil, err
	}
	return []string{p}, nil
}
