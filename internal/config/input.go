package config

import (
	"embed"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/equitytax/tax-calculator/internal/calculation"
	"github.com/equitytax/tax-calculator/internal/domain"
)

//go:embed rules/federal.yaml
var rulesFS embed.FS

const defaultRulesFile = "rules/federal.yaml"

// InputParser handles parsing of rule and return files
type InputParser struct {
	// Now supplies the clock used for validation; nil means time.Now.
	Now func() time.Time
}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{Now: time.Now}
}

func (ip *InputParser) now() time.Time {
	if ip.Now == nil {
		return time.Now()
	}
	return ip.Now()
}

// LoadRules loads yearly tax rules from a YAML file. An empty filename loads
// the built-in rules.
func (ip *InputParser) LoadRules(filename string) (*calculation.RuleBook, error) {
	if filename == "" {
		return ip.DefaultRules()
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	rb, err := ip.ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return rb, nil
}

// DefaultRules returns the rules embedded in the binary.
func (ip *InputParser) DefaultRules() (*calculation.RuleBook, error) {
	data, err := rulesFS.ReadFile(defaultRulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded rules: %w", err)
	}
	return ip.ParseRules(data)
}

// ParseRules decodes a rules document and validates every year.
func (ip *InputParser) ParseRules(data []byte) (*calculation.RuleBook, error) {
	var doc domain.RulesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	rb, err := calculation.NewRuleBook(doc.Years...)
	if err != nil {
		return nil, fmt.Errorf("rules validation failed: %w", err)
	}
	return rb, nil
}

// LoadReturn loads a tax return from a YAML or JSON file, applies defaults,
// and validates it.
func (ip *InputParser) LoadReturn(filename string) (*domain.TaxReturn, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	ret, err := ip.ParseReturn(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return ret, nil
}

// ParseReturn decodes and validates a return document. JSON input is accepted
// since it is valid YAML.
func (ip *InputParser) ParseReturn(data []byte) (*domain.TaxReturn, error) {
	var ret domain.TaxReturn
	if err := yaml.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ret.ApplyDefaults()
	if err := ret.Validate(ip.now()); err != nil {
		return nil, fmt.Errorf("return validation failed: %w", err)
	}
	return &ret, nil
}

// CreateExampleReturn creates an example return for the current rules year.
func (ip *InputParser) CreateExampleReturn() *domain.TaxReturn {
	birthDate, _ := time.Parse("2006-01-02", "1985-03-15")

	ret := &domain.TaxReturn{
		UserID:  "user-123",
		TaxYear: 2023,
		PersonalInfo: domain.PersonalInfo{
			FirstName:   "Alex",
			LastName:    "Example",
			SSN:         "123-45-6789",
			DateOfBirth: birthDate,
			Address: domain.Address{
				Street:  "100 Main Street",
				City:    "Springfield",
				State:   "IL",
				ZipCode: "62701",
			},
			FilingStatus: domain.FilingSingle,
		},
		Income: domain.IncomeBreakdown{
			Wages:     decimal.NewFromInt(60000),
			Interest:  decimal.NewFromInt(500),
			Dividends: decimal.Zero,
			Business:  decimal.Zero,
			Rental:    decimal.Zero,
			Other:     decimal.Zero,
		},
		Deductions: domain.DeductionSelection{
			Type:           domain.DeductionStandard,
			StandardAmount: domain.DefaultStandardDeduction,
			Itemized: domain.ItemizedDeductions{
				MortgageInterest: decimal.NewFromInt(8000),
				PropertyTax:      decimal.NewFromInt(3000),
				Charitable:       decimal.NewFromInt(1000),
			},
		},
	}
	ret.ApplyDefaults()
	return ret
}
