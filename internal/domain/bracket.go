package domain

import (
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// TaxBracket represents one marginal-rate interval [Min, Max).
// A nil Max marks the unbounded top bracket.
type TaxBracket struct {
	Min  decimal.Decimal  `yaml:"min" json:"min"`
	Max  *decimal.Decimal `yaml:"max,omitempty" json:"max,omitempty"`
	Rate decimal.Decimal  `yaml:"rate" json:"rate"`
}

// NewBracket creates a bounded bracket.
func NewBracket(min, max int64, rate float64) TaxBracket {
	upper := decimal.NewFromInt(max)
	return TaxBracket{Min: decimal.NewFromInt(min), Max: &upper, Rate: decimal.NewFromFloat(rate)}
}

// NewTopBracket creates the unbounded top bracket.
func NewTopBracket(min int64, rate float64) TaxBracket {
	return TaxBracket{Min: decimal.NewFromInt(min), Rate: decimal.NewFromFloat(rate)}
}

// Unbounded reports whether the bracket has no upper edge.
func (b TaxBracket) Unbounded() bool {
	return b.Max == nil
}

// Width returns Max-Min. The second result is false for the unbounded bracket.
func (b TaxBracket) Width() (decimal.Decimal, bool) {
	if b.Max == nil {
		return decimal.Zero, false
	}
	return b.Max.Sub(b.Min), true
}

// UnmarshalYAML accepts "max" as a number, a quoted number, null, or one of
// "inf"/"infinity"/".inf" for the top bracket.
func (b *TaxBracket) UnmarshalYAML(value *yaml.Node) error {
	type Alias struct {
		Min  string  `yaml:"min"`
		Max  *string `yaml:"max,omitempty"`
		Rate string  `yaml:"rate"`
	}

	var aux Alias
	if err := value.Decode(&aux); err != nil {
		return err
	}

	min, err := decimal.NewFromString(aux.Min)
	if err != nil {
		return err
	}
	rate, err := decimal.NewFromString(aux.Rate)
	if err != nil {
		return err
	}
	b.Min = min
	b.Rate = rate
	b.Max = nil

	if aux.Max != nil && !isInfinity(*aux.Max) {
		max, err := decimal.NewFromString(*aux.Max)
		if err != nil {
			return err
		}
		b.Max = &max
	}
	return nil
}

// MarshalYAML writes decimals as plain scalars and omits max for the top bracket.
func (b TaxBracket) MarshalYAML() (interface{}, error) {
	out := map[string]string{
		"min":  b.Min.String(),
		"rate": b.Rate.String(),
	}
	if b.Max != nil {
		out["max"] = b.Max.String()
	}
	return out, nil
}

func isInfinity(s string) bool {
	switch s {
	case "", "inf", "Inf", "infinity", "Infinity", ".inf", ".Inf", "+.inf":
		return true
	}
	return false
}
