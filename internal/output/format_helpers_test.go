package output

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"999.999", "$1,000.00"},
		{"1234.567", "$1,234.57"},
		{"5570.5", "$5,570.50"},
		{"1000000", "$1,000,000.00"},
		{"-1234.5", "-$1,234.50"},
	}
	for _, c := range cases {
		v := decimal.RequireFromString(c.in)
		if got := FormatCurrency(v); got != c.want {
			t.Errorf("FormatCurrency(%s) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatPercentage(t *testing.T) {
	v := decimal.NewFromFloat(12.3456)
	got := FormatPercentage(v)
	want := "12.35%"
	if got != want {
		t.Errorf("FormatPercentage(%v) = %q, want %q", v, got, want)
	}
}

func TestFormatRate(t *testing.T) {
	if got, want := FormatRate(decimal.RequireFromString("0.22")), "22.00%"; got != want {
		t.Errorf("FormatRate(0.22) = %q, want %q", got, want)
	}
	if got, want := FormatRate(decimal.RequireFromString("0.0921")), "9.21%"; got != want {
		t.Errorf("FormatRate(0.0921) = %q, want %q", got, want)
	}
}

func TestIntToString(t *testing.T) {
	if got, want := intToString(42), "42"; got != want {
		t.Errorf("intToString(42) = %q, want %q", got, want)
	}
}

func TestBoolToString(t *testing.T) {
	if got, want := boolToString(true), "true"; got != want {
		t.Errorf("boolToString(true) = %q, want %q", got, want)
	}
	if got, want := boolToString(false), "false"; got != want {
		t.Errorf("boolToString(false) = %q, want %q", got, want)
	}
}
