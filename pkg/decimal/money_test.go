package decimal

import (
	"testing"

	stddec "github.com/shopspring/decimal"
)

func TestConstructors(t *testing.T) {
	d := stddec.NewFromFloat(10.125)
	m2 := NewMoneyFromDecimal(d)
	if !m2.Decimal.Equal(d) {
		t.Fatalf("NewMoneyFromDecimal mismatch: got %s want %s", m2.Decimal, d)
	}

	m3, err := NewMoneyFromString("$13,850.00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m3.String() != "13850.00" {
		t.Fatalf("NewMoneyFromString display mismatch: got %s", m3.String())
	}

	if _, err := NewMoneyFromString("not-a-number"); err == nil {
		t.Fatalf("expected error for invalid string")
	}
}

func TestRoundingHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"2.344", "2.34"},
		{"2.345", "2.35"},
		{"2.355", "2.36"},
		{"2.365", "2.37"},
		{"0.005", "0.01"},
		{"-0.005", "-0.01"},
		{"-2.345", "-2.35"},
		{"1100", "1100.00"},
	}
	for _, c := range cases {
		m, _ := NewMoneyFromString(c.in)
		got := m.Round().String()
		if got != c.out {
			t.Fatalf("round(%s) got %s want %s", c.in, got, c.out)
		}
	}
}

func TestSumAndClamp(t *testing.T) {
	if !Sum().IsZero() {
		t.Fatalf("empty Sum should be zero")
	}
	got := Sum(stddec.NewFromInt(60000), stddec.NewFromInt(500), stddec.Zero)
	if !got.Equal(stddec.NewFromInt(60500)) {
		t.Fatalf("Sum got %s", got)
	}
	if !ClampZero(stddec.NewFromInt(-5)).IsZero() {
		t.Fatalf("ClampZero should floor negatives")
	}
	if got := ClampZero(stddec.NewFromInt(7)); !got.Equal(stddec.NewFromInt(7)) {
		t.Fatalf("ClampZero positive got %s", got)
	}
}

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"0":          "$0.00",
		"12":         "$12.00",
		"999.999":    "$1,000.00",
		"1234.5":     "$1,234.50",
		"330336":     "$330,336.00",
		"1000000.01": "$1,000,000.01",
		"-6307.5":    "-$6,307.50",
		"-0.001":     "$0.00",
	}
	for in, want := range cases {
		if got := NewMoneyFromDecimal(stddec.RequireFromString(in)).Format(); got != want {
			t.Fatalf("Format(%s) got %s want %s", in, got, want)
		}
	}
}
