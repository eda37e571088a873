package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeExample writes the example return to dir and returns its path.
func writeExample(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	_, err := run(t, "example", path)
	require.NoError(t, err)
	return path
}

func TestExampleCommand(t *testing.T) {
	out, err := run(t, "example")
	require.NoError(t, err)
	assert.Contains(t, out, "user_id: user-123")
	assert.Contains(t, out, "tax_year: 2023")
	assert.Contains(t, out, "filing_status: single")
}

func TestCalcCommand_Console(t *testing.T) {
	path := writeExample(t, t.TempDir(), "return.yaml")

	out, err := run(t, "calc", path)
	require.NoError(t, err)
	assert.Contains(t, out, "FEDERAL INCOME TAX SUMMARY (2023)")
	assert.Contains(t, out, "Taxable Income:  $46,650.00")
	assert.Contains(t, out, "Tax Owed:        $5,570.50")
}

func TestCalcCommand_MultipleFilesKeepOrder(t *testing.T) {
	dir := t.TempDir()
	first := writeExample(t, dir, "a.yaml")

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	second := filepath.Join(dir, "b.yaml")
	changed := strings.Replace(string(data), "user_id: user-123", "user_id: user-456", 1)
	require.NoError(t, os.WriteFile(second, []byte(changed), 0644))

	out, err := run(t, "calc", "--format", "csv", second, first)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ReturnID,UserID"))
	assert.Contains(t, lines[1], ",user-456,")
	assert.Contains(t, lines[2], ",user-123,")
	assert.Contains(t, lines[2], "5570.50")
}

func TestCalcCommand_OutDir(t *testing.T) {
	dir := t.TempDir()
	path := writeExample(t, dir, "return.yaml")
	outDir := filepath.Join(dir, "reports")

	out, err := run(t, "calc", "--format", "all", "--out", outDir, path)
	require.NoError(t, err)
	written := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, written, 6)
	for _, p := range written {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
}

func TestCalcCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	path := writeExample(t, dir, "return.yaml")

	_, err := run(t, "calc", "--format", "html", path)
	assert.ErrorContains(t, err, "unsupported output format")

	_, err = run(t, "calc", "--format", "pdf", path)
	assert.ErrorContains(t, err, "requires --out")

	_, err = run(t, "calc", filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("user_id: x\ntax_year: 2023\nincome:\n  wages: -1\n"), 0644))
	_, err = run(t, "calc", bad)
	assert.ErrorContains(t, err, "return validation failed")

	_, err = run(t, "calc")
	assert.Error(t, err)
}

func TestTaxCommand(t *testing.T) {
	out, err := run(t, "tax", "100000", "--year", "2023")
	require.NoError(t, err)
	assert.Contains(t, out, "Tax owed:        $17,400.00")
	assert.Contains(t, out, "Marginal rate:   24.00%")

	out, err = run(t, "tax", "$100,000.00", "--year", "2023")
	require.NoError(t, err)
	assert.Contains(t, out, "Tax owed:        $17,400.00")

	out, err = run(t, "tax", "0", "--year", "2023")
	require.NoError(t, err)
	assert.Contains(t, out, "Tax owed:        $0.00")

	_, err = run(t, "tax", "abc")
	assert.Error(t, err)
	_, err = run(t, "tax", "-5")
	assert.Error(t, err)
	_, err = run(t, "tax", "1000", "--year", "1990")
	assert.Error(t, err)
	_, err = run(t, "tax", "1000", "--status", "nope")
	assert.Error(t, err)
}

func TestBracketsCommand(t *testing.T) {
	out, err := run(t, "brackets", "--year", "2023")
	require.NoError(t, err)
	assert.Contains(t, out, "Tax year 2023, single")
	assert.Contains(t, out, "Standard deduction: $13,850.00")
	assert.Contains(t, out, "$578,125.00")
	assert.Contains(t, out, "and up")

	_, err = run(t, "brackets", "--year", "1990")
	assert.ErrorContains(t, err, "loaded years")
}

func TestRulesFlag(t *testing.T) {
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte(`years:
  - year: 2023
    standard_deduction: 10000
    brackets:
      - { min: 0, max: 50000, rate: 0.10 }
      - { min: 50000, rate: 0.20 }
`), 0644))

	out, err := run(t, "--rules", rules, "tax", "60000")
	require.NoError(t, err)
	assert.Contains(t, out, "Tax owed:        $7,000.00")

	_, err = run(t, "--rules", filepath.Join(t.TempDir(), "none.yaml"), "brackets")
	assert.ErrorContains(t, err, "failed to read file")
}
