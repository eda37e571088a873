package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/equitytax/tax-calculator/internal/domain"
	"github.com/equitytax/tax-calculator/internal/output"
	money "github.com/equitytax/tax-calculator/pkg/decimal"
)

func newTaxCmd(root *rootOptions) *cobra.Command {
	var (
		year   int
		status string
	)
	cmd := &cobra.Command{
		Use:     "tax <taxable-income>",
		Example: "  taxcalc tax 100000\n  taxcalc tax '$85,250.50' --year 2024 --status married_filing_jointly",
		Short:   "Compute tax for a taxable income amount",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.NewMoneyFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			income := amount.Decimal
			if income.IsNegative() {
				return fmt.Errorf("taxable income cannot be negative")
			}
			fs := domain.FilingStatus(status)
			if !fs.Valid() {
				return fmt.Errorf("unknown filing status %q (want one of %v)", status, domain.FilingStatuses)
			}

			calc, log, err := root.calculator()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			if year == 0 {
				year = calc.Rules.Latest()
			}
			est, err := calc.EstimateTax(year, fs, income)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tax year:        %d (%s)\n", est.Year, status)
			fmt.Fprintf(out, "Taxable income:  %s\n", output.FormatCurrency(est.TaxableIncome))
			for _, s := range est.Slices {
				fmt.Fprintf(out, "  %7s on %14s = %12s\n", output.FormatRate(s.Bracket.Rate), output.FormatCurrency(s.Amount), output.FormatCurrency(s.Tax))
			}
			fmt.Fprintf(out, "Tax owed:        %s\n", output.FormatCurrency(est.TaxOwed))
			fmt.Fprintf(out, "Marginal rate:   %s\n", output.FormatRate(est.MarginalRate))
			fmt.Fprintf(out, "Effective rate:  %s\n", output.FormatRate(est.EffectiveRate))
			return nil
		},
	}
	cmd.Flags().IntVarP(&year, "year", "y", 0, "tax year (default: latest loaded year)")
	cmd.Flags().StringVar(&status, "status", string(domain.FilingSingle), "filing status")
	return cmd
}
