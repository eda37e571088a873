package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/equitytax/tax-calculator/internal/domain"
	"github.com/equitytax/tax-calculator/internal/output"
)

func newBracketsCmd(root *rootOptions) *cobra.Command {
	var (
		year   int
		status string
	)
	cmd := &cobra.Command{
		Use:   "brackets",
		Short: "Print the bracket table for a tax year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			table, err := calc.TableFor(year, fs)
			if err != nil {
				return fmt.Errorf("%w (loaded years: %v)", err, calc.Rules.Years())
			}
			standard, err := calc.StandardDeduction(year, fs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tax year %d, %s\n", year, fs)
			fmt.Fprintf(out, "Standard deduction: %s\n\n", output.FormatCurrency(standard))

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "Rate\tFrom\tTo\t")
			for _, b := range table.Brackets() {
				to := "and up"
				if b.Max != nil {
					to = output.FormatCurrency(*b.Max)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t\n", output.FormatRate(b.Rate), output.FormatCurrency(b.Min), to)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&year, "year", "y", 0, "tax year (default: latest loaded year)")
	cmd.Flags().StringVar(&status, "status", string(domain.FilingSingle), "filing status")
	return cmd
}
