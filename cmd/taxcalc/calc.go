package main

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/equitytax/tax-calculator/internal/calculation"
	"github.com/equitytax/tax-calculator/internal/config"
	"github.com/equitytax/tax-calculator/internal/output"
)

type calcOptions struct {
	format  string
	outDir  string
	workers int
}

func newCalcCmd(root *rootOptions) *cobra.Command {
	opts := &calcOptions{}
	cmd := &cobra.Command{
		Use:   "calc <return.yaml>...",
		Short: "Compute tax for one or more return files",
		Long: `Compute tax for one or more YAML or JSON return files.

Files are computed concurrently; results are printed in the order given.
With --out, one report file per return is written to the directory instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, log, err := root.calculator()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			formatter, err := output.LookupFormatter(opts.format)
			if err != nil && output.NormalizeFormatName(opts.format) != "all" {
				return err
			}

			reports, err := computeReports(cmd.Context(), calc, config.NewInputParser(), args, opts.workers, time.Now().UTC())
			if err != nil {
				return err
			}

			if opts.outDir != "" {
				for _, rep := range reports {
					paths, err := output.GenerateReport(rep, opts.format, opts.outDir)
					if err != nil {
						return err
					}
					for _, p := range paths {
						fmt.Fprintln(cmd.OutOrStdout(), p)
					}
				}
				return nil
			}
			if formatter == nil {
				return fmt.Errorf("format %q requires --out", opts.format)
			}
			return writeReports(cmd, formatter, reports)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "console",
		fmt.Sprintf("output format: %v or all", output.AvailableFormatterNames()))
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "write report files into this directory")
	cmd.Flags().IntVar(&opts.workers, "workers", 4, "number of returns computed at once")
	return cmd
}

// computeReports loads and computes every file. reports[i] belongs to files[i].
func computeReports(ctx context.Context, calc *calculation.Calculator, parser *config.InputParser, files []string, workers int, now time.Time) ([]*output.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	reports := make([]*output.Report, len(files))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ret, err := parser.LoadReturn(file)
			if err != nil {
				return err
			}
			calc.DefaultStandardAmount(ret)
			rep, err := output.BuildReport(calc, ret, now)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// writeReports prints reports to stdout. CSV summaries share one header;
// PDF cannot go to a terminal.
func writeReports(cmd *cobra.Command, f output.Formatter, reports []*output.Report) error {
	out := cmd.OutOrStdout()
	switch f.Name() {
	case "pdf":
		return fmt.Errorf("pdf output requires --out")
	case "csv":
		data, err := output.FormatSummaryCSV(reports)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	for i, rep := range reports {
		data, err := f.Format(rep)
		if err != nil {
			return err
		}
		if i > 0 && f.Name() == "console" {
			fmt.Fprintln(out)
		}
		if f.Name() == "yaml" && i > 0 {
			fmt.Fprintln(out, "---")
		}
		if _, err := out.Write(bytes.TrimRight(data, "\n")); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return nil
}
