package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/equitytax/tax-calculator/internal/calculation"
	"github.com/equitytax/tax-calculator/internal/config"
	"github.com/equitytax/tax-calculator/internal/logging"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	rulesFile string
	logLevel  string
	debug     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "taxcalc",
		Short:        "Federal income tax calculator",
		Long:         "taxcalc computes progressive federal income tax from return files, prints bracket tables, and serves the tax return API.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.rulesFile, "rules", "", "YAML rules file (default: built-in rules)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log the per-bracket calculation breakdown")

	cmd.AddCommand(
		newCalcCmd(opts),
		newTaxCmd(opts),
		newBracketsCmd(opts),
		newExampleCmd(),
		newServeCmd(opts),
	)
	return cmd
}

// calculator loads the rules and builds a calculator logging through zap.
func (o *rootOptions) calculator() (*calculation.Calculator, *zap.Logger, error) {
	level := o.logLevel
	if o.debug {
		level = "debug"
	}
	log, err := logging.New(level, false)
	if err != nil {
		return nil, nil, err
	}

	rules, err := config.NewInputParser().LoadRules(o.rulesFile)
	if err != nil {
		return nil, nil, err
	}
	calc := calculation.NewCalculator(rules)
	calc.Debug = o.debug
	calc.SetLogger(log.Sugar())
	return calc, log, nil
}
