package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/equitytax/tax-calculator/internal/config"
)

func newExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example [file]",
		Short: "Write an example return file",
		Long:  "Write an example return in YAML to the given file, or to stdout when no file is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(config.NewInputParser().CreateExampleReturn())
			if err != nil {
				return fmt.Errorf("failed to marshal example return: %w", err)
			}
			if len(args) == 0 {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(args[0], data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Example return written to %s\n", args[0])
			return nil
		},
	}
}
