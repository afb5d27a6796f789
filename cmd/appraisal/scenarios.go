package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"investment_appraisal/pkg/core/appraisal"
)

var scenariosFile string

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Print NPV and IRR for every return/investment sensitivity pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScenarios(cmd.Context(), cmd.OutOrStdout(), scenariosFile)
	},
}

func runScenarios(ctx context.Context, out io.Writer, path string) error {
	base, err := loadInputs(path)
	if err != nil {
		return err
	}
	grid, err := appraisal.RunScenarioGrid(ctx, base)
	if err != nil {
		return err
	}
	formatGrid(out, grid)
	return nil
}

// formatGrid writes one row per cell, base case flagged.
func formatGrid(out io.Writer, grid *appraisal.ScenarioGrid) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RETURN\tINVEST\tNPV\tIRR\tPAYBACK\t")
	_, _ = fmt.Fprintln(w, "------\t------\t---\t---\t-------\t")

	for _, row := range grid.Cells {
		for _, c := range row {
			res := c.Results
			marker := ""
			if !appraisal.IsStressed(c.ReturnSensitivity, c.InvestmentSensitivity) {
				marker = "base"
			}
			_, _ = fmt.Fprintf(w, "%+d%%\t%+d%%\t%s\t%s\t%s\t%s\n",
				c.ReturnSensitivity,
				c.InvestmentSensitivity,
				formatOptional(res.NPV, "%.2f", "n/a"),
				formatOptional(res.IRR, "%.2f%%", "n/a"),
				formatOptional(res.CashPayback, "%.2fy", "never"),
				marker,
			)
		}
	}
	_ = w.Flush()
}

func formatOptional(v *float64, format, missing string) string {
	if v == nil {
		return missing
	}
	return fmt.Sprintf(format, *v)
}

func init() {
	scenariosCmd.Flags().StringVarP(&scenariosFile, "file", "f", "", "inputs file (.json, .yaml); defaults to the sample project")
	rootCmd.AddCommand(scenariosCmd)
}
