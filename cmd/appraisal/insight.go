package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"investment_appraisal/pkg/core/insight"
)

var (
	insightFile  string
	insightFlags sensitivityFlags
)

var insightCmd = &cobra.Command{
	Use:   "insight",
	Short: "Ask the configured LLM for an approve/reject/neutral review",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newInsightEnv(cfg)
		if err != nil {
			return err
		}
		return runInsight(cmd.Context(), cmd.OutOrStdout(), env.Analyzer, insightFile, insightFlags)
	},
}

func runInsight(ctx context.Context, out io.Writer, svc scenarioAnalyzer, path string, flags sensitivityFlags) error {
	base, err := loadInputs(path)
	if err != nil {
		return err
	}
	r, i, err := flags.levels()
	if err != nil {
		return err
	}

	res, outcome := svc.ScenarioOrUnavailable(ctx, base, r, i)
	fmt.Fprintf(out, "NPV: %s\n", formatOptional(res.NPV, "%.2f", "undefined"))
	fmt.Fprintf(out, "IRR: %s\n", formatOptional(res.IRR, "%.2f%%", "n/a"))
	fmt.Fprintf(out, "Payback: %s\n\n", formatOptional(res.CashPayback, "%.2f years", "never"))

	formatOutcome(out, outcome)
	return nil
}

// formatOutcome prints the verdict, the markdown analysis and the risks.
func formatOutcome(out io.Writer, o insight.Outcome) {
	if !o.Available || o.Insight == nil {
		fmt.Fprintln(out, insight.UnavailableMessage)
		return
	}
	ins := o.Insight
	fmt.Fprintf(out, "Recommendation: %s\n\n", ins.Recommendation)
	fmt.Fprintln(out, strings.TrimSpace(ins.Analysis))
	if len(ins.Risks) > 0 {
		fmt.Fprintln(out, "\nRisks:")
		for _, r := range ins.Risks {
			fmt.Fprintf(out, "  - %s\n", r)
		}
	}
}

func init() {
	insightCmd.Flags().StringVarP(&insightFile, "file", "f", "", "inputs file (.json, .yaml); defaults to the sample project")
	addSensitivityFlags(insightCmd, &insightFlags)
	rootCmd.AddCommand(insightCmd)
}
