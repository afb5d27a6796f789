package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"investment_appraisal/pkg/core/appraisal"
	"investment_appraisal/pkg/models"
)

var (
	computeFile  string
	computeFlags sensitivityFlags
)

type computeOutput struct {
	Inputs  models.AppraisalInputs  `json:"inputs"`
	Results models.AppraisalResults `json:"results"`
	Stress  string                  `json:"stress,omitempty"`
}

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute NPV, IRR, payback and the yearly series",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompute(cmd.OutOrStdout(), computeFile, computeFlags)
	},
}

func runCompute(out io.Writer, path string, flags sensitivityFlags) error {
	base, err := loadInputs(path)
	if err != nil {
		return err
	}
	r, i, err := flags.levels()
	if err != nil {
		return err
	}

	active := appraisal.ApplySensitivity(base, r, i)
	result := computeOutput{Inputs: active, Results: appraisal.Compute(active)}
	if appraisal.IsStressed(r, i) {
		result.Stress = appraisal.StressLabel(r, i)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func addSensitivityFlags(cmd *cobra.Command, f *sensitivityFlags) {
	cmd.Flags().IntVar(&f.returnPct, "return-sensitivity", 0, "return adjustment in percent (-20..20, step 5)")
	cmd.Flags().IntVar(&f.investPct, "investment-sensitivity", 0, "investment adjustment in percent (-20..20, step 5, positive lowers cost)")
}

func init() {
	computeCmd.Flags().StringVarP(&computeFile, "file", "f", "", "inputs file (.json, .yaml); defaults to the sample project")
	addSensitivityFlags(computeCmd, &computeFlags)
	rootCmd.AddCommand(computeCmd)
}
