package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v2"

	"investment_appraisal/pkg/core/appraisal"
	"investment_appraisal/pkg/models"
)

// loadInputs reads a JSON or YAML inputs file, picked by extension. An empty
// path yields the default project.
func loadInputs(path string) (models.AppraisalInputs, error) {
	if path == "" {
		return appraisal.DefaultInputs(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.AppraisalInputs{}, eris.Wrapf(err, "read inputs %s", path)
	}

	var in models.AppraisalInputs
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(data, &in)
	default:
		err = json.Unmarshal(data, &in)
	}
	if err != nil {
		return models.AppraisalInputs{}, eris.Wrapf(err, "parse inputs %s", path)
	}

	if err := appraisal.Validate(in); err != nil {
		return models.AppraisalInputs{}, eris.Wrapf(err, "inputs %s", path)
	}
	return in, nil
}

// sensitivityFlags holds the shared --return-sensitivity/--investment-sensitivity values.
type sensitivityFlags struct {
	returnPct int
	investPct int
}

func (f sensitivityFlags) levels() (appraisal.SensitivityLevel, appraisal.SensitivityLevel, error) {
	r, err := appraisal.ParseSensitivityLevel(f.returnPct)
	if err != nil {
		return 0, 0, eris.Wrap(err, "--return-sensitivity")
	}
	i, err := appraisal.ParseSensitivityLevel(f.investPct)
	if err != nil {
		return 0, 0, eris.Wrap(err, "--investment-sensitivity")
	}
	return r, i, nil
}
