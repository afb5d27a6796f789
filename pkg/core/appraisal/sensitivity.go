package appraisal

import (
	"github.com/rotisserie/eris"

	"investment_appraisal/pkg/models"
)

// SensitivityLevel is a percentage stress applied uniformly across the schedule.
type SensitivityLevel int

// Levels lists the only accepted sensitivity values, lowest first.
var Levels = []SensitivityLevel{-20, -15, -10, -5, 0, 5, 10, 15, 20}

// ErrInvalidSensitivity is returned for values outside Levels.
var ErrInvalidSensitivity = eris.New("appraisal: sensitivity must be one of -20,-15,-10,-5,0,5,10,15,20")

// ParseSensitivityLevel validates a raw percentage against Levels.
func ParseSensitivityLevel(v int) (SensitivityLevel, error) {
	for _, l := range Levels {
		if int(l) == v {
			return l, nil
		}
	}
	return 0, eris.Wrapf(ErrInvalidSensitivity, "got %d", v)
}

// ReturnFactor scales revenue: +10 means returns are 10% higher.
func (l SensitivityLevel) ReturnFactor() float64 {
	return 1 + float64(l)/100
}

// InvestmentFactor scales investment with the sign inverted: +10 is a 10%
// improvement, i.e. 10% LESS capital spent.
func (l SensitivityLevel) InvestmentFactor() float64 {
	return 1 - float64(l)/100
}

// ApplySensitivity derives the active inputs from a base case.
//
//	adjustedReturn     = baseReturn     * (1 + returnPct/100)
//	adjustedInvestment = baseInvestment * (1 - investmentPct/100)
//
// Example: base investment 100000 with investmentPct = +10 becomes 90000, and
// with investmentPct = -10 becomes 110000. A positive investment sensitivity
// is a favourable stress, like a positive return sensitivity. Write-offs and
// the global rates are left untouched. The base is not modified.
func ApplySensitivity(base models.AppraisalInputs, returnPct, investmentPct SensitivityLevel) models.AppraisalInputs {
	out := base.Clone()
	rf := returnPct.ReturnFactor()
	inf := investmentPct.InvestmentFactor()
	for i := range out.YearlyData {
		out.YearlyData[i].Return *= rf
		out.YearlyData[i].Investment *= inf
	}
	return out
}
