package appraisal

import (
	"math"

	"github.com/rotisserie/eris"

	"investment_appraisal/pkg/models"
)

var (
	ErrLastYear      = eris.New("appraisal: schedule must keep at least one year")
	ErrYearIndex     = eris.New("appraisal: year index out of range")
	ErrUnknownField  = eris.New("appraisal: unknown yearly field")
	ErrEmptySchedule = eris.New("appraisal: schedule has no years")
	ErrNonFinite     = eris.New("appraisal: input is not a finite number")
)

// Field names accepted by UpdateYear, matching the JSON keys.
const (
	FieldInvestment = "investment"
	FieldReturn     = "return"
	FieldWriteOff   = "writeOff"
)

// DefaultInputs is the starter project: 100k invested up front, five years of
// growing returns and straight-line write-offs.
func DefaultInputs() models.AppraisalInputs {
	return models.AppraisalInputs{
		CostOfCapital: 10,
		TaxRate:       25,
		InflationRate: 2,
		YearlyData: []models.YearlyData{
			{Year: 0, Investment: 100000, Return: 0, WriteOff: 0},
			{Year: 1, Investment: 0, Return: 40000, WriteOff: 20000},
			{Year: 2, Investment: 0, Return: 45000, WriteOff: 20000},
			{Year: 3, Investment: 0, Return: 50000, WriteOff: 20000},
			{Year: 4, Investment: 0, Return: 55000, WriteOff: 20000},
			{Year: 5, Investment: 0, Return: 60000, WriteOff: 20000},
		},
	}
}

// AddYear appends an empty year labelled with the current schedule length.
func AddYear(in models.AppraisalInputs) models.AppraisalInputs {
	out := in.Clone()
	out.YearlyData = append(out.YearlyData, models.YearlyData{Year: len(in.YearlyData)})
	return out
}

// RemoveYear drops the row at index. The last remaining row cannot be removed.
// Labels of the remaining rows are kept as they are.
func RemoveYear(in models.AppraisalInputs, index int) (models.AppraisalInputs, error) {
	if index < 0 || index >= len(in.YearlyData) {
		return in, eris.Wrapf(ErrYearIndex, "index %d, %d years", index, len(in.YearlyData))
	}
	if len(in.YearlyData) <= 1 {
		return in, ErrLastYear
	}
	out := in.Clone()
	out.YearlyData = append(out.YearlyData[:index], out.YearlyData[index+1:]...)
	return out, nil
}

// UpdateYear sets one monetary field of the row at index.
func UpdateYear(in models.AppraisalInputs, index int, field string, value float64) (models.AppraisalInputs, error) {
	if index < 0 || index >= len(in.YearlyData) {
		return in, eris.Wrapf(ErrYearIndex, "index %d, %d years", index, len(in.YearlyData))
	}
	out := in.Clone()
	row := &out.YearlyData[index]
	switch field {
	case FieldInvestment:
		row.Investment = value
	case FieldReturn:
		row.Return = value
	case FieldWriteOff:
		row.WriteOff = value
	default:
		return in, eris.Wrapf(ErrUnknownField, "%q", field)
	}
	return out, nil
}

// Validate checks inputs at a trust boundary (HTTP, files). Compute itself
// accepts anything; this only rejects what would make the results meaningless.
func Validate(in models.AppraisalInputs) error {
	if len(in.YearlyData) == 0 {
		return ErrEmptySchedule
	}
	globals := []struct {
		name  string
		value float64
	}{
		{"costOfCapital", in.CostOfCapital},
		{"taxRate", in.TaxRate},
		{"inflationRate", in.InflationRate},
	}
	for _, g := range globals {
		if !finite(g.value) {
			return eris.Wrapf(ErrNonFinite, "%s", g.name)
		}
	}
	for i, y := range in.YearlyData {
		if !finite(y.Investment) || !finite(y.Return) || !finite(y.WriteOff) {
			return eris.Wrapf(ErrNonFinite, "year at index %d", i)
		}
	}
	if i, ok := firstNonFinite(BuildSeries(in)); !ok {
		return eris.Wrapf(ErrNonFinite, "derived cash flow at index %d overflows", i)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
