package appraisal

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"investment_appraisal/pkg/models"
)

// ScenarioType groups sensitivity levels for display.
type ScenarioType string

const (
	ScenarioBase  ScenarioType = "base"
	ScenarioLower ScenarioType = "lower"
	ScenarioBoost ScenarioType = "boost"
)

// Scenario is a labelled sensitivity level.
type Scenario struct {
	Label string           `json:"label"`
	Value SensitivityLevel `json:"value"`
	Type  ScenarioType     `json:"type"`
}

// Scenarios returns one entry per level, in Levels order.
func Scenarios() []Scenario {
	out := make([]Scenario, 0, len(Levels))
	for _, l := range Levels {
		out = append(out, ScenarioFor(l))
	}
	return out
}

// ScenarioFor labels a single level ("20% Lower", "Base Case", "5% Boost").
func ScenarioFor(l SensitivityLevel) Scenario {
	switch {
	case l == 0:
		return Scenario{Label: "Base Case", Value: l, Type: ScenarioBase}
	case l < 0:
		return Scenario{Label: fmt.Sprintf("%d%% Lower", -l), Value: l, Type: ScenarioLower}
	default:
		return Scenario{Label: fmt.Sprintf("%d%% Boost", l), Value: l, Type: ScenarioBoost}
	}
}

// IsStressed reports whether either knob moves away from the base case.
func IsStressed(returnPct, investmentPct SensitivityLevel) bool {
	return returnPct != 0 || investmentPct != 0
}

// StressLabel describes the active stress in cost terms, e.g.
// "Returns: +5% | Invest: -10% cost" for return +5 and investment +10.
func StressLabel(returnPct, investmentPct SensitivityLevel) string {
	ret := fmt.Sprintf("Returns: %d%%", returnPct)
	if returnPct > 0 {
		ret = fmt.Sprintf("Returns: +%d%%", returnPct)
	}

	// Investment is reported as the change in cost, so the sign flips.
	abs := int(investmentPct)
	if abs < 0 {
		abs = -abs
	}
	sign := "+"
	if investmentPct > 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s | Invest: %s%d%% cost", ret, sign, abs)
}

// GridCell is one (return, investment) combination of the scenario grid.
type GridCell struct {
	ReturnSensitivity     SensitivityLevel        `json:"returnSensitivity"`
	InvestmentSensitivity SensitivityLevel        `json:"investmentSensitivity"`
	Results               models.AppraisalResults `json:"results"`
}

// ScenarioGrid holds len(Levels)^2 cells; Cells[i][j] uses Levels[i] for
// returns and Levels[j] for investment.
type ScenarioGrid struct {
	Levels []SensitivityLevel `json:"levels"`
	Cells  [][]GridCell       `json:"cells"`
}

// Cell looks up a combination by level.
func (g *ScenarioGrid) Cell(returnPct, investmentPct SensitivityLevel) (GridCell, bool) {
	ri, ii := -1, -1
	for i, l := range g.Levels {
		if l == returnPct {
			ri = i
		}
		if l == investmentPct {
			ii = i
		}
	}
	if ri < 0 || ii < 0 {
		return GridCell{}, false
	}
	return g.Cells[ri][ii], true
}

// RunScenarioGrid computes every sensitivity combination for base.
// Cells are independent engine calls; ctx only stops scheduling further work.
func RunScenarioGrid(ctx context.Context, base models.AppraisalInputs) (*ScenarioGrid, error) {
	grid := &ScenarioGrid{
		Levels: append([]SensitivityLevel(nil), Levels...),
		Cells:  make([][]GridCell, len(Levels)),
	}
	for i := range grid.Cells {
		grid.Cells[i] = make([]GridCell, len(Levels))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, rl := range Levels {
		for j, il := range Levels {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				grid.Cells[i][j] = GridCell{
					ReturnSensitivity:     rl,
					InvestmentSensitivity: il,
					Results:               Compute(ApplySensitivity(base, rl, il)),
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "appraisal: scenario grid")
	}
	return grid, nil
}
