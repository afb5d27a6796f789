// Package appraisal implements the investment appraisal engine: net income and
// cash-flow series, NPV, IRR and cash payback for a multi-year schedule.
//
// Everything here is a pure function of its arguments. Callers recompute on
// every input change; Memo can be used to skip identical recomputations.
package appraisal

import (
	"errors"
	"fmt"
	"math"

	"investment_appraisal/pkg/models"
)

// Compute runs the full appraisal for one input set.
//
// IRR and CashPayback are nil when undefined. NPV is nil when the cost of
// capital is -100% or lower or when discounting overflows; a warning says which.
func Compute(inputs models.AppraisalInputs) models.AppraisalResults {
	netIncomes, cashFlows, cumulative := BuildSeries(inputs)

	var totalNetIncome, totalCashFlow float64
	for i := range cashFlows {
		totalNetIncome += netIncomes[i]
		totalCashFlow += cashFlows[i]
	}

	res := models.AppraisalResults{
		TotalNetIncome:      totalNetIncome,
		TotalCashFlow:       totalCashFlow,
		CashFlows:           cashFlows,
		NetIncomes:          netIncomes,
		CumulativeCashFlows: cumulative,
		IRR:                 IRR(cashFlows),
		CashPayback:         CashPayback(cumulative),
	}

	if i, ok := firstNonFinite(netIncomes, cashFlows, cumulative); !ok {
		res.Warnings = append(res.Warnings, fmt.Sprintf("cash flow series overflows at index %d; amounts are too large to represent", i))
	}

	npv, err := NPV(cashFlows, inputs.CostOfCapital)
	switch {
	case errors.Is(err, ErrUndefinedDiscountRate):
		res.Warnings = append(res.Warnings, fmt.Sprintf("npv undefined: cost of capital %.2f%% is not above -100%%", inputs.CostOfCapital))
	case err != nil:
		res.Warnings = append(res.Warnings, "npv undefined: discounted cash flows are not finite")
	default:
		res.NPV = &npv
	}

	// Inflation is carried through untouched; discounting uses the nominal rate.
	if inputs.InflationRate != 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("inflation rate %.2f%% is informational only; npv and irr use the nominal cost of capital", inputs.InflationRate))
	}

	return res
}

// BuildSeries derives the per-year series in schedule order.
//
//	netIncome  = (return - writeOff) * (1 - tax)
//	cashFlow   = netIncome + writeOff - investment
//	cumulative = running sum of cashFlow
func BuildSeries(inputs models.AppraisalInputs) (netIncomes, cashFlows, cumulative []float64) {
	n := len(inputs.YearlyData)
	netIncomes = make([]float64, n)
	cashFlows = make([]float64, n)
	cumulative = make([]float64, n)

	taxFactor := 1 - inputs.TaxRate/100
	running := 0.0
	for i, y := range inputs.YearlyData {
		netIncomes[i] = (y.Return - y.WriteOff) * taxFactor
		// Write-off is added back: it reduced tax, not cash.
		cashFlows[i] = netIncomes[i] + y.WriteOff - y.Investment
		running += cashFlows[i]
		cumulative[i] = running
	}
	return netIncomes, cashFlows, cumulative
}

// firstNonFinite reports the first index at which any series holds NaN or Inf.
func firstNonFinite(series ...[]float64) (int, bool) {
	first := -1
	for _, ss := range series {
		for i, v := range ss {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				if first < 0 || i < first {
					first = i
				}
				break
			}
		}
	}
	return first, first < 0
}
