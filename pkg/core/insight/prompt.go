package insight

import (
	"fmt"
	"strings"

	"investment_appraisal/pkg/models"
)

// promptVariables flattens inputs and results into the template variables of
// the insight.appraisal prompt. Undefined metrics are spelled out so the model
// does not read them as zero.
func promptVariables(in models.AppraisalInputs, res models.AppraisalResults, stress string) map[string]interface{} {
	npv := "undefined (cost of capital at or below -100%)"
	if res.NPV != nil {
		npv = money(*res.NPV)
	}
	irr := "n/a (no rate makes NPV zero in the searched range)"
	if res.IRR != nil {
		irr = fmt.Sprintf("%.2f%%", *res.IRR)
	}
	payback := "never within the projected horizon"
	if res.CashPayback != nil {
		payback = fmt.Sprintf("%.2f years", *res.CashPayback)
	}

	return map[string]interface{}{
		"CostOfCapital":  trimFloat(in.CostOfCapital),
		"TaxRate":        trimFloat(in.TaxRate),
		"InflationRate":  trimFloat(in.InflationRate),
		"Stress":         stress,
		"Schedule":       scheduleTable(in, res),
		"NPV":            npv,
		"IRR":            irr,
		"Payback":        payback,
		"TotalNetIncome": money(res.TotalNetIncome),
		"TotalCashFlow":  money(res.TotalCashFlow),
		"Warnings":       strings.Join(res.Warnings, "; "),
	}
}

func scheduleTable(in models.AppraisalInputs, res models.AppraisalResults) string {
	var sb strings.Builder
	for i, y := range in.YearlyData {
		var ni, cf, cum float64
		if i < len(res.CashFlows) {
			ni, cf, cum = res.NetIncomes[i], res.CashFlows[i], res.CumulativeCashFlows[i]
		}
		fmt.Fprintf(&sb, "%d | %s | %s | %s | %s | %s | %s\n",
			y.Year, money(y.Investment), money(y.Return), money(y.WriteOff), money(ni), money(cf), money(cum))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
