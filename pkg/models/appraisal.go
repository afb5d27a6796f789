package models

// YearlyData is one row of the project schedule. Year is a display label only;
// the engine works on the row position.
type YearlyData struct {
	Year       int     `json:"year" yaml:"year"`
	Investment float64 `json:"investment" yaml:"investment"` // Capital outflow
	Return     float64 `json:"return" yaml:"return"`         // Revenue inflow
	WriteOff   float64 `json:"writeOff" yaml:"writeOff"`     // Non-cash depreciation, tax only
}

// AppraisalInputs holds the global parameters (percent, 10 == 10%) and the schedule.
type AppraisalInputs struct {
	CostOfCapital float64      `json:"costOfCapital" yaml:"costOfCapital"`
	TaxRate       float64      `json:"taxRate" yaml:"taxRate"`
	InflationRate float64      `json:"inflationRate" yaml:"inflationRate"` // Reserved, not used by any formula
	YearlyData    []YearlyData `json:"yearlyData" yaml:"yearlyData"`
}

// Clone returns a deep copy so callers can derive new inputs without aliasing the schedule.
func (in AppraisalInputs) Clone() AppraisalInputs {
	out := in
	out.YearlyData = make([]YearlyData, len(in.YearlyData))
	copy(out.YearlyData, in.YearlyData)
	return out
}

// AppraisalResults is produced by the engine and never mutated afterwards.
// Nil pointers mean the metric is undefined for the given inputs.
type AppraisalResults struct {
	IRR                 *float64  `json:"irr"`         // Percent
	CashPayback         *float64  `json:"cashPayback"` // Fractional years
	NPV                 *float64  `json:"npv"`
	TotalNetIncome      float64   `json:"totalNetIncome"`
	TotalCashFlow       float64   `json:"totalCashFlow"`
	CashFlows           []float64 `json:"cashFlows"`
	NetIncomes          []float64 `json:"netIncomes"`
	CumulativeCashFlows []float64 `json:"cumulativeCashFlows"`
	Warnings            []string  `json:"warnings,omitempty"`
}

// Clone returns a deep copy of the results.
func (r AppraisalResults) Clone() AppraisalResults {
	out := r
	out.IRR = clonePtr(r.IRR)
	out.CashPayback = clonePtr(r.CashPayback)
	out.NPV = clonePtr(r.NPV)
	out.CashFlows = append([]float64(nil), r.CashFlows...)
	out.NetIncomes = append([]float64(nil), r.NetIncomes...)
	out.CumulativeCashFlows = append([]float64(nil), r.CumulativeCashFlows...)
	if r.Warnings != nil {
		out.Warnings = append([]string(nil), r.Warnings...)
	}
	return out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
