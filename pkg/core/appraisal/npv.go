package appraisal

import (
	"math"

	"github.com/rotisserie/eris"
)

var (
	// ErrUndefinedDiscountRate is returned when 1 + rate <= 0.
	ErrUndefinedDiscountRate = eris.New("appraisal: discount rate must be above -100%")
	// ErrNonFiniteNPV is returned when discounting overflows or the flows are not finite.
	ErrNonFiniteNPV = eris.New("appraisal: npv is not finite")
)

// IRR search domain and limits, in percent.
const (
	IRRMinRate       = -99.0
	IRRMaxRate       = 1000.0
	irrGridStep      = 1.0
	irrRateTolerance = 1e-10
	irrNPVTolerance  = 1e-12 // Relative to sum(|cashFlow|)
	MaxIRRIterations = 200
)

// NPV discounts cashFlows at ratePct (10 == 10%). Position 0 is undiscounted.
func NPV(cashFlows []float64, ratePct float64) (float64, error) {
	factor := 1 + ratePct/100
	if factor <= 0 {
		return 0, ErrUndefinedDiscountRate
	}

	npv := 0.0
	discount := 1.0
	for _, cf := range cashFlows {
		npv += cf * discount
		discount /= factor
	}
	if math.IsNaN(npv) || math.IsInf(npv, 0) {
		return 0, ErrNonFiniteNPV
	}
	return npv, nil
}

// IRR returns the rate in percent at which NPV(cashFlows) is zero, or nil.
//
// The domain [IRRMinRate, IRRMaxRate] is scanned upwards on a 1% grid and the
// first bracketed sign change is refined by bisection. With several sign
// changes this is the lowest root visible at grid resolution. Nil is returned
// when all flows are zero, when NPV never changes sign, or when bisection does
// not converge within MaxIRRIterations.
func IRR(cashFlows []float64) *float64 {
	absSum := 0.0
	for _, cf := range cashFlows {
		absSum += math.Abs(cf)
	}
	if absSum == 0 || math.IsNaN(absSum) || math.IsInf(absSum, 0) {
		return nil
	}
	tol := irrNPVTolerance * absSum

	var prevRate, prevNPV float64
	havePrev := false
	steps := int(math.Round((IRRMaxRate - IRRMinRate) / irrGridStep))
	for k := 0; k <= steps; k++ {
		rate := IRRMinRate + float64(k)*irrGridStep
		v, err := NPV(cashFlows, rate)
		if err != nil {
			// Overflow near -100%: do not bracket across it.
			havePrev = false
			continue
		}
		if v == 0 {
			return &rate
		}
		if havePrev && (v < 0) != (prevNPV < 0) {
			return bisectIRR(cashFlows, prevRate, rate, prevNPV, tol)
		}
		prevRate, prevNPV, havePrev = rate, v, true
	}
	return nil
}

// bisectIRR narrows [lo, hi] where NPV changes sign. fLo is NPV(lo).
func bisectIRR(cashFlows []float64, lo, hi, fLo, tol float64) *float64 {
	for i := 0; i < MaxIRRIterations; i++ {
		mid := lo + (hi-lo)/2
		fMid, err := NPV(cashFlows, mid)
		if err != nil {
			return nil
		}
		if math.Abs(fMid) <= tol || (hi-lo)/2 < irrRateTolerance {
			return &mid
		}
		if (fMid < 0) == (fLo < 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return nil
}
