package appraisal

import "math"

// CashPayback returns the fractional year position at which the cumulative
// cash flow first turns non-negative, or nil if it never does.
//
// The crossing inside year i is interpolated linearly:
//
//	(i-1) + -cum[i-1] / (cum[i] - cum[i-1])
//
// so [-50, -10, 30] pays back at 1.25.
func CashPayback(cumulative []float64) *float64 {
	for i, c := range cumulative {
		if c < 0 || math.IsNaN(c) {
			continue
		}
		if i == 0 {
			zero := 0.0
			return &zero
		}
		prev := cumulative[i-1]
		if math.IsNaN(prev) {
			return nil
		}
		// First non-negative entry, so prev < 0 and the denominator is positive.
		p := float64(i-1) + (-prev)/(c-prev)
		return &p
	}
	return nil
}
