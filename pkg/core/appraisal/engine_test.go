package appraisal

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investment_appraisal/pkg/models"
)

func TestCompute_TextbookCase(t *testing.T) {
	t.Parallel()
	in := DefaultInputs()

	res := Compute(in)

	assert.InDeltaSlice(t, []float64{0, 15000, 18750, 22500, 26250, 30000}, res.NetIncomes, 1e-9)
	assert.InDeltaSlice(t, []float64{-100000, 35000, 38750, 42500, 46250, 50000}, res.CashFlows, 1e-9)
	assert.InDeltaSlice(t, []float64{-100000, -65000, -26250, 16250, 62500, 112500}, res.CumulativeCashFlows, 1e-9)
	assert.InDelta(t, 112500.0, res.TotalNetIncome, 1e-9)
	assert.InDelta(t, 112500.0, res.TotalCashFlow, 1e-9)

	require.NotNil(t, res.NPV)
	assert.InDelta(t, 58409.29, *res.NPV, 0.01)
	require.NotNil(t, res.IRR)
	assert.InDelta(t, 29.44, *res.IRR, 0.01)
	require.NotNil(t, res.CashPayback)
	assert.InDelta(t, 2.0+26250.0/42500.0, *res.CashPayback, 0.01)

	// Running again must give byte-identical numbers.
	again := Compute(in)
	assert.Equal(t, res, again)
}

func TestCompute_AllZeroCashFlows(t *testing.T) {
	t.Parallel()
	in := models.AppraisalInputs{
		CostOfCapital: 10,
		TaxRate:       25,
		YearlyData: []models.YearlyData{
			{Year: 0}, {Year: 1}, {Year: 2},
		},
	}

	res := Compute(in)

	require.NotNil(t, res.NPV)
	assert.Equal(t, 0.0, *res.NPV)
	require.NotNil(t, res.CashPayback)
	assert.Equal(t, 0.0, *res.CashPayback)
	assert.Nil(t, res.IRR, "NPV is zero at every rate, no unique IRR")
}

func TestCompute_InvestmentOnly(t *testing.T) {
	t.Parallel()
	in := models.AppraisalInputs{
		CostOfCapital: 10,
		TaxRate:       25,
		YearlyData:    []models.YearlyData{{Year: 0, Investment: 5000}},
	}

	res := Compute(in)

	assert.Equal(t, []float64{-5000}, res.CashFlows)
	assert.Nil(t, res.CashPayback)
	assert.Nil(t, res.IRR)
	require.NotNil(t, res.NPV)
	assert.Equal(t, -5000.0, *res.NPV)
}

func TestCompute_EmptySchedule(t *testing.T) {
	t.Parallel()
	res := Compute(models.AppraisalInputs{CostOfCapital: 10})

	assert.Empty(t, res.CashFlows)
	assert.Empty(t, res.NetIncomes)
	assert.Empty(t, res.CumulativeCashFlows)
	require.NotNil(t, res.NPV)
	assert.Equal(t, 0.0, *res.NPV)
	assert.Nil(t, res.IRR)
	assert.Nil(t, res.CashPayback)
}

func TestCompute_UndefinedDiscountRate(t *testing.T) {
	t.Parallel()
	for _, rate := range []float64{-100, -150} {
		in := DefaultInputs()
		in.CostOfCapital = rate
		in.InflationRate = 0

		res := Compute(in)

		assert.Nil(t, res.NPV, "rate %v", rate)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "npv undefined")
		assert.Contains(t, res.Warnings[0], "-100%")
		// The other metrics do not depend on the cost of capital.
		assert.NotNil(t, res.IRR)
		assert.NotNil(t, res.CashPayback)
	}
}

func TestCompute_InflationIsReserved(t *testing.T) {
	t.Parallel()
	a := DefaultInputs()
	a.InflationRate = 0
	b := DefaultInputs()
	b.InflationRate = 7

	ra, rb := Compute(a), Compute(b)

	assert.Equal(t, *ra.NPV, *rb.NPV)
	assert.Equal(t, *ra.IRR, *rb.IRR)
	assert.Empty(t, ra.Warnings)
	require.Len(t, rb.Warnings, 1)
	assert.Contains(t, rb.Warnings[0], "informational only")
}

func TestCompute_YearLabelsIgnored(t *testing.T) {
	t.Parallel()
	in := DefaultInputs()
	relabelled := in.Clone()
	for i := range relabelled.YearlyData {
		relabelled.YearlyData[i].Year = 2030 + 3*i
	}

	assert.Equal(t, *Compute(in).NPV, *Compute(relabelled).NPV)
}

func TestNPV_DecreasesWithCostOfCapital(t *testing.T) {
	t.Parallel()
	_, flows, _ := BuildSeries(DefaultInputs())

	prev := math.Inf(1)
	for _, rate := range []float64{-50, -10, 0, 5, 10, 15, 25, 50, 100, 500} {
		npv, err := NPV(flows, rate)
		require.NoError(t, err)
		assert.Less(t, npv, prev, "rate %v", rate)
		prev = npv
	}
}

func TestNPV_Errors(t *testing.T) {
	t.Parallel()
	_, err := NPV([]float64{-1, 2}, -100)
	assert.ErrorIs(t, err, ErrUndefinedDiscountRate)

	_, err = NPV([]float64{-1, 2}, -100.5)
	assert.ErrorIs(t, err, ErrUndefinedDiscountRate)

	_, err = NPV([]float64{math.Inf(1)}, 10)
	assert.ErrorIs(t, err, ErrNonFiniteNPV)
}

func TestIRR(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		flows []float64
		want  *float64
	}{
		{name: "simple doubling", flows: []float64{-100, 200}, want: ptr(100)},
		{name: "negative rate", flows: []float64{-100, 50}, want: ptr(-50)},
		{name: "zero rate", flows: []float64{-100, 60, 40}, want: ptr(0)},
		{name: "two roots returns the lower", flows: []float64{-100, 230, -132}, want: ptr(10)},
		{name: "all positive", flows: []float64{10, 20, 30}},
		{name: "all negative", flows: []float64{-10, -20}},
		{name: "root above search domain", flows: []float64{-1, 100}},
		{name: "empty", flows: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := IRR(tt.flows)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.01)
		})
	}
}

func TestIRR_AlwaysTerminatesInsideDomain(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 300; i++ {
		n := 1 + rng.Intn(12)
		flows := make([]float64, n)
		for j := range flows {
			flows[j] = (rng.Float64() - 0.5) * math.Pow(10, float64(rng.Intn(8)))
		}

		got := IRR(flows)
		if got == nil {
			continue
		}
		assert.GreaterOrEqual(t, *got, IRRMinRate)
		assert.LessOrEqual(t, *got, IRRMaxRate)
		npv, err := NPV(flows, *got)
		require.NoError(t, err)
		// Scale-aware check: the root is a real sign change, not a guess.
		lo, _ := NPV(flows, *got-1e-6)
		hi, _ := NPV(flows, *got+1e-6)
		assert.True(t, npv == 0 || (lo <= 0) != (hi <= 0) || math.Abs(npv) < 1e-6*sumAbs(flows), "flows %v rate %v", flows, *got)
	}
}

func TestCashPayback(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		cumulative []float64
		want       *float64
	}{
		{name: "interpolated", cumulative: []float64{-50, -10, 30}, want: ptr(1.25)},
		{name: "exact breakeven", cumulative: []float64{-50, 0, 30}, want: ptr(1)},
		{name: "positive from start", cumulative: []float64{10, 20}, want: ptr(0)},
		{name: "zero at start", cumulative: []float64{0, -5}, want: ptr(0)},
		{name: "first crossing wins", cumulative: []float64{-10, 10, -5, 20}, want: ptr(0.5)},
		{name: "never recovers", cumulative: []float64{-10, -5, -1}},
		{name: "empty", cumulative: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CashPayback(tt.cumulative)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-12)
		})
	}
}

func ptr(v float64) *float64 { return &v }

func sumAbs(flows []float64) float64 {
	s := 0.0
	for _, f := range flows {
		s += math.Abs(f)
	}
	return s
}

func TestCompute_OverflowingSeries(t *testing.T) {
	t.Parallel()
	in := models.AppraisalInputs{
		CostOfCapital: 10,
		YearlyData: []models.YearlyData{
			{Year: 0, Return: 1e308},
			{Year: 1, Return: 1e308},
			{Year: 2, Return: 1e308},
		},
	}

	res := Compute(in)

	assert.Nil(t, res.NPV)
	assert.Nil(t, res.IRR)
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "overflows at index 1")
	assert.Equal(t, "npv undefined: discounted cash flows are not finite", res.Warnings[1])
	for _, w := range res.Warnings {
		assert.NotContains(t, w, "-100%")
	}

	_, err := NPV(res.CashFlows, 10)
	assert.ErrorIs(t, err, ErrNonFiniteNPV)
}

func TestFirstNonFinite(t *testing.T) {
	t.Parallel()
	i, ok := firstNonFinite([]float64{1, 2, 3}, []float64{4})
	assert.True(t, ok)
	assert.Equal(t, -1, i)

	i, ok = firstNonFinite([]float64{1, 2, math.Inf(1)}, []float64{0, math.NaN()})
	assert.False(t, ok)
	assert.Equal(t, 1, i)
}
