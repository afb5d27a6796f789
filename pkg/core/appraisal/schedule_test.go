package appraisal

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investment_appraisal/pkg/models"
)

func TestAddYear(t *testing.T) {
	t.Parallel()
	base := DefaultInputs()

	out := AddYear(base)

	require.Len(t, out.YearlyData, 7)
	assert.Equal(t, models.YearlyData{Year: 6}, out.YearlyData[6])
	assert.Len(t, base.YearlyData, 6)
}

func TestRemoveYear(t *testing.T) {
	t.Parallel()
	base := DefaultInputs()

	out, err := RemoveYear(base, 0)
	require.NoError(t, err)
	require.Len(t, out.YearlyData, 5)
	// Labels are not renumbered.
	assert.Equal(t, 1, out.YearlyData[0].Year)
	assert.Equal(t, 100000.0, base.YearlyData[0].Investment)

	_, err = RemoveYear(base, 6)
	assert.ErrorIs(t, err, ErrYearIndex)
	_, err = RemoveYear(base, -1)
	assert.ErrorIs(t, err, ErrYearIndex)

	single := models.AppraisalInputs{YearlyData: []models.YearlyData{{Year: 0}}}
	kept, err := RemoveYear(single, 0)
	assert.ErrorIs(t, err, ErrLastYear)
	assert.Len(t, kept.YearlyData, 1)
}

func TestUpdateYear(t *testing.T) {
	t.Parallel()
	base := DefaultInputs()

	out, err := UpdateYear(base, 2, FieldWriteOff, 15000)
	require.NoError(t, err)
	assert.Equal(t, 15000.0, out.YearlyData[2].WriteOff)
	assert.Equal(t, 20000.0, base.YearlyData[2].WriteOff)

	out, err = UpdateYear(out, 0, FieldInvestment, 80000)
	require.NoError(t, err)
	out, err = UpdateYear(out, 1, FieldReturn, 41000)
	require.NoError(t, err)
	assert.Equal(t, 80000.0, out.YearlyData[0].Investment)
	assert.Equal(t, 41000.0, out.YearlyData[1].Return)

	_, err = UpdateYear(base, 0, "year", 3)
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = UpdateYear(base, 9, FieldReturn, 1)
	assert.ErrorIs(t, err, ErrYearIndex)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Validate(DefaultInputs()))
	assert.ErrorIs(t, Validate(models.AppraisalInputs{}), ErrEmptySchedule)

	bad := DefaultInputs()
	bad.TaxRate = math.NaN()
	assert.ErrorIs(t, Validate(bad), ErrNonFinite)

	bad = DefaultInputs()
	bad.YearlyData[3].Return = math.Inf(1)
	assert.ErrorIs(t, Validate(bad), ErrNonFinite)
}

func TestMemo(t *testing.T) {
	t.Parallel()
	m := NewMemo(2)
	base := DefaultInputs()

	first := m.Compute(base)
	second := m.Compute(base.Clone())
	assert.Equal(t, first, second)
	hits, misses := m.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	// Mutating a returned value must not leak into the cache.
	second.CashFlows[0] = 42
	*second.NPV = 0
	third := m.Compute(base)
	assert.Equal(t, first, third)

	m.Compute(ApplySensitivity(base, 5, 0))
	m.Compute(ApplySensitivity(base, 10, 0))
	assert.Equal(t, 2, m.Len())
}

func TestMemo_Concurrent(t *testing.T) {
	t.Parallel()
	m := NewMemo(0)
	want := Compute(DefaultInputs())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, m.Compute(DefaultInputs()))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, m.Len())
}

func TestValidate_ReportsFirstGlobalDeterministically(t *testing.T) {
	t.Parallel()
	in := DefaultInputs()
	in.CostOfCapital = math.NaN()
	in.TaxRate = math.Inf(1)
	in.InflationRate = math.NaN()

	for i := 0; i < 20; i++ {
		err := Validate(in)
		require.ErrorIs(t, err, ErrNonFinite)
		assert.Contains(t, err.Error(), "costOfCapital")
		assert.NotContains(t, err.Error(), "taxRate")
	}
}

func TestValidate_RejectsOverflowingSeries(t *testing.T) {
	t.Parallel()
	in := models.AppraisalInputs{
		CostOfCapital: 10,
		YearlyData: []models.YearlyData{
			{Year: 0, Return: 1e308},
			{Year: 1, Return: 1e308},
			{Year: 2, Return: 1e308},
		},
	}

	err := Validate(in)
	require.ErrorIs(t, err, ErrNonFinite)
	assert.Contains(t, err.Error(), "index 1")
}
