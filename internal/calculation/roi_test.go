package calculation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestROI(t *testing.T) {
	roi, err := ROI(1_000_000_000, 2_200_000_000)
	require.NoError(t, err)
	assert.Equal(t, 120.0, roi)

	multiple, err := InvestmentMultiple(1_000_000_000, 2_200_000_000)
	require.NoError(t, err)
	assert.Equal(t, 2.2, multiple)

	_, err = ROI(0, 100)
	assert.ErrorIs(t, err, ErrDivisionByZero)
	_, err = InvestmentMultiple(0, 100)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestCAGR(t *testing.T) {
	tests := []struct {
		name  string
		roi   float64
		years int
		want  float64
	}{
		{"120% over 3 years", 120, 3, 0.3006},
		{"10% over 3 years", 10, 3, 0.0323},
		{"flat", 0, 5, 0},
		{"one year equals ROI", 25, 1, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CAGR(tt.roi, tt.years)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestCAGR_Errors(t *testing.T) {
	_, err := CAGR(50, 0)
	assert.ErrorIs(t, err, ErrNonPositiveYears)

	_, err = CAGR(-150, 3)
	assert.ErrorIs(t, err, ErrUndefinedGrowth)
}

func TestAnalyzeROI(t *testing.T) {
	res, err := AnalyzeROI(1_000_000_000, 2_200_000_000, 3)
	require.NoError(t, err)
	assert.Equal(t, 120.0, res.ROIPercent)
	assert.InDelta(t, 30.06, res.CAGRPercent, 0.01)
	assert.Equal(t, 2.2, res.Multiple)
	assert.Equal(t, 3, res.Years)
	assert.Equal(t, "1200000000", res.NetGain.String())
}

func TestAnalyzeROI_RejectsNonFiniteAmounts(t *testing.T) {
	_, err := AnalyzeROI(math.Inf(1), 100, 1)
	assert.ErrorIs(t, err, ErrNonFiniteResult)
	_, err = AnalyzeYearlyReturns(100, []float64{50, math.NaN()})
	assert.ErrorIs(t, err, ErrNonFiniteResult)
}

func TestAnalyzeYearlyReturns(t *testing.T) {
	res, err := AnalyzeYearlyReturns(1000, []float64{500, 700, 1000})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Years)
	assert.InDelta(t, 120, res.ROIPercent, 1e-9)

	_, err = AnalyzeYearlyReturns(1000, nil)
	assert.ErrorIs(t, err, ErrNonPositiveYears)
}

func TestAnalyzeYearlyReturns_SumsInCents(t *testing.T) {
	// 0.1 + 0.2 is not 0.3 in binary floating point.
	res, err := AnalyzeYearlyReturns(0.3, []float64{0.1, 0.2})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.ROIPercent)
	assert.True(t, res.NetGain.IsZero())
	assert.Equal(t, 1.0, res.Multiple)
}
