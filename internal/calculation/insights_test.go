package calculation

import (
	"testing"

	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insightTitles(in []domain.Insight) []string {
	titles := make([]string, 0, len(in))
	for _, i := range in {
		titles = append(titles, i.Title)
	}
	return titles
}

func TestGenerateInsights_NPV(t *testing.T) {
	ctx := domain.NpvIrrContext{
		DiscountRatePercent: 12,
		NPV:                 81_612_084,
		IRR:                 domain.IRRResult{RatePercent: 13.4531, Converged: true},
		SpreadPercent:       1.4531,
		Heatmap: &domain.NPVHeatmap{Cells: [][]domain.NPVHeatmapCell{
			{{NPV: 10}, {NPV: -5}},
			{{NPV: 0}, {NPV: 3}},
		}},
	}
	got := GenerateInsights(ctx)
	require.Equal(t, []string{"Value creating", "Return spread", "Scenario exposure"}, insightTitles(got))
	assert.Equal(t, "The project adds $81.6M of value at a 12.00% discount rate.", got[0].Detail)
	assert.Equal(t, domain.InsightPositive, got[1].Level)
	assert.Equal(t, "2 of 4 rate and cash-flow scenarios have a non-positive NPV.", got[2].Detail)

	// pointer contexts are accepted too
	assert.Equal(t, got, GenerateInsights(&ctx))
}

func TestGenerateInsights_NPVNotConverged(t *testing.T) {
	got := GenerateInsights(domain.NpvIrrContext{NPV: -1000, IRR: domain.IRRResult{Iterations: 100, ResidualNPV: 12.5}})
	require.Equal(t, []string{"Value destroying", "IRR is approximate"}, insightTitles(got))
	assert.Equal(t, domain.InsightWarning, got[0].Level)
	assert.Contains(t, got[1].Detail, "after 100 iterations")
}

func TestGenerateInsights_Payback(t *testing.T) {
	got := GenerateInsights(domain.PaybackContext{Result: domain.PaybackResult{SimpleYears: 3.75, DiscountedYears: 4.9343, Recovered: true, Horizon: 20}})
	require.Equal(t, []string{"Discounted payback", "Cost of waiting"}, insightTitles(got))
	assert.Equal(t, "Discounting adds 1.18 years over the 3.75 year simple payback.", got[1].Detail)

	got = GenerateInsights(domain.PaybackContext{Result: domain.PaybackResult{SimpleYears: 100, DiscountedYears: 20, Horizon: 20}})
	require.Len(t, got, 1)
	assert.Equal(t, domain.InsightWarning, got[0].Level)
	assert.Contains(t, got[0].Detail, "within 20 periods")
}

func TestGenerateInsights_ROI(t *testing.T) {
	got := GenerateInsights(domain.RoiContext{Result: domain.ROIResult{ROIPercent: 120, CAGRPercent: 30.0591, Multiple: 2.2, Years: 3, NetGain: decimal.NewFromInt(1_200_000_000)}})
	require.Len(t, got, 2)
	assert.Equal(t, "Returns of 2.20x the investment give a net gain of $1.2B.", got[0].Detail)
	assert.Equal(t, "120.0% total ROI over 3 years is 30.06% a year compounded.", got[1].Detail)

	loss := GenerateInsights(domain.RoiContext{Result: domain.ROIResult{ROIPercent: -20, Multiple: 0.8, Years: 2, NetGain: decimal.NewFromInt(-200)}})
	assert.Equal(t, domain.InsightWarning, loss[0].Level)
}

func sensitivityContext(t *testing.T, model domain.ProfitModel) domain.SensitivityContext {
	t.Helper()
	coeffs, err := SensitivityCoefficients(model, 10)
	require.NoError(t, err)
	distances, err := CalculateBreakEvenDistances(model, domain.DefaultDecisionThresholds().BreakEven)
	require.NoError(t, err)
	return domain.SensitivityContext{
		Inputs:            domain.SensitivityInputs{ProfitModel: model},
		BaseProfit:        model.Profit(nil),
		BaseMarginPercent: model.MarginPercent(nil),
		Coefficients:      coeffs,
		BreakEven:         distances,
	}
}

func TestGenerateInsights_SensitivityThinBuffer(t *testing.T) {
	// profit 50: a 5% revenue drop wipes it out
	got := GenerateInsights(sensitivityContext(t, domain.NewProfitModel(1000, 650, 300)))
	titles := insightTitles(got)
	require.NotEmpty(t, titles)
	assert.Equal(t, "Key driver", titles[0])
	assert.Equal(t, "A 10% rise in revenue moves profit by +200.0%.", got[0].Detail)
	assert.Contains(t, titles, "Thin buffer")
	assert.NotContains(t, titles, "Resilient margin")
}

func TestGenerateInsights_SensitivityResilient(t *testing.T) {
	got := GenerateInsights(sensitivityContext(t, domain.NewProfitModel(1000, 600, 300)))
	titles := insightTitles(got)
	assert.NotContains(t, titles, "Thin buffer")
	assert.Contains(t, titles, "Resilient margin")
}

func TestGenerateInsights_Unknown(t *testing.T) {
	assert.Nil(t, GenerateInsights(nil))
}
