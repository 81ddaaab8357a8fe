package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashFlowScheduleValidate(t *testing.T) {
	assert.NoError(t, CashFlowSchedule{Investment: 100, Flows: []float64{50}}.Validate())
	assert.Error(t, CashFlowSchedule{Investment: 100}.Validate())
	assert.Error(t, CashFlowSchedule{Investment: 0, Flows: []float64{50}}.Validate())

	s := CashFlowSchedule{Investment: 100, Flows: []float64{10, 20, 30}}
	assert.Equal(t, 3, s.Periods())
	assert.Equal(t, 60.0, s.TotalReturns())
}

func TestProfitModel(t *testing.T) {
	m := NewProfitModel(1000, 600, 300)
	require.NoError(t, m.Validate())

	assert.Equal(t, "100", m.Profit(nil).String())
	assert.Equal(t, 10.0, m.MarginPercent(nil))
	assert.Equal(t, "200", m.Profit(map[string]float64{"revenue": 10}).String())
	assert.Equal(t, "40", m.Profit(map[string]float64{"cogs": 10}).String())
	assert.Equal(t, "1100", m.Revenue(map[string]float64{"revenue": 10}).String())

	v, ok := m.Variable("opex")
	require.True(t, ok)
	assert.Equal(t, KindCost, v.Kind)
	_, ok = m.Variable("tax")
	assert.False(t, ok)
}

func TestProfitModelValidate(t *testing.T) {
	tests := []struct {
		name  string
		model ProfitModel
	}{
		{"empty", ProfitModel{}},
		{"blank name", ProfitModel{Variables: []PLVariable{{Name: " ", Kind: KindRevenue}}}},
		{"duplicate", ProfitModel{Variables: []PLVariable{{Name: "a", Kind: KindRevenue}, {Name: "a", Kind: KindCost}}}},
		{"bad kind", ProfitModel{Variables: []PLVariable{{Name: "a", Kind: "asset"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.model.Validate())
		})
	}
}

func TestProfitIsExactInCents(t *testing.T) {
	m := ProfitModel{Variables: []PLVariable{
		{Name: "sales", Kind: KindRevenue, Value: decimal.RequireFromString("0.30")},
		{Name: "fees", Kind: KindCost, Value: decimal.RequireFromString("0.10")},
		{Name: "rent", Kind: KindCost, Value: decimal.RequireFromString("0.20")},
	}}
	assert.True(t, m.Profit(nil).IsZero(), "got %s", m.Profit(nil))
}

func TestMarginPercentWithoutRevenue(t *testing.T) {
	m := ProfitModel{Variables: []PLVariable{{Name: "opex", Kind: KindCost, Value: decimal.NewFromInt(10)}}}
	assert.Equal(t, 0.0, m.MarginPercent(nil))
}

func TestAnalysisRequestSection(t *testing.T) {
	req := &AnalysisRequest{Type: AnalysisROI, Title: "r", ROI: &ROIInputs{Investment: 1}}
	section, err := req.Section()
	require.NoError(t, err)
	assert.IsType(t, &ROIInputs{}, section)

	req = &AnalysisRequest{Type: AnalysisPayback, Title: "p", ROI: &ROIInputs{Investment: 1}}
	_, err = req.Section()
	assert.Error(t, err)

	req = &AnalysisRequest{Type: "dcf"}
	_, err = req.Section()
	assert.Error(t, err)
}

func TestAnalysisContextsAreTyped(t *testing.T) {
	contexts := []AnalysisContext{NpvIrrContext{}, PaybackContext{}, RoiContext{}, SensitivityContext{}}
	for i, c := range contexts {
		assert.Equal(t, AnalysisTypes()[i], c.AnalysisType())
		assert.True(t, c.AnalysisType().Valid())
	}
	assert.False(t, AnalysisType("dcf").Valid())
}

func TestNewAnalysisRecord(t *testing.T) {
	inputs := ROIInputs{Investment: 1000, TotalReturns: 2200, Years: 3}
	outcome := &AnalysisOutcome{
		Type:       AnalysisROI,
		Title:      "CRM rollout",
		Parameters: inputs,
		Results:    RoiContext{Inputs: inputs, Result: ROIResult{ROIPercent: 120, Multiple: 2.2, Years: 3}},
		Recommendation: Recommendation{
			Category:   DecisionInvest,
			Reason:     "ROI clears hurdle",
			Confidence: 85,
		},
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	rec, err := NewAnalysisRecord(outcome, "acme", now)
	require.NoError(t, err)
	assert.Equal(t, "acme", rec.TenantID)
	assert.Equal(t, AnalysisROI, rec.AnalysisType)
	assert.Equal(t, RecordStatusCompleted, rec.Status)
	assert.Nil(t, rec.ApprovedBy)
	assert.Nil(t, rec.ApprovedAt)
	assert.False(t, rec.IsApproved())
	assert.Equal(t, time.UTC, rec.CreatedAt.Location())
	assert.Equal(t, "invest: ROI clears hurdle (confidence 85%)", rec.Recommendation)

	var params map[string]any
	require.NoError(t, json.Unmarshal(rec.Parameters, &params))
	assert.Equal(t, 1000.0, params["investment"])

	var results map[string]any
	require.NoError(t, json.Unmarshal(rec.Results, &results))
	assert.Contains(t, results, "result")

	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"approved_by":null`)
}

func TestNewAnalysisRecordRequiresResults(t *testing.T) {
	_, err := NewAnalysisRecord(&AnalysisOutcome{Type: AnalysisROI}, "acme", time.Now())
	assert.Error(t, err)
}

func TestHeatmapCellLookup(t *testing.T) {
	h := &Heatmap{
		XDeltas: []float64{-10, 0},
		YDeltas: []float64{0, 10},
		Cells: [][]HeatmapCell{
			{{DeltaX: -10, DeltaY: 0, Profit: decimal.NewFromInt(1)}, {DeltaX: -10, DeltaY: 10, Profit: decimal.NewFromInt(2)}},
			{{DeltaX: 0, DeltaY: 0, Profit: decimal.NewFromInt(3)}, {DeltaX: 0, DeltaY: 10, Profit: decimal.NewFromInt(4)}},
		},
	}
	c, ok := h.Cell(0, 10)
	require.True(t, ok)
	assert.Equal(t, "4", c.Profit.String())
	_, ok = h.Cell(5, 5)
	assert.False(t, ok)
}
