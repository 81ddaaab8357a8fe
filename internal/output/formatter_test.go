package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestReport() *domain.AnalysisReport {
	npv := domain.NpvIrrContext{
		Inputs: domain.NPVInputs{
			CashFlowSchedule:    domain.CashFlowSchedule{Investment: 2_000_000_000, Flows: []float64{400_000_000, 500_000_000, 600_000_000, 700_000_000, 800_000_000}},
			DiscountRatePercent: 12,
		},
		DiscountRatePercent: 12,
		NPV:                 81_612_084.06,
		IRR:                 domain.IRRResult{RatePercent: 13.4531, Iterations: 4, Converged: true},
		SpreadPercent:       1.4531,
		Heatmap: &domain.NPVHeatmap{
			RatesPercent:      []float64{10, 12},
			FlowDeltasPercent: []float64{0},
			Cells: [][]domain.NPVHeatmapCell{
				{{RatePercent: 10, FlowDeltaPercent: 0, NPV: 202_494_861.88}},
				{{RatePercent: 12, FlowDeltaPercent: 0, NPV: 81_612_084.06}},
			},
		},
	}
	payback := domain.PaybackContext{
		Inputs: domain.PaybackInputs{Investment: 10_000_000_000, AnnualCashFlow: 100_000_000, DiscountRatePercent: 10},
		Result: domain.PaybackResult{SimpleYears: 100, DiscountedYears: 20, Horizon: 20},
	}
	sens := domain.SensitivityContext{
		BaseProfit:        decimal.NewFromInt(100),
		BaseMarginPercent: 10,
		Tornado: []domain.TornadoBar{
			{Variable: "revenue", Kind: domain.KindRevenue, DeltaPercent: 10, LowImpact: -100, HighImpact: 100},
			{Variable: "cogs", Kind: domain.KindCost, DeltaPercent: 10, LowImpact: 60, HighImpact: -60},
		},
		BreakEven: []domain.BreakEvenDistance{
			{Variable: "revenue", Kind: domain.KindRevenue, DistancePercent: -10, Direction: domain.DirectionDecrease, Risk: domain.RiskMedium},
		},
		Heatmap: &domain.Heatmap{
			XVariable: "revenue", YVariable: "cogs",
			XDeltas: []float64{0}, YDeltas: []float64{-10, 0},
			Cells: [][]domain.HeatmapCell{{{DeltaX: 0, DeltaY: -10, Profit: decimal.NewFromInt(160), MarginPercent: 16}, {DeltaX: 0, DeltaY: 0, Profit: decimal.NewFromInt(100), MarginPercent: 10}}},
		},
	}
	return &domain.AnalysisReport{
		GeneratedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Outcomes: []domain.AnalysisOutcome{
			{Type: domain.AnalysisNPVIRR, Title: "Plant expansion", Parameters: npv.Inputs, Results: npv,
				Recommendation: domain.Recommendation{Category: domain.DecisionInvest, Reason: "NPV positive", Confidence: 65},
				Insights:       []domain.Insight{{Level: domain.InsightPositive, Title: "Value creating", Detail: "adds value"}}},
			{Type: domain.AnalysisPayback, Title: "Data center", Parameters: payback.Inputs, Results: payback,
				Recommendation: domain.Recommendation{Category: domain.DecisionReject, Reason: "not recovered", Confidence: 85}},
			{Type: domain.AnalysisSensitivity, Title: "Store", Parameters: sens.Inputs, Results: sens,
				Recommendation: domain.Recommendation{Category: domain.DecisionInvest, Reason: "buffer", Confidence: 65}},
		},
		Channels: &domain.ChannelReport{
			Metrics: []domain.ChannelMetrics{{Channel: "search", Revenue: decimal.NewFromInt(1000), ContributionMargin: decimal.NewFromInt(350), MarginPercent: 35, CashConversionRate: 0.9, ProfitSharePercent: 100}},
			Decisions: []domain.ChannelDecision{
				{Channel: "search", Recommendation: domain.Recommendation{Category: domain.DecisionScale, Reason: "strong", Confidence: 80}},
				{Channel: "social", Recommendation: domain.Recommendation{Category: domain.DecisionStop, Reason: "losing", Confidence: 90}},
			},
			Alerts: []domain.RiskAlert{{Channel: "social", Severity: domain.SeverityCritical, Title: "Negative contribution margin", ImpactAmount: decimal.NewFromInt(50), RecommendedAction: "Pause spend"}},
		},
	}
}

func TestConsoleLiteFormatter(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildTestReport())
	require.NoError(t, err)
	content := string(out)
	assert.Contains(t, content, "Plant expansion [npv_irr]: NPV=$81.6M -> invest (65%)")
	assert.Contains(t, content, "Payback=not recovered -> reject")
	assert.Contains(t, content, "Channel social -> stop (90%)")
	// equal confidence: ties go to the alphabetically first title
	assert.Contains(t, content, "Top pick: Plant expansion (confidence 65%)")
	assert.Contains(t, content, "Critical alerts: 1")
}

func TestConsoleVerboseFormatter(t *testing.T) {
	out, err := ConsoleVerboseFormatter{}.Format(buildTestReport())
	require.NoError(t, err)
	content := string(out)
	assert.True(t, strings.Contains(content, "BUSINESS FINANCIAL ANALYSIS"))
	assert.Contains(t, content, DefaultAssumptions[0])
	assert.Contains(t, content, "NPV:             $81,612,084.06")
	assert.Contains(t, content, "IRR:             13.45%")
	assert.Contains(t, content, "RECOMMENDATION: INVEST")
	assert.Contains(t, content, "not recovered within 20 periods")
	assert.Contains(t, content, "TORNADO:")
	assert.Contains(t, content, "CHANNEL PERFORMANCE")
	assert.Contains(t, content, "[critical] social: Negative contribution margin ($50.00)")
}

func TestConsoleVerboseFormatter_UsesReportAssumptions(t *testing.T) {
	r := buildTestReport()
	r.Assumptions = GenerateAssumptions(domain.DefaultDecisionThresholds())
	out, err := ConsoleVerboseFormatter{}.Format(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Payback target 5.0 years; ROI hurdle 10.0% CAGR")
}

func TestCSVSummarizerDeterministicOrder(t *testing.T) {
	out, err := CSVSummarizer{}.Format(buildTestReport())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4, "header + 3 rows")
	assert.True(t, strings.HasPrefix(lines[1], "Data center,payback,reject,85,"))
	assert.True(t, strings.HasPrefix(lines[2], "Plant expansion,npv_irr,invest,65,81612084.06,13.4531,true,"))
	assert.True(t, strings.HasPrefix(lines[3], "Store,sensitivity,"))
}

func TestTornadoCSVExporter(t *testing.T) {
	out, err := TornadoCSVExporter{}.Format(buildTestReport())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Store,revenue,revenue,10.0000,-100.0000,100.0000,-10.0000,medium", lines[1])
	assert.Equal(t, "Store,cogs,cost,10.0000,60.0000,-60.0000,,", lines[2])
}

func TestHeatmapCSVExporter(t *testing.T) {
	out, err := HeatmapCSVExporter{}.Format(buildTestReport())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 1+2+2, "header + 2 NPV cells + 2 profit cells")
	assert.Equal(t, "Plant expansion,discount_rate,12.0000,cash_flow_delta,0.0000,81612084.06,", lines[2])
	assert.Equal(t, "Store,revenue,0.0000,cogs,-10.0000,160.00,16.0000", lines[3])
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildTestReport())
	require.NoError(t, err)

	var decoded struct {
		Outcomes []struct {
			Type    string `json:"analysis_type"`
			Results struct {
				NPV float64 `json:"npv"`
			} `json:"results"`
			Parameters map[string]any `json:"parameters"`
		} `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded.Outcomes, 3)
	assert.Equal(t, "npv_irr", decoded.Outcomes[0].Type)
	assert.InDelta(t, 81_612_084.06, decoded.Outcomes[0].Results.NPV, 0.01)
	assert.Equal(t, 12.0, decoded.Outcomes[0].Parameters["discount_rate_pct"])
}

func TestFormatterRegistry(t *testing.T) {
	assert.Equal(t, []string{"console", "console-lite", "csv", "heatmap-csv", "json", "tornado-csv"}, AvailableFormatterNames())

	tests := map[string]string{
		"console":     "console",
		"VERBOSE":     "console",
		" lite ":      "console-lite",
		"summary":     "csv",
		"tornado":     "tornado-csv",
		"heatmap":     "heatmap-csv",
		"json":        "json",
		"json-pretty": "json",
	}
	for in, want := range tests {
		f := GetFormatterByName(in)
		require.NotNil(t, f, in)
		assert.Equal(t, want, f.Name(), in)
	}

	assert.Nil(t, GetFormatterByName("pdf"))
	_, err := LookupFormatter("pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorContains(t, err, "console-lite")
}

func TestFileExtension(t *testing.T) {
	assert.Equal(t, "csv", FileExtension("tornado"))
	assert.Equal(t, "csv", FileExtension("csv"))
	assert.Equal(t, "json", FileExtension("json"))
	assert.Equal(t, "txt", FileExtension("console-lite"))
}

func TestWriteFormatted(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteFormatted(JSONFormatter{}, buildTestReport(), dir, "json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bizcalc_report_20260301_093000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestFormatterFunc(t *testing.T) {
	f := FormatterFunc{ID: "count", F: func(r *domain.AnalysisReport) ([]byte, error) {
		return []byte(intToString(len(r.Outcomes))), nil
	}}
	out, err := f.Format(buildTestReport())
	require.NoError(t, err)
	assert.Equal(t, "3", string(out))
	assert.Equal(t, "count", f.Name())
}
