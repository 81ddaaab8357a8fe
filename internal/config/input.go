package config

import (
	"fmt"
	"math"
	"os"

	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const maxLifetimeYears = 100

// InputParser handles parsing of analysis files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads an analysis file from YAML (JSON is accepted as a YAML subset).
// Thresholds missing from the file keep their default values.
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates an analysis file already in memory.
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	config := domain.Configuration{Thresholds: domain.DefaultDecisionThresholds()}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if len(config.Analyses) == 0 && len(config.Channels) == 0 {
		return fmt.Errorf("no analyses or channels provided")
	}

	if err := ip.validateThresholds(&config.Thresholds); err != nil {
		return fmt.Errorf("thresholds validation failed: %w", err)
	}

	for i := range config.Analyses {
		if err := ip.ValidateRequest(&config.Analyses[i]); err != nil {
			return fmt.Errorf("analysis %d validation failed: %w", i, err)
		}
	}

	for i, ch := range config.Channels {
		if err := ip.validateChannel(&ch); err != nil {
			return fmt.Errorf("channel %d validation failed: %w", i, err)
		}
	}

	return nil
}

// ValidateRequest validates a single analysis request
func (ip *InputParser) ValidateRequest(req *domain.AnalysisRequest) error {
	if req.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !req.Type.Valid() {
		return fmt.Errorf("type must be one of %v, got %q", domain.AnalysisTypes(), req.Type)
	}
	if _, err := req.Section(); err != nil {
		return err
	}

	switch req.Type {
	case domain.AnalysisNPVIRR:
		return ip.validateNPV(req.NPV)
	case domain.AnalysisPayback:
		return ip.validatePayback(req.Payback)
	case domain.AnalysisROI:
		return ip.validateROI(req.ROI)
	case domain.AnalysisSensitivity:
		return ip.validateSensitivity(req.Sensitivity)
	}
	return nil
}

// finite rejects NaN and infinities, which YAML accepts as .nan and .inf.
func finite(field string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number, got %v", field, v)
		}
	}
	return nil
}

func (ip *InputParser) validateNPV(in *domain.NPVInputs) error {
	if err := finite("investment", in.Investment); err != nil {
		return err
	}
	if err := finite("cash_flows", in.Flows...); err != nil {
		return err
	}
	if err := finite("discount_rate_pct", in.DiscountRatePercent); err != nil {
		return err
	}
	if err := finite("heatmap_rates_pct", in.HeatmapRatesPercent...); err != nil {
		return err
	}
	if err := finite("heatmap_flow_deltas_pct", in.HeatmapFlowDeltasPct...); err != nil {
		return err
	}
	if err := in.CashFlowSchedule.Validate(); err != nil {
		return err
	}
	if in.DiscountRatePercent <= -100 {
		return fmt.Errorf("discount rate must be greater than -100%%")
	}
	for _, r := range in.HeatmapRatesPercent {
		if r <= -100 {
			return fmt.Errorf("heatmap rates must be greater than -100%%")
		}
	}
	return nil
}

func (ip *InputParser) validatePayback(in *domain.PaybackInputs) error {
	if err := finite("payback inputs", in.Investment, in.AnnualCashFlow, in.GrowthRatePercent, in.DiscountRatePercent); err != nil {
		return err
	}
	if in.Investment <= 0 {
		return fmt.Errorf("investment must be positive")
	}
	if in.AnnualCashFlow <= 0 {
		return fmt.Errorf("annual cash flow must be positive")
	}
	if in.DiscountRatePercent <= -100 {
		return fmt.Errorf("discount rate must be greater than -100%%")
	}
	if in.GrowthRatePercent <= -100 {
		return fmt.Errorf("growth rate must be greater than -100%%")
	}
	if in.Horizon < 0 || in.Horizon > 100 {
		return fmt.Errorf("horizon must be between 0 (default) and 100 periods")
	}
	return nil
}

func (ip *InputParser) validateROI(in *domain.ROIInputs) error {
	if err := finite("roi inputs", in.Investment, in.TotalReturns); err != nil {
		return err
	}
	if err := finite("yearly_returns", in.YearlyReturns...); err != nil {
		return err
	}
	if in.Investment <= 0 {
		return fmt.Errorf("investment must be positive")
	}
	if len(in.YearlyReturns) == 0 && in.Years <= 0 {
		return fmt.Errorf("either years or yearly_returns is required")
	}
	return nil
}

func (ip *InputParser) validateSensitivity(in *domain.SensitivityInputs) error {
	if err := in.ProfitModel.Validate(); err != nil {
		return err
	}
	if err := finite("delta_pct", in.DeltaPercent); err != nil {
		return err
	}
	if in.DeltaPercent < 0 || in.DeltaPercent > 100 {
		return fmt.Errorf("delta_pct must be between 0 and 100")
	}
	if in.Heatmap != nil {
		if _, ok := in.ProfitModel.Variable(in.Heatmap.X); !ok {
			return fmt.Errorf("heatmap x variable %q is not in the model", in.Heatmap.X)
		}
		if _, ok := in.ProfitModel.Variable(in.Heatmap.Y); !ok {
			return fmt.Errorf("heatmap y variable %q is not in the model", in.Heatmap.Y)
		}
		if err := finite("heatmap deltas", append(append([]float64(nil), in.Heatmap.XDeltasPercent...), in.Heatmap.YDeltasPercent...)...); err != nil {
			return err
		}
	}
	return nil
}

func (ip *InputParser) validateChannel(ch *domain.ChannelInput) error {
	if ch.Name == "" {
		return fmt.Errorf("channel name is required")
	}
	for _, v := range []decimal.Decimal{ch.Revenue, ch.COGS, ch.AdSpend, ch.OtherVariableCosts, ch.CashCollected} {
		if v.IsNegative() {
			return fmt.Errorf("channel %s: amounts cannot be negative", ch.Name)
		}
	}
	return nil
}

// ValidateLTV checks lifetime value inputs before they reach the discounting loop.
func (ip *InputParser) ValidateLTV(in *domain.LTVInput) error {
	if err := finite("ltv inputs", in.AverageOrderValue, in.PurchasesPerYear, in.GrossMarginPercent, in.DiscountRatePercent, in.AcquisitionCost); err != nil {
		return err
	}
	if in.AverageOrderValue < 0 || in.PurchasesPerYear < 0 || in.AcquisitionCost < 0 {
		return fmt.Errorf("order value, purchases and acquisition cost cannot be negative")
	}
	if in.GrossMarginPercent < 0 || in.GrossMarginPercent > 100 {
		return fmt.Errorf("gross margin must be between 0 and 100 percent")
	}
	if in.LifetimeYears < 1 || in.LifetimeYears > maxLifetimeYears {
		return fmt.Errorf("lifetime years must be between 1 and %d", maxLifetimeYears)
	}
	if in.DiscountRatePercent <= -100 {
		return fmt.Errorf("discount rate must be greater than -100%%")
	}
	return nil
}

// validateThresholds validates decision thresholds
func (ip *InputParser) validateThresholds(t *domain.DecisionThresholds) error {
	confidences := []int{
		t.Investment.StrongConfidence, t.Investment.PositiveConfidence, t.Investment.WeakConfidence,
		t.Channel.StopConfidence, t.Channel.ReduceConfidence, t.Channel.ScaleConfidence, t.Channel.MaintainConfidence,
	}
	for _, c := range confidences {
		if c < 0 || c > 100 {
			return fmt.Errorf("confidence scores must be between 0 and 100, got %d", c)
		}
	}
	if t.BreakEven.HighRiskBelow <= 0 || t.BreakEven.HighRiskBelow >= t.BreakEven.MediumRiskBelow {
		return fmt.Errorf("break-even tiers must satisfy 0 < high_risk_below < medium_risk_below")
	}
	if t.Risk.CriticalMarginPercent > t.Risk.WarningMarginPercent {
		return fmt.Errorf("critical margin threshold cannot exceed warning margin threshold")
	}
	if t.Risk.CriticalCashConversionPercent > t.Risk.WarningCashConversionPercent {
		return fmt.Errorf("critical cash conversion threshold cannot exceed warning threshold")
	}
	if t.Payback.TargetYears <= 0 {
		return fmt.Errorf("payback target years must be positive")
	}
	return nil
}

// CreateExampleConfiguration creates an example analysis file
func (ip *InputParser) CreateExampleConfiguration() *domain.Configuration {
	return &domain.Configuration{
		Thresholds: domain.DefaultDecisionThresholds(),
		Analyses: []domain.AnalysisRequest{
			{
				Type:        domain.AnalysisNPVIRR,
				Title:       "Plant expansion",
				Description: "Second production line, five-year horizon",
				NPV: &domain.NPVInputs{
					CashFlowSchedule: domain.CashFlowSchedule{
						Investment: 2_000_000_000,
						Flows:      []float64{400_000_000, 500_000_000, 600_000_000, 700_000_000, 800_000_000},
					},
					DiscountRatePercent: 12,
				},
			},
			{
				Type:  domain.AnalysisPayback,
				Title: "Warehouse automation",
				Payback: &domain.PaybackInputs{
					Investment:          1_500_000_000,
					AnnualCashFlow:      400_000_000,
					DiscountRatePercent: 10,
				},
			},
			{
				Type:  domain.AnalysisROI,
				Title: "Brand refresh",
				ROI: &domain.ROIInputs{
					Investment:   1_000_000_000,
					TotalReturns: 2_200_000_000,
					Years:        3,
				},
			},
			{
				Type:  domain.AnalysisSensitivity,
				Title: "Flagship store P&L",
				Sensitivity: &domain.SensitivityInputs{
					ProfitModel:  domain.NewProfitModel(10_000_000_000, 6_000_000_000, 2_500_000_000),
					DeltaPercent: 10,
					Heatmap:      &domain.HeatmapSpec{X: "revenue", Y: "cogs"},
				},
			},
		},
		Channels: []domain.ChannelInput{
			exampleChannel("search", 1_200_000_000, 480_000_000, 240_000_000, 60_000_000, 1_080_000_000),
			exampleChannel("marketplace", 900_000_000, 540_000_000, 150_000_000, 120_000_000, 420_000_000),
			exampleChannel("social", 400_000_000, 220_000_000, 210_000_000, 0, 360_000_000),
		},
	}
}

func exampleChannel(name string, revenue, cogs, adSpend, other, collected int64) domain.ChannelInput {
	return domain.ChannelInput{
		Name:               name,
		Revenue:            decimal.NewFromInt(revenue),
		COGS:               decimal.NewFromInt(cogs),
		AdSpend:            decimal.NewFromInt(adSpend),
		OtherVariableCosts: decimal.NewFromInt(other),
		CashCollected:      decimal.NewFromInt(collected),
	}
}
