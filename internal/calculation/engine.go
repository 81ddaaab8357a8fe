package calculation

import (
	"context"
	"fmt"
	"time"

	"github.com/bizlens/bizcalc/internal/domain"
)

// CalculationEngine orchestrates all analysis calculations
type CalculationEngine struct {
	Classifier *Classifier
	IRRSolver  IRRSolver
	Logger     Logger
	// Now is overridable in tests.
	Now func() time.Time
}

// NewCalculationEngine creates a new calculation engine with default thresholds
func NewCalculationEngine() *CalculationEngine {
	return NewCalculationEngineWithThresholds(domain.DefaultDecisionThresholds())
}

// NewCalculationEngineWithThresholds creates a new calculation engine with configurable decision thresholds
func NewCalculationEngineWithThresholds(t domain.DecisionThresholds) *CalculationEngine {
	return &CalculationEngine{
		Classifier: NewClassifier(t),
		IRRSolver:  DefaultIRRSolver(),
		Logger:     NopLogger{},
		Now:        time.Now,
	}
}

// SetLogger sets the logger for the calculation engine. If nil is provided, a no-op logger is used.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

// RunAnalyses runs every analysis of a configuration plus the channel
// evaluation when channels are present.
func (ce *CalculationEngine) RunAnalyses(ctx context.Context, cfg *domain.Configuration) (*domain.AnalysisReport, error) {
	report := &domain.AnalysisReport{GeneratedAt: ce.Now().UTC()}
	for i := range cfg.Analyses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome, err := ce.RunAnalysis(ctx, &cfg.Analyses[i])
		if err != nil {
			return nil, fmt.Errorf("analysis %q failed: %w", cfg.Analyses[i].Title, err)
		}
		report.Outcomes = append(report.Outcomes, *outcome)
	}
	if len(cfg.Channels) > 0 {
		report.Channels = ce.EvaluateChannels(cfg.Channels)
	}
	return report, nil
}

// RunAnalysis computes one analysis and classifies its result.
func (ce *CalculationEngine) RunAnalysis(ctx context.Context, req *domain.AnalysisRequest) (*domain.AnalysisOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := req.Section(); err != nil {
		if !req.Type.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedAnalysis, req.Type)
		}
		return nil, err
	}

	var (
		results domain.AnalysisContext
		rec     domain.Recommendation
		err     error
	)
	switch req.Type {
	case domain.AnalysisNPVIRR:
		results, rec, err = ce.runNPV(*req.NPV)
	case domain.AnalysisPayback:
		results, rec, err = ce.runPayback(*req.Payback)
	case domain.AnalysisROI:
		results, rec, err = ce.runROI(*req.ROI)
	case domain.AnalysisSensitivity:
		results, rec, err = ce.runSensitivity(*req.Sensitivity)
	}
	if err != nil {
		return nil, err
	}

	ce.Logger.Debugf("analysis %q (%s): %s", req.Title, req.Type, rec)
	return &domain.AnalysisOutcome{
		Type:           req.Type,
		Title:          req.Title,
		Description:    req.Description,
		Parameters:     results.Parameters(),
		Results:        results,
		Recommendation: rec,
		Insights:       GenerateInsights(results),
	}, nil
}

func (ce *CalculationEngine) runNPV(in domain.NPVInputs) (domain.AnalysisContext, domain.Recommendation, error) {
	if err := in.CashFlowSchedule.Validate(); err != nil {
		return nil, domain.Recommendation{}, err
	}
	npv, err := NPV(in.Investment, in.Flows, in.DiscountRatePercent/100)
	if err != nil {
		return nil, domain.Recommendation{}, err
	}
	irr, err := ce.IRRSolver.Solve(in.CashFlowSchedule)
	if err != nil {
		return nil, domain.Recommendation{}, err
	}
	if err := checkFinite("irr", irr.RatePercent, irr.ResidualNPV); err != nil {
		return nil, domain.Recommendation{}, err
	}
	if !irr.Converged {
		ce.Logger.Warnf("IRR did not converge after %d iterations (residual NPV %.2f)", irr.Iterations, irr.ResidualNPV)
	}

	rates := in.HeatmapRatesPercent
	if len(rates) == 0 {
		rates = RateGrid(in.DiscountRatePercent, 2, 5)
	}
	deltas := in.HeatmapFlowDeltasPct
	if len(deltas) == 0 {
		deltas = DefaultGridDeltas
	}
	hm, err := CalculateNPVHeatmap(in.CashFlowSchedule, rates, deltas)
	if err != nil {
		return nil, domain.Recommendation{}, err
	}

	c := domain.NpvIrrContext{
		Inputs:              in,
		DiscountRatePercent: in.DiscountRatePercent,
		NPV:                 npv,
		IRR:                 irr,
		SpreadPercent:       irr.RatePercent - in.DiscountRatePercent,
		Heatmap:             hm,
	}
	return c, ce.Classifier.ClassifyInvestment(npv, irr.RatePercent, in.DiscountRatePercent), nil
}

func (ce *CalculationEngine) runPayback(in domain.PaybackInputs) (domain.AnalysisContext, domain.Recommendation, error) {
	growth, rate := in.GrowthRatePercent/100, in.DiscountRatePercent/100
	result, err := CalculatePayback(in.Investment, in.AnnualCashFlow, growth, rate, in.Horizon)
	if err != nil {
		return nil, domain.Recommendation{}, err
	}
	if err := checkFinite("payback", result.SimpleYears, result.DiscountedYears); err != nil {
		return nil, domain.Recommendation{}, err
	}
	schedule, err := PaybackSchedule(in.Investment, in.AnnualCashFlow, growth, rate, result.Horizon)
	if err != nil {
		return nil, domain.Recommendation{}, err
	}
	for _, p := range schedule {
		if err := checkFinite(fmt.Sprintf("payback period %d", p.Period), p.CashFlow, p.PresentValue, p.CumulativePV, p.Remaining); err != nil {
			return nil, domain.Recommendation{}, err
		}
	}
	c := domain.PaybackContext{Inputs: in, Result: result, Schedule: schedule}
	return c, ce.Classifier.ClassifyPayback(result), nil
}

func (ce *CalculationEngine) runROI(in domain.ROIInputs) (domain.AnalysisContext, domain.Recommendation, error) {
	var (
		result domain.ROIResult
		err    error
	)
	if len(in.YearlyReturns) > 0 {
		result, err = AnalyzeYearlyReturns(in.Investment, in.YearlyReturns)
	} else {
		result, err = AnalyzeROI(in.Investment, in.TotalReturns, in.Years)
	}
	if err != nil {
		return nil, domain.Recommendation{}, err
	}
	if err := checkFinite("roi", result.ROIPercent, result.CAGRPercent, result.Multiple); err != nil {
		return nil, domain.Recommendation{}, err
	}
	c := domain.RoiContext{Inputs: in, Result: result}
	return c, ce.Classifier.ClassifyROI(result), nil
}

func (ce *CalculationEngine) runSensitivity(in domain.SensitivityInputs) (domain.AnalysisContext, domain.Recommendation, error) {
	if err := in.ProfitModel.Validate(); err != nil {
		return nil, domain.Recommendation{}, err
	}
	delta := in.DeltaPercent
	if delta == 0 {
		delta = DefaultDeltaPercent
	}
	coeffs, err := SensitivityCoefficients(in.ProfitModel, delta)
	if err != nil {
		return nil, domain.Recommendation{}, fmt.Errorf("base profit is zero: %w", err)
	}
	tornado, err := Tornado(in.ProfitModel, delta)
	if err != nil {
		return nil, domain.Recommendation{}, err
	}
	distances, err := CalculateBreakEvenDistances(in.ProfitModel, ce.Classifier.Thresholds.BreakEven)
	if err != nil {
		return nil, domain.Recommendation{}, err
	}

	var hm *domain.Heatmap
	spec, ok := defaultHeatmapSpec(in.ProfitModel)
	if in.Heatmap != nil {
		spec, ok = *in.Heatmap, true
	}
	if ok {
		hm, err = CalculateProfitHeatmap(in.ProfitModel, spec)
		if err != nil {
			return nil, domain.Recommendation{}, err
		}
	}

	if err := checkSensitivityFinite(coeffs, tornado, distances, hm); err != nil {
		return nil, domain.Recommendation{}, err
	}

	profit := in.ProfitModel.Profit(nil)
	margin := in.ProfitModel.MarginPercent(nil)
	if err := checkFinite("base margin", margin); err != nil {
		return nil, domain.Recommendation{}, err
	}
	c := domain.SensitivityContext{
		Inputs:            in,
		BaseProfit:        profit,
		BaseMarginPercent: margin,
		Coefficients:      coeffs,
		Tornado:           tornado,
		BreakEven:         distances,
		Heatmap:           hm,
	}
	return c, ce.Classifier.ClassifySensitivity(profit, distances), nil
}

func checkSensitivityFinite(coeffs []domain.SensitivityCoefficient, tornado []domain.TornadoBar, distances []domain.BreakEvenDistance, hm *domain.Heatmap) error {
	for _, c := range coeffs {
		if err := checkFinite("impact of "+c.Variable, c.ImpactPercent); err != nil {
			return err
		}
	}
	for _, b := range tornado {
		if err := checkFinite("tornado bar "+b.Variable, b.LowImpact, b.HighImpact); err != nil {
			return err
		}
	}
	for _, d := range distances {
		if err := checkFinite("break-even distance of "+d.Variable, d.DistancePercent); err != nil {
			return err
		}
	}
	if hm == nil {
		return nil
	}
	for _, row := range hm.Cells {
		for _, cell := range row {
			if err := checkFinite("heatmap margin", cell.MarginPercent); err != nil {
				return err
			}
		}
	}
	return nil
}

// EvaluateChannels attributes profit across channels, classifies each one
// and collects risk alerts, critical first.
func (ce *CalculationEngine) EvaluateChannels(inputs []domain.ChannelInput) *domain.ChannelReport {
	metrics := AttributeProfit(inputs)
	report := &domain.ChannelReport{Metrics: metrics}
	for _, m := range metrics {
		rec := ce.Classifier.ClassifyChannel(m)
		report.Decisions = append(report.Decisions, domain.ChannelDecision{Channel: m.Channel, Recommendation: rec})
		report.Alerts = append(report.Alerts, ce.Classifier.RiskAlerts(m)...)
	}
	SortAlerts(report.Alerts)
	ce.Logger.Debugf("evaluated %d channels, %d alerts", len(metrics), len(report.Alerts))
	return report
}
