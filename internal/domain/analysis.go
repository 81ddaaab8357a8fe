package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AnalysisType identifies one of the four saved analysis kinds.
type AnalysisType string

const (
	AnalysisNPVIRR      AnalysisType = "npv_irr"
	AnalysisPayback     AnalysisType = "payback"
	AnalysisROI         AnalysisType = "roi"
	AnalysisSensitivity AnalysisType = "sensitivity"
)

// AnalysisTypes lists the supported kinds in display order.
func AnalysisTypes() []AnalysisType {
	return []AnalysisType{AnalysisNPVIRR, AnalysisPayback, AnalysisROI, AnalysisSensitivity}
}

// Valid reports whether t is a known analysis kind.
func (t AnalysisType) Valid() bool {
	switch t {
	case AnalysisNPVIRR, AnalysisPayback, AnalysisROI, AnalysisSensitivity:
		return true
	}
	return false
}

// NPVInputs are the parameters of an npv_irr analysis. Rates are percentages.
type NPVInputs struct {
	CashFlowSchedule     `yaml:",inline"`
	DiscountRatePercent  float64   `yaml:"discount_rate_pct" json:"discount_rate_pct"`
	HeatmapRatesPercent  []float64 `yaml:"heatmap_rates_pct,omitempty" json:"heatmap_rates_pct,omitempty"`
	HeatmapFlowDeltasPct []float64 `yaml:"heatmap_flow_deltas_pct,omitempty" json:"heatmap_flow_deltas_pct,omitempty"`
}

// PaybackInputs are the parameters of a payback analysis. Rates are percentages.
type PaybackInputs struct {
	Investment          float64 `yaml:"investment" json:"investment"`
	AnnualCashFlow      float64 `yaml:"annual_cash_flow" json:"annual_cash_flow"`
	GrowthRatePercent   float64 `yaml:"growth_rate_pct" json:"growth_rate_pct"`
	DiscountRatePercent float64 `yaml:"discount_rate_pct" json:"discount_rate_pct"`
	Horizon             int     `yaml:"horizon,omitempty" json:"horizon,omitempty"`
}

// ROIInputs are the parameters of a roi analysis. Either TotalReturns+Years or
// YearlyReturns must be given; YearlyReturns wins when both are set.
type ROIInputs struct {
	Investment    float64   `yaml:"investment" json:"investment"`
	TotalReturns  float64   `yaml:"total_returns,omitempty" json:"total_returns,omitempty"`
	Years         int       `yaml:"years,omitempty" json:"years,omitempty"`
	YearlyReturns []float64 `yaml:"yearly_returns,omitempty" json:"yearly_returns,omitempty"`
}

// HeatmapSpec selects the two variables of a profit heatmap.
type HeatmapSpec struct {
	X              string    `yaml:"x" json:"x"`
	Y              string    `yaml:"y" json:"y"`
	XDeltasPercent []float64 `yaml:"x_deltas_pct,omitempty" json:"x_deltas_pct,omitempty"`
	YDeltasPercent []float64 `yaml:"y_deltas_pct,omitempty" json:"y_deltas_pct,omitempty"`
}

// SensitivityInputs are the parameters of a sensitivity analysis.
type SensitivityInputs struct {
	ProfitModel  `yaml:",inline"`
	DeltaPercent float64      `yaml:"delta_pct,omitempty" json:"delta_pct,omitempty"`
	Heatmap      *HeatmapSpec `yaml:"heatmap,omitempty" json:"heatmap,omitempty"`
}

// AnalysisRequest asks the engine for one analysis. Exactly the section
// matching Type must be populated.
type AnalysisRequest struct {
	Type        AnalysisType       `yaml:"type" json:"analysis_type"`
	Title       string             `yaml:"title" json:"title"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	NPV         *NPVInputs         `yaml:"npv_irr,omitempty" json:"npv_irr,omitempty"`
	Payback     *PaybackInputs     `yaml:"payback,omitempty" json:"payback,omitempty"`
	ROI         *ROIInputs         `yaml:"roi,omitempty" json:"roi,omitempty"`
	Sensitivity *SensitivityInputs `yaml:"sensitivity,omitempty" json:"sensitivity,omitempty"`
}

// Section returns the populated inputs for the request's type, or an error
// when they are missing.
func (r *AnalysisRequest) Section() (any, error) {
	var section any
	switch r.Type {
	case AnalysisNPVIRR:
		if r.NPV != nil {
			section = r.NPV
		}
	case AnalysisPayback:
		if r.Payback != nil {
			section = r.Payback
		}
	case AnalysisROI:
		if r.ROI != nil {
			section = r.ROI
		}
	case AnalysisSensitivity:
		if r.Sensitivity != nil {
			section = r.Sensitivity
		}
	default:
		return nil, fmt.Errorf("unknown analysis type %q", r.Type)
	}
	if section == nil {
		return nil, fmt.Errorf("analysis %q of type %s has no %s section", r.Title, r.Type, r.Type)
	}
	return section, nil
}

// AnalysisContext is the typed result of one analysis. It is a closed set:
// NpvIrrContext, PaybackContext, RoiContext and SensitivityContext.
type AnalysisContext interface {
	AnalysisType() AnalysisType
	// Parameters returns the inputs the context was computed from.
	Parameters() any
	analysisContext()
}

// NpvIrrContext is the result of an npv_irr analysis.
type NpvIrrContext struct {
	Inputs              NPVInputs   `json:"-"`
	DiscountRatePercent float64     `json:"discount_rate_percent"`
	NPV                 float64     `json:"npv"`
	IRR                 IRRResult   `json:"irr"`
	SpreadPercent       float64     `json:"spread_percent"`
	Heatmap             *NPVHeatmap `json:"heatmap,omitempty"`
}

func (NpvIrrContext) AnalysisType() AnalysisType { return AnalysisNPVIRR }
func (c NpvIrrContext) Parameters() any          { return c.Inputs }
func (NpvIrrContext) analysisContext()           {}

// PaybackContext is the result of a payback analysis.
type PaybackContext struct {
	Inputs   PaybackInputs   `json:"-"`
	Result   PaybackResult   `json:"result"`
	Schedule []PaybackPeriod `json:"schedule"`
}

func (PaybackContext) AnalysisType() AnalysisType { return AnalysisPayback }
func (c PaybackContext) Parameters() any          { return c.Inputs }
func (PaybackContext) analysisContext()           {}

// RoiContext is the result of a roi analysis.
type RoiContext struct {
	Inputs ROIInputs `json:"-"`
	Result ROIResult `json:"result"`
}

func (RoiContext) AnalysisType() AnalysisType { return AnalysisROI }
func (c RoiContext) Parameters() any          { return c.Inputs }
func (RoiContext) analysisContext()           {}

// SensitivityContext is the result of a sensitivity analysis.
type SensitivityContext struct {
	Inputs            SensitivityInputs        `json:"-"`
	BaseProfit        decimal.Decimal          `json:"base_profit"`
	BaseMarginPercent float64                  `json:"base_margin_percent"`
	Coefficients      []SensitivityCoefficient `json:"coefficients"`
	Tornado           []TornadoBar             `json:"tornado"`
	BreakEven         []BreakEvenDistance      `json:"break_even"`
	Heatmap           *Heatmap                 `json:"heatmap,omitempty"`
}

func (SensitivityContext) AnalysisType() AnalysisType { return AnalysisSensitivity }
func (c SensitivityContext) Parameters() any          { return c.Inputs }
func (SensitivityContext) analysisContext()           {}

// InsightLevel colours an insight card.
type InsightLevel string

const (
	InsightPositive InsightLevel = "positive"
	InsightNeutral  InsightLevel = "neutral"
	InsightWarning  InsightLevel = "warning"
)

// Insight is a short human-readable observation about an analysis.
type Insight struct {
	Level  InsightLevel `json:"level"`
	Title  string       `json:"title"`
	Detail string       `json:"detail"`
}

// AnalysisOutcome is everything the engine produced for one request.
type AnalysisOutcome struct {
	Type           AnalysisType    `json:"analysis_type"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Parameters     any             `json:"parameters"`
	Results        AnalysisContext `json:"results"`
	Recommendation Recommendation  `json:"recommendation"`
	Insights       []Insight       `json:"insights"`
}

// AnalysisReport is the result of running an analysis file.
type AnalysisReport struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Assumptions []string          `json:"assumptions,omitempty"`
	Outcomes    []AnalysisOutcome `json:"outcomes"`
	Channels    *ChannelReport    `json:"channels,omitempty"`
}

// Configuration is the content of an analysis file.
type Configuration struct {
	Thresholds DecisionThresholds `yaml:"thresholds" json:"thresholds"`
	Analyses   []AnalysisRequest  `yaml:"analyses" json:"analyses"`
	Channels   []ChannelInput     `yaml:"channels,omitempty" json:"channels,omitempty"`
}

// RecordStatusCompleted is the only status the engine writes.
const RecordStatusCompleted = "completed"

// AnalysisRecord is the shape handed to the persistence collaborator.
type AnalysisRecord struct {
	ID             string          `json:"id"`
	TenantID       string          `json:"tenant_id"`
	AnalysisType   AnalysisType    `json:"analysis_type"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Parameters     json.RawMessage `json:"parameters"`
	Results        json.RawMessage `json:"results"`
	Recommendation string          `json:"recommendation"`
	Status         string          `json:"status"`
	ApprovedBy     *string         `json:"approved_by"`
	ApprovedAt     *time.Time      `json:"approved_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewAnalysisRecord serialises an outcome into a completed, unapproved record.
// The ID is left empty for the store to assign.
func NewAnalysisRecord(o *AnalysisOutcome, tenantID string, now time.Time) (*AnalysisRecord, error) {
	if o == nil || o.Results == nil {
		return nil, fmt.Errorf("outcome has no results")
	}
	params, err := json.Marshal(o.Parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameters: %w", err)
	}
	results, err := json.Marshal(o.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal results: %w", err)
	}
	return &AnalysisRecord{
		TenantID:       tenantID,
		AnalysisType:   o.Type,
		Title:          o.Title,
		Description:    o.Description,
		Parameters:     params,
		Results:        results,
		Recommendation: o.Recommendation.String(),
		Status:         RecordStatusCompleted,
		CreatedAt:      now.UTC(),
	}, nil
}

// IsApproved reports whether the record has been signed off.
func (r *AnalysisRecord) IsApproved() bool { return r.ApprovedBy != nil }
