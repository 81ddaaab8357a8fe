package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DecisionCategory is the discrete outcome of a classifier.
type DecisionCategory string

const (
	DecisionInvest   DecisionCategory = "invest"
	DecisionConsider DecisionCategory = "consider"
	DecisionReject   DecisionCategory = "reject"

	DecisionScale    DecisionCategory = "scale"
	DecisionMaintain DecisionCategory = "maintain"
	DecisionReduce   DecisionCategory = "reduce"
	DecisionStop     DecisionCategory = "stop"
)

// Recommendation is a classifier verdict with a 0-100 confidence score.
type Recommendation struct {
	Category   DecisionCategory `json:"category"`
	Reason     string           `json:"reason"`
	Confidence int              `json:"confidence"`
}

// String renders the recommendation the way it is persisted.
func (r Recommendation) String() string {
	return fmt.Sprintf("%s: %s (confidence %d%%)", r.Category, r.Reason, r.Confidence)
}

// AlertSeverity grades a control-tower alert.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityWarning  AlertSeverity = "warning"
	SeverityInfo     AlertSeverity = "info"
)

// ChannelInput is the raw P&L of a marketing channel or campaign.
type ChannelInput struct {
	Name               string          `yaml:"name" json:"name"`
	Revenue            decimal.Decimal `yaml:"revenue" json:"revenue"`
	COGS               decimal.Decimal `yaml:"cogs" json:"cogs"`
	AdSpend            decimal.Decimal `yaml:"ad_spend" json:"ad_spend"`
	OtherVariableCosts decimal.Decimal `yaml:"other_variable_costs" json:"other_variable_costs"`
	CashCollected      decimal.Decimal `yaml:"cash_collected" json:"cash_collected"`
}

// ChannelMetrics are the derived figures the channel classifier works on.
type ChannelMetrics struct {
	Channel            string          `json:"channel"`
	Revenue            decimal.Decimal `json:"revenue"`
	ContributionMargin decimal.Decimal `json:"contribution_margin"`
	MarginPercent      float64         `json:"margin_percent"`
	CashConversionRate float64         `json:"cash_conversion_rate"`
	CashCollected      decimal.Decimal `json:"cash_collected"`
	ROAS               float64         `json:"roas"`
	ProfitSharePercent float64         `json:"profit_share_percent"`
}

// ChannelDecision pairs a channel with its recommendation.
type ChannelDecision struct {
	Channel        string         `json:"channel"`
	Recommendation Recommendation `json:"recommendation"`
}

// RiskAlert is one control-tower alert.
type RiskAlert struct {
	Channel           string          `json:"channel"`
	Severity          AlertSeverity   `json:"severity"`
	Title             string          `json:"title"`
	ImpactAmount      decimal.Decimal `json:"impact_amount"`
	RecommendedAction string          `json:"recommended_action"`
}

// ChannelReport bundles the marketing view of a run.
type ChannelReport struct {
	Metrics   []ChannelMetrics  `json:"metrics"`
	Decisions []ChannelDecision `json:"decisions"`
	Alerts    []RiskAlert       `json:"alerts"`
}

// LTVInput describes an average customer.
type LTVInput struct {
	AverageOrderValue   float64 `yaml:"average_order_value" json:"average_order_value"`
	PurchasesPerYear    float64 `yaml:"purchases_per_year" json:"purchases_per_year"`
	GrossMarginPercent  float64 `yaml:"gross_margin_pct" json:"gross_margin_pct"`
	LifetimeYears       int     `yaml:"lifetime_years" json:"lifetime_years"`
	DiscountRatePercent float64 `yaml:"discount_rate_pct" json:"discount_rate_pct"`
	AcquisitionCost     float64 `yaml:"acquisition_cost" json:"acquisition_cost"`
}

// LTVResult is customer lifetime value and its ratio to acquisition cost.
type LTVResult struct {
	AnnualMargin float64 `json:"annual_margin"`
	LTV          float64 `json:"ltv"`
	LTVToCAC     float64 `json:"ltv_to_cac"`
}
