package domain

// DecisionThresholds is the named configuration behind every classifier.
// Thresholds are data; the rule order lives in the calculation package.
type DecisionThresholds struct {
	Investment InvestmentThresholds `yaml:"investment" json:"investment"`
	Channel    ChannelThresholds    `yaml:"channel" json:"channel"`
	Risk       RiskThresholds       `yaml:"risk" json:"risk"`
	BreakEven  BreakEvenThresholds  `yaml:"break_even" json:"break_even"`
	Payback    PaybackThresholds    `yaml:"payback" json:"payback"`
}

// InvestmentThresholds drive the invest/consider/reject classifier.
// Spread is IRR minus discount rate, in percentage points.
type InvestmentThresholds struct {
	StrongSpreadPercent float64 `yaml:"strong_spread_pct" json:"strong_spread_pct"`
	StrongConfidence    int     `yaml:"strong_confidence" json:"strong_confidence"`
	PositiveConfidence  int     `yaml:"positive_confidence" json:"positive_confidence"`
	WeakConfidence      int     `yaml:"weak_confidence" json:"weak_confidence"`
}

// ChannelThresholds drive the scale/maintain/reduce/stop classifier.
// Cash conversion values are fractions (0.5 = 50%).
type ChannelThresholds struct {
	MinMarginPercent     float64 `yaml:"min_margin_pct" json:"min_margin_pct"`
	ReduceCashConversion float64 `yaml:"reduce_cash_conversion" json:"reduce_cash_conversion"`
	ScaleMarginPercent   float64 `yaml:"scale_margin_pct" json:"scale_margin_pct"`
	ScaleCashConversion  float64 `yaml:"scale_cash_conversion" json:"scale_cash_conversion"`
	StopConfidence       int     `yaml:"stop_confidence" json:"stop_confidence"`
	ReduceConfidence     int     `yaml:"reduce_confidence" json:"reduce_confidence"`
	ScaleConfidence      int     `yaml:"scale_confidence" json:"scale_confidence"`
	MaintainConfidence   int     `yaml:"maintain_confidence" json:"maintain_confidence"`
}

// RiskThresholds grade alerts; all values are percentages.
type RiskThresholds struct {
	CriticalMarginPercent         float64 `yaml:"critical_margin_pct" json:"critical_margin_pct"`
	WarningMarginPercent          float64 `yaml:"warning_margin_pct" json:"warning_margin_pct"`
	CriticalCashConversionPercent float64 `yaml:"critical_cash_conversion_pct" json:"critical_cash_conversion_pct"`
	WarningCashConversionPercent  float64 `yaml:"warning_cash_conversion_pct" json:"warning_cash_conversion_pct"`
}

// BreakEvenThresholds map |distance| to a risk tier using strict less-than.
type BreakEvenThresholds struct {
	HighRiskBelow   float64 `yaml:"high_risk_below" json:"high_risk_below"`
	MediumRiskBelow float64 `yaml:"medium_risk_below" json:"medium_risk_below"`
}

// PaybackThresholds and the ROI hurdle drive the remaining classifiers.
type PaybackThresholds struct {
	TargetYears       float64 `yaml:"target_years" json:"target_years"`
	HurdleCAGRPercent float64 `yaml:"hurdle_cagr_pct" json:"hurdle_cagr_pct"`
}

// DefaultDecisionThresholds returns the thresholds the dashboards ship with.
func DefaultDecisionThresholds() DecisionThresholds {
	return DecisionThresholds{
		Investment: InvestmentThresholds{
			StrongSpreadPercent: 5,
			StrongConfidence:    85,
			PositiveConfidence:  65,
			WeakConfidence:      30,
		},
		Channel: ChannelThresholds{
			MinMarginPercent:     10,
			ReduceCashConversion: 0.5,
			ScaleMarginPercent:   20,
			ScaleCashConversion:  0.7,
			StopConfidence:       90,
			ReduceConfidence:     75,
			ScaleConfidence:      80,
			MaintainConfidence:   60,
		},
		Risk: RiskThresholds{
			CriticalMarginPercent:         0,
			WarningMarginPercent:          10,
			CriticalCashConversionPercent: 50,
			WarningCashConversionPercent:  70,
		},
		BreakEven: BreakEvenThresholds{
			HighRiskBelow:   10,
			MediumRiskBelow: 20,
		},
		Payback: PaybackThresholds{
			TargetYears:       5,
			HurdleCAGRPercent: 10,
		},
	}
}
