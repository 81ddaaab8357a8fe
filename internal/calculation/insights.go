package calculation

import (
	"fmt"
	"math"

	"github.com/bizlens/bizcalc/internal/domain"
	money "github.com/bizlens/bizcalc/pkg/decimal"
)

// GenerateInsights produces short observations for an analysis result.
func GenerateInsights(ctx domain.AnalysisContext) []domain.Insight {
	switch c := ctx.(type) {
	case domain.NpvIrrContext:
		return npvInsights(c)
	case *domain.NpvIrrContext:
		return npvInsights(*c)
	case domain.PaybackContext:
		return paybackInsights(c)
	case *domain.PaybackContext:
		return paybackInsights(*c)
	case domain.RoiContext:
		return roiInsights(c)
	case *domain.RoiContext:
		return roiInsights(*c)
	case domain.SensitivityContext:
		return sensitivityInsights(c)
	case *domain.SensitivityContext:
		return sensitivityInsights(*c)
	default:
		return nil
	}
}

func npvInsights(c domain.NpvIrrContext) []domain.Insight {
	var out []domain.Insight
	if c.NPV > 0 {
		out = append(out, domain.Insight{
			Level:  domain.InsightPositive,
			Title:  "Value creating",
			Detail: fmt.Sprintf("The project adds %s of value at a %.2f%% discount rate.", money.NewMoney(c.NPV).Compact(), c.DiscountRatePercent),
		})
	} else {
		out = append(out, domain.Insight{
			Level:  domain.InsightWarning,
			Title:  "Value destroying",
			Detail: fmt.Sprintf("The project loses %s of value at a %.2f%% discount rate.", money.NewMoney(-c.NPV).Compact(), c.DiscountRatePercent),
		})
	}
	if !c.IRR.Converged {
		out = append(out, domain.Insight{
			Level:  domain.InsightWarning,
			Title:  "IRR is approximate",
			Detail: fmt.Sprintf("The IRR solver stopped after %d iterations with NPV %s remaining.", c.IRR.Iterations, money.NewMoney(c.IRR.ResidualNPV).Compact()),
		})
	} else {
		level := domain.InsightNeutral
		if c.SpreadPercent > 0 {
			level = domain.InsightPositive
		}
		out = append(out, domain.Insight{
			Level:  level,
			Title:  "Return spread",
			Detail: fmt.Sprintf("IRR of %.2f%% is %+.2f points against the cost of capital.", c.IRR.RatePercent, c.SpreadPercent),
		})
	}
	if c.Heatmap != nil {
		var negative, total int
		for _, row := range c.Heatmap.Cells {
			for _, cell := range row {
				total++
				if cell.NPV <= 0 {
					negative++
				}
			}
		}
		if negative > 0 {
			out = append(out, domain.Insight{
				Level:  domain.InsightNeutral,
				Title:  "Scenario exposure",
				Detail: fmt.Sprintf("%d of %d rate and cash-flow scenarios have a non-positive NPV.", negative, total),
			})
		}
	}
	return out
}

func paybackInsights(c domain.PaybackContext) []domain.Insight {
	r := c.Result
	if !r.Recovered {
		return []domain.Insight{{
			Level:  domain.InsightWarning,
			Title:  "Not recovered",
			Detail: fmt.Sprintf("Discounted cash flows do not recover the investment within %d periods.", r.Horizon),
		}}
	}
	return []domain.Insight{
		{
			Level:  domain.InsightPositive,
			Title:  "Discounted payback",
			Detail: fmt.Sprintf("The investment is recovered in %.2f years after discounting.", r.DiscountedYears),
		},
		{
			Level:  domain.InsightNeutral,
			Title:  "Cost of waiting",
			Detail: fmt.Sprintf("Discounting adds %.2f years over the %.2f year simple payback.", r.DiscountedYears-r.SimpleYears, r.SimpleYears),
		},
	}
}

func roiInsights(c domain.RoiContext) []domain.Insight {
	r := c.Result
	level := domain.InsightPositive
	if !r.NetGain.IsPositive() {
		level = domain.InsightWarning
	}
	return []domain.Insight{
		{
			Level:  level,
			Title:  "Net gain",
			Detail: fmt.Sprintf("Returns of %.2fx the investment give a net gain of %s.", r.Multiple, money.NewMoneyFromDecimal(r.NetGain).Compact()),
		},
		{
			Level:  domain.InsightNeutral,
			Title:  "Annualised",
			Detail: fmt.Sprintf("%.1f%% total ROI over %d years is %.2f%% a year compounded.", r.ROIPercent, r.Years, r.CAGRPercent),
		},
	}
}

func sensitivityInsights(c domain.SensitivityContext) []domain.Insight {
	var out []domain.Insight
	if top, ok := MostSensitive(c.Coefficients); ok {
		out = append(out, domain.Insight{
			Level:  domain.InsightNeutral,
			Title:  "Key driver",
			Detail: fmt.Sprintf("A %.0f%% rise in %s moves profit by %+.1f%%.", sensitivityDelta(c.Inputs), top.Variable, top.ImpactPercent),
		})
	}
	for _, d := range c.BreakEven {
		if d.Risk != domain.RiskHigh {
			continue
		}
		out = append(out, domain.Insight{
			Level:  domain.InsightWarning,
			Title:  "Thin buffer",
			Detail: fmt.Sprintf("Profit reaches zero if %s moves %.1f%%.", d.Variable, d.DistancePercent),
		})
	}
	if c.BaseProfit.IsPositive() && c.BaseMarginPercent > 0 && !hasHighRisk(c.BreakEven) {
		out = append(out, domain.Insight{
			Level:  domain.InsightPositive,
			Title:  "Resilient margin",
			Detail: fmt.Sprintf("A %.1f%% margin leaves room for every variable to move.", c.BaseMarginPercent),
		})
	}
	return out
}

func sensitivityDelta(in domain.SensitivityInputs) float64 {
	if in.DeltaPercent == 0 || math.IsNaN(in.DeltaPercent) {
		return DefaultDeltaPercent
	}
	return in.DeltaPercent
}

func hasHighRisk(ds []domain.BreakEvenDistance) bool {
	for _, d := range ds {
		if d.Risk == domain.RiskHigh {
			return true
		}
	}
	return false
}
