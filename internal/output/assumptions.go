package output

import (
	"fmt"

	"github.com/bizlens/bizcalc/internal/domain"
)

// DefaultAssumptions lists the modeling conventions rendered in detailed outputs.
var DefaultAssumptions = []string{
	"Cash flows arrive at the end of each period; period 1 is discounted once",
	"IRR: Newton-Raphson seeded at 10%, at most 100 iterations",
	"Discounted payback is capped at 20 periods",
	"Sensitivity deltas are relative changes to one line, all else held fixed",
}

// GenerateAssumptions renders the decision thresholds actually in force.
func GenerateAssumptions(t domain.DecisionThresholds) []string {
	return append(append([]string(nil), DefaultAssumptions...),
		fmt.Sprintf("Investment: strong spread above %.1f points (confidence %d/%d/%d)",
			t.Investment.StrongSpreadPercent, t.Investment.StrongConfidence, t.Investment.PositiveConfidence, t.Investment.WeakConfidence),
		fmt.Sprintf("Payback target %.1f years; ROI hurdle %.1f%% CAGR", t.Payback.TargetYears, t.Payback.HurdleCAGRPercent),
		fmt.Sprintf("Break-even risk: high below %.0f%%, medium below %.0f%%", t.BreakEven.HighRiskBelow, t.BreakEven.MediumRiskBelow),
		fmt.Sprintf("Channels: minimum margin %.1f%%, scale at %.1f%% margin and %.0f%% cash conversion",
			t.Channel.MinMarginPercent, t.Channel.ScaleMarginPercent, t.Channel.ScaleCashConversion*100),
	)
}
