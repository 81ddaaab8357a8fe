package output

import (
	"sort"

	"github.com/bizlens/bizcalc/internal/domain"
)

// Summary is the headline view of a report shared by the console formatters.
type Summary struct {
	Counts         map[domain.DecisionCategory]int
	TopPick        string
	TopConfidence  int
	CriticalAlerts int
}

// SummarizeReport counts verdicts and picks the invest outcome with the
// highest confidence (ties broken by title).
func SummarizeReport(report *domain.AnalysisReport) Summary {
	s := Summary{Counts: make(map[domain.DecisionCategory]int)}
	var picks []domain.AnalysisOutcome
	for _, o := range report.Outcomes {
		s.Counts[o.Recommendation.Category]++
		if o.Recommendation.Category == domain.DecisionInvest {
			picks = append(picks, o)
		}
	}
	if len(picks) > 0 {
		sort.SliceStable(picks, func(i, j int) bool {
			ci, cj := picks[i].Recommendation.Confidence, picks[j].Recommendation.Confidence
			if ci != cj {
				return ci > cj
			}
			return picks[i].Title < picks[j].Title
		})
		s.TopPick = picks[0].Title
		s.TopConfidence = picks[0].Recommendation.Confidence
	}
	if report.Channels != nil {
		for _, a := range report.Channels.Alerts {
			if a.Severity == domain.SeverityCritical {
				s.CriticalAlerts++
			}
		}
	}
	return s
}

// headline returns the single most important figure of an outcome.
func headline(o domain.AnalysisOutcome) (label, value string) {
	switch c := o.Results.(type) {
	case domain.NpvIrrContext:
		return "NPV", FormatCompact(c.NPV)
	case domain.PaybackContext:
		if !c.Result.Recovered {
			return "Payback", "not recovered"
		}
		return "Payback", FormatYears(c.Result.DiscountedYears)
	case domain.RoiContext:
		return "ROI", FormatPercentage(c.Result.ROIPercent)
	case domain.SensitivityContext:
		return "Profit", FormatMoneyCompact(c.BaseProfit)
	}
	return "", ""
}
