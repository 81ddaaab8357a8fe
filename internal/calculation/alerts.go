package calculation

import (
	"sort"

	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	actionNegativeMargin = "Pause spend and review pricing and variable costs"
	actionThinMargin     = "Renegotiate COGS or shift budget to higher-margin channels"
	actionLowCash        = "Escalate collections and review payment terms"
	actionSlowCash       = "Tighten payment terms and follow up on receivables"
	actionHealthy        = "Maintain current allocation"
)

// RiskAlerts grades one channel on margin and on cash conversion
// independently. A channel that trips neither rule yields a single info alert.
func (c *Classifier) RiskAlerts(m domain.ChannelMetrics) []domain.RiskAlert {
	t := c.Thresholds.Risk
	var alerts []domain.RiskAlert

	switch {
	case m.MarginPercent < t.CriticalMarginPercent:
		impact := decimal.Max(m.ContributionMargin.Neg(), decimal.Zero)
		alerts = append(alerts, domain.RiskAlert{
			Channel:           m.Channel,
			Severity:          domain.SeverityCritical,
			Title:             "Negative contribution margin",
			ImpactAmount:      impact,
			RecommendedAction: actionNegativeMargin,
		})
	case m.MarginPercent < t.WarningMarginPercent:
		alerts = append(alerts, domain.RiskAlert{
			Channel:           m.Channel,
			Severity:          domain.SeverityWarning,
			Title:             "Thin contribution margin",
			ImpactAmount:      m.Revenue.Mul(decimal.NewFromFloat(t.WarningMarginPercent - m.MarginPercent)).Div(hundred).Round(2),
			RecommendedAction: actionThinMargin,
		})
	}

	cashPercent := m.CashConversionRate * 100
	uncollected := decimal.Max(m.Revenue.Sub(m.CashCollected), decimal.Zero)
	switch {
	case cashPercent < t.CriticalCashConversionPercent:
		alerts = append(alerts, domain.RiskAlert{
			Channel:           m.Channel,
			Severity:          domain.SeverityCritical,
			Title:             "Low cash conversion",
			ImpactAmount:      uncollected,
			RecommendedAction: actionLowCash,
		})
	case cashPercent < t.WarningCashConversionPercent:
		alerts = append(alerts, domain.RiskAlert{
			Channel:           m.Channel,
			Severity:          domain.SeverityWarning,
			Title:             "Slow cash conversion",
			ImpactAmount:      uncollected,
			RecommendedAction: actionSlowCash,
		})
	}

	if len(alerts) == 0 {
		alerts = append(alerts, domain.RiskAlert{
			Channel:           m.Channel,
			Severity:          domain.SeverityInfo,
			Title:             "Channel healthy",
			RecommendedAction: actionHealthy,
		})
	}
	return alerts
}

var severityRank = map[domain.AlertSeverity]int{
	domain.SeverityCritical: 0,
	domain.SeverityWarning:  1,
	domain.SeverityInfo:     2,
}

// SortAlerts orders alerts critical first, then by impact descending.
func SortAlerts(alerts []domain.RiskAlert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := severityRank[alerts[i].Severity], severityRank[alerts[j].Severity]
		if ri != rj {
			return ri < rj
		}
		return alerts[i].ImpactAmount.GreaterThan(alerts[j].ImpactAmount)
	})
}
