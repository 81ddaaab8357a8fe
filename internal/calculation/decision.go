package calculation

import (
	"fmt"

	"github.com/bizlens/bizcalc/internal/domain"
	money "github.com/bizlens/bizcalc/pkg/decimal"
	"github.com/shopspring/decimal"
)

// Classifier maps computed metrics to recommendations. Every method is a pure
// function of its arguments and the thresholds.
type Classifier struct {
	Thresholds domain.DecisionThresholds
}

// NewClassifier creates a classifier over the given thresholds.
func NewClassifier(t domain.DecisionThresholds) *Classifier {
	return &Classifier{Thresholds: t}
}

// spreadConfidence tiers confidence by a spread in percentage points.
func (c *Classifier) spreadConfidence(spread float64) int {
	t := c.Thresholds.Investment
	switch {
	case spread > t.StrongSpreadPercent:
		return t.StrongConfidence
	case spread > 0:
		return t.PositiveConfidence
	default:
		return t.WeakConfidence
	}
}

// ClassifyInvestment: invest when NPV > 0 and IRR beats the discount rate,
// consider when only one of the two holds, reject otherwise.
func (c *Classifier) ClassifyInvestment(npv, irrPercent, discountRatePercent float64) domain.Recommendation {
	spread := irrPercent - discountRatePercent
	confidence := c.spreadConfidence(spread)
	npvText := money.NewMoney(npv).Compact()

	switch {
	case npv > 0 && spread > 0:
		return domain.Recommendation{
			Category:   domain.DecisionInvest,
			Reason:     fmt.Sprintf("NPV %s is positive and IRR %.2f%% exceeds the %.2f%% discount rate", npvText, irrPercent, discountRatePercent),
			Confidence: confidence,
		}
	case npv > 0:
		return domain.Recommendation{
			Category:   domain.DecisionConsider,
			Reason:     fmt.Sprintf("NPV %s is positive but IRR %.2f%% does not exceed the %.2f%% discount rate", npvText, irrPercent, discountRatePercent),
			Confidence: confidence,
		}
	case spread > 0:
		return domain.Recommendation{
			Category:   domain.DecisionConsider,
			Reason:     fmt.Sprintf("IRR %.2f%% exceeds the %.2f%% discount rate but NPV %s is not positive", irrPercent, discountRatePercent, npvText),
			Confidence: confidence,
		}
	default:
		return domain.Recommendation{
			Category:   domain.DecisionReject,
			Reason:     fmt.Sprintf("NPV %s is not positive and IRR %.2f%% does not exceed the %.2f%% discount rate", npvText, irrPercent, discountRatePercent),
			Confidence: confidence,
		}
	}
}

// ClassifyChannel applies the channel rules in order: negative margin stops,
// thin margin or poor cash conversion reduces, strong margin with good cash
// conversion scales, anything else is maintained.
func (c *Classifier) ClassifyChannel(m domain.ChannelMetrics) domain.Recommendation {
	t := c.Thresholds.Channel
	switch {
	case m.ContributionMargin.IsNegative():
		return domain.Recommendation{
			Category:   domain.DecisionStop,
			Reason:     fmt.Sprintf("%s loses %s in contribution margin", m.Channel, money.NewMoneyFromDecimal(m.ContributionMargin.Neg()).Format()),
			Confidence: t.StopConfidence,
		}
	case m.MarginPercent < t.MinMarginPercent:
		return domain.Recommendation{
			Category:   domain.DecisionReduce,
			Reason:     fmt.Sprintf("%s margin %.1f%% is below the %.1f%% minimum", m.Channel, m.MarginPercent, t.MinMarginPercent),
			Confidence: t.ReduceConfidence,
		}
	case m.CashConversionRate < t.ReduceCashConversion:
		return domain.Recommendation{
			Category:   domain.DecisionReduce,
			Reason:     fmt.Sprintf("%s converts only %.0f%% of revenue to cash", m.Channel, m.CashConversionRate*100),
			Confidence: t.ReduceConfidence,
		}
	case m.MarginPercent >= t.ScaleMarginPercent && m.CashConversionRate >= t.ScaleCashConversion:
		return domain.Recommendation{
			Category:   domain.DecisionScale,
			Reason:     fmt.Sprintf("%s earns %.1f%% margin and collects %.0f%% in cash", m.Channel, m.MarginPercent, m.CashConversionRate*100),
			Confidence: t.ScaleConfidence,
		}
	default:
		return domain.Recommendation{
			Category:   domain.DecisionMaintain,
			Reason:     fmt.Sprintf("%s is profitable at %.1f%% margin", m.Channel, m.MarginPercent),
			Confidence: t.MaintainConfidence,
		}
	}
}

// ClassifyPayback judges discounted payback against the target period.
func (c *Classifier) ClassifyPayback(r domain.PaybackResult) domain.Recommendation {
	t := c.Thresholds
	switch {
	case !r.Recovered:
		return domain.Recommendation{
			Category:   domain.DecisionReject,
			Reason:     fmt.Sprintf("investment is not recovered within %d periods on a discounted basis", r.Horizon),
			Confidence: t.Investment.StrongConfidence,
		}
	case r.DiscountedYears <= t.Payback.TargetYears:
		return domain.Recommendation{
			Category:   domain.DecisionInvest,
			Reason:     fmt.Sprintf("discounted payback of %.2f years is within the %.1f year target", r.DiscountedYears, t.Payback.TargetYears),
			Confidence: t.Investment.StrongConfidence,
		}
	case r.SimpleYears <= t.Payback.TargetYears:
		return domain.Recommendation{
			Category:   domain.DecisionConsider,
			Reason:     fmt.Sprintf("simple payback of %.2f years meets the target but discounted payback takes %.2f years", r.SimpleYears, r.DiscountedYears),
			Confidence: t.Investment.PositiveConfidence,
		}
	default:
		return domain.Recommendation{
			Category:   domain.DecisionReject,
			Reason:     fmt.Sprintf("discounted payback of %.2f years exceeds the %.1f year target", r.DiscountedYears, t.Payback.TargetYears),
			Confidence: t.Investment.PositiveConfidence,
		}
	}
}

// ClassifyROI compares CAGR with the hurdle rate.
func (c *Classifier) ClassifyROI(r domain.ROIResult) domain.Recommendation {
	hurdle := c.Thresholds.Payback.HurdleCAGRPercent
	spread := r.CAGRPercent - hurdle
	confidence := c.spreadConfidence(spread)
	switch {
	case spread > 0:
		return domain.Recommendation{
			Category:   domain.DecisionInvest,
			Reason:     fmt.Sprintf("CAGR %.2f%% beats the %.2f%% hurdle (%.2fx multiple)", r.CAGRPercent, hurdle, r.Multiple),
			Confidence: confidence,
		}
	case r.ROIPercent > 0:
		return domain.Recommendation{
			Category:   domain.DecisionConsider,
			Reason:     fmt.Sprintf("ROI %.1f%% is positive but CAGR %.2f%% misses the %.2f%% hurdle", r.ROIPercent, r.CAGRPercent, hurdle),
			Confidence: confidence,
		}
	default:
		return domain.Recommendation{
			Category:   domain.DecisionReject,
			Reason:     fmt.Sprintf("ROI %.1f%% does not return the investment", r.ROIPercent),
			Confidence: c.Thresholds.Investment.StrongConfidence,
		}
	}
}

// ClassifySensitivity grades the base case by its tightest break-even buffer.
// distances must be sorted riskiest first.
func (c *Classifier) ClassifySensitivity(baseProfit decimal.Decimal, distances []domain.BreakEvenDistance) domain.Recommendation {
	t := c.Thresholds.Investment
	if !baseProfit.IsPositive() {
		return domain.Recommendation{
			Category:   domain.DecisionReject,
			Reason:     fmt.Sprintf("base case profit %s is not positive", money.NewMoneyFromDecimal(baseProfit).Compact()),
			Confidence: t.StrongConfidence,
		}
	}
	if len(distances) == 0 {
		return domain.Recommendation{
			Category:   domain.DecisionConsider,
			Reason:     "no variable can move profit to break-even",
			Confidence: t.WeakConfidence,
		}
	}
	tightest := distances[0]
	switch tightest.Risk {
	case domain.RiskHigh:
		return domain.Recommendation{
			Category:   domain.DecisionConsider,
			Reason:     fmt.Sprintf("a %.1f%% %s in %s erases all profit", absPercent(tightest.DistancePercent), tightest.Direction, tightest.Variable),
			Confidence: t.PositiveConfidence,
		}
	case domain.RiskMedium:
		return domain.Recommendation{
			Category:   domain.DecisionInvest,
			Reason:     fmt.Sprintf("profit survives up to a %.1f%% %s in %s", absPercent(tightest.DistancePercent), tightest.Direction, tightest.Variable),
			Confidence: t.PositiveConfidence,
		}
	default:
		return domain.Recommendation{
			Category:   domain.DecisionInvest,
			Reason:     fmt.Sprintf("every variable has at least a %.1f%% buffer to break-even", absPercent(tightest.DistancePercent)),
			Confidence: t.StrongConfidence,
		}
	}
}

func absPercent(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
