package calculation

import (
	"fmt"
	"math"
	"sort"

	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// RiskTierFor grades the absolute break-even distance. Comparisons are strict:
// a distance equal to HighRiskBelow is already medium, one equal to
// MediumRiskBelow is already low.
func RiskTierFor(absDistancePercent float64, t domain.BreakEvenThresholds) domain.RiskTier {
	switch {
	case absDistancePercent < t.HighRiskBelow:
		return domain.RiskHigh
	case absDistancePercent < t.MediumRiskBelow:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// CalculateBreakEvenDistance returns the % change in v, all else fixed, that
// brings baseProfit to zero. Revenue must fall by profit/revenue; a cost line
// must rise by profit/cost. Negative distances mean a decrease.
func CalculateBreakEvenDistance(v domain.PLVariable, baseProfit decimal.Decimal, t domain.BreakEvenThresholds) (domain.BreakEvenDistance, error) {
	if v.Value.IsZero() {
		return domain.BreakEvenDistance{}, fmt.Errorf("break-even distance for %q: %w", v.Name, ErrDivisionByZero)
	}
	ratio := baseProfit.Div(v.Value).Mul(decimal.NewFromInt(100))
	if v.Kind == domain.KindRevenue {
		ratio = ratio.Neg()
	}
	distance := ratio.InexactFloat64()
	dir := domain.DirectionIncrease
	if distance < 0 {
		dir = domain.DirectionDecrease
	}
	return domain.BreakEvenDistance{
		Variable:        v.Name,
		Kind:            v.Kind,
		DistancePercent: distance,
		Direction:       dir,
		Risk:            RiskTierFor(math.Abs(distance), t),
	}, nil
}

// CalculateBreakEvenDistances evaluates every non-zero variable of the model,
// riskiest (smallest buffer) first. Zero-valued lines cannot move profit by
// scaling and are skipped.
func CalculateBreakEvenDistances(model domain.ProfitModel, t domain.BreakEvenThresholds) ([]domain.BreakEvenDistance, error) {
	profit := model.Profit(nil)
	out := make([]domain.BreakEvenDistance, 0, len(model.Variables))
	for _, v := range model.Variables {
		if v.Value.IsZero() {
			continue
		}
		d, err := CalculateBreakEvenDistance(v, profit, t)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].DistancePercent), math.Abs(out[j].DistancePercent)
		if ai != aj {
			return ai < aj
		}
		return out[i].Variable < out[j].Variable
	})
	return out, nil
}
