package calculation

import (
	"math"
	"sort"

	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultDeltaPercent is the perturbation used for coefficients and tornado bars.
const DefaultDeltaPercent = 10.0

// naiveImpact is (value * delta) / |profit| * 100, always non-negative for
// non-negative values. Profit is taken by magnitude so that the sign of a
// coefficient depends only on the variable kind.
func naiveImpact(baseValue, baseProfit decimal.Decimal, deltaPercent float64) (float64, error) {
	if baseProfit.IsZero() {
		return 0, ErrDivisionByZero
	}
	// (value * delta/100) / |profit| * 100 simplifies to value * delta / |profit|.
	return baseValue.Mul(decimal.NewFromFloat(deltaPercent)).Div(baseProfit.Abs()).InexactFloat64(), nil
}

// ImpactCoefficient is the % change in profit caused by raising one variable
// by deltaPercent. Revenue lines are positive, cost lines negative.
func ImpactCoefficient(baseValue, baseProfit decimal.Decimal, deltaPercent float64, kind domain.VariableKind) (float64, error) {
	c, err := naiveImpact(baseValue, baseProfit, deltaPercent)
	if err != nil {
		return 0, err
	}
	if kind == domain.KindCost {
		return -c, nil
	}
	return c, nil
}

// SensitivityCoefficients computes a coefficient per variable, ranked by
// absolute impact descending (ties by name).
func SensitivityCoefficients(model domain.ProfitModel, deltaPercent float64) ([]domain.SensitivityCoefficient, error) {
	profit := model.Profit(nil)
	coeffs := make([]domain.SensitivityCoefficient, 0, len(model.Variables))
	for _, v := range model.Variables {
		impact, err := ImpactCoefficient(v.Value, profit, deltaPercent, v.Kind)
		if err != nil {
			return nil, err
		}
		dir := domain.DirectionIncrease
		if impact < 0 {
			dir = domain.DirectionDecrease
		}
		coeffs = append(coeffs, domain.SensitivityCoefficient{
			Variable:      v.Name,
			Kind:          v.Kind,
			ImpactPercent: impact,
			Direction:     dir,
		})
	}
	sort.SliceStable(coeffs, func(i, j int) bool {
		ai, aj := math.Abs(coeffs[i].ImpactPercent), math.Abs(coeffs[j].ImpactPercent)
		if ai != aj {
			return ai > aj
		}
		return coeffs[i].Variable < coeffs[j].Variable
	})
	return coeffs, nil
}

// MostSensitive returns the top-ranked coefficient.
func MostSensitive(coeffs []domain.SensitivityCoefficient) (domain.SensitivityCoefficient, bool) {
	if len(coeffs) == 0 {
		return domain.SensitivityCoefficient{}, false
	}
	best := coeffs[0]
	for _, c := range coeffs[1:] {
		if math.Abs(c.ImpactPercent) > math.Abs(best.ImpactPercent) {
			best = c
		}
	}
	return best, true
}

// Tornado builds one bar per variable. Revenue: low = -c, high = +c.
// Cost: low = +c (cheaper inputs raise profit), high = -c.
// Bars are sorted by swing descending.
func Tornado(model domain.ProfitModel, deltaPercent float64) ([]domain.TornadoBar, error) {
	profit := model.Profit(nil)
	bars := make([]domain.TornadoBar, 0, len(model.Variables))
	for _, v := range model.Variables {
		c, err := naiveImpact(v.Value, profit, deltaPercent)
		if err != nil {
			return nil, err
		}
		bar := domain.TornadoBar{Variable: v.Name, Kind: v.Kind, DeltaPercent: deltaPercent}
		if v.Kind == domain.KindCost {
			bar.LowImpact, bar.HighImpact = c, -c
		} else {
			bar.LowImpact, bar.HighImpact = -c, c
		}
		bars = append(bars, bar)
	}
	sort.SliceStable(bars, func(i, j int) bool {
		si, sj := bars[i].Swing(), bars[j].Swing()
		if si != sj {
			return si > sj
		}
		return bars[i].Variable < bars[j].Variable
	})
	return bars, nil
}
