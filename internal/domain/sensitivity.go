package domain

import (
	"fmt"
	"strings"

	money "github.com/bizlens/bizcalc/pkg/decimal"
	"github.com/shopspring/decimal"
)

// VariableKind tells whether a P&L line raises or lowers profit when it grows.
type VariableKind string

const (
	KindRevenue VariableKind = "revenue"
	KindCost    VariableKind = "cost"
)

// ChangeDirection is the direction a variable has to move.
type ChangeDirection string

const (
	DirectionIncrease ChangeDirection = "increase"
	DirectionDecrease ChangeDirection = "decrease"
)

// RiskTier grades a break-even buffer. Smaller buffers are riskier.
type RiskTier string

const (
	RiskHigh   RiskTier = "high"
	RiskMedium RiskTier = "medium"
	RiskLow    RiskTier = "low"
)

// PLVariable is one line of a simple profit and loss model.
type PLVariable struct {
	Name  string          `yaml:"name" json:"name"`
	Kind  VariableKind    `yaml:"kind" json:"kind"`
	Value decimal.Decimal `yaml:"value" json:"value"`
}

// ProfitModel is profit = sum(revenue lines) - sum(cost lines).
type ProfitModel struct {
	Variables []PLVariable `yaml:"variables" json:"variables"`
}

// NewProfitModel builds the common three-line model.
func NewProfitModel(revenue, cogs, opex float64) ProfitModel {
	return ProfitModel{Variables: []PLVariable{
		{Name: "revenue", Kind: KindRevenue, Value: decimal.NewFromFloat(revenue)},
		{Name: "cogs", Kind: KindCost, Value: decimal.NewFromFloat(cogs)},
		{Name: "opex", Kind: KindCost, Value: decimal.NewFromFloat(opex)},
	}}
}

// Validate checks names are unique and kinds are known.
func (m ProfitModel) Validate() error {
	if len(m.Variables) == 0 {
		return fmt.Errorf("profit model has no variables")
	}
	seen := make(map[string]bool, len(m.Variables))
	for _, v := range m.Variables {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			return fmt.Errorf("variable name is required")
		}
		if seen[name] {
			return fmt.Errorf("duplicate variable %q", name)
		}
		seen[name] = true
		if v.Kind != KindRevenue && v.Kind != KindCost {
			return fmt.Errorf("variable %q: kind must be 'revenue' or 'cost'", name)
		}
	}
	return nil
}

// Variable looks a line up by name.
func (m ProfitModel) Variable(name string) (PLVariable, bool) {
	for _, v := range m.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return PLVariable{}, false
}

// Profit evaluates the model with each variable scaled by (1 + delta/100).
// Missing entries in deltasPercent mean no change.
func (m ProfitModel) Profit(deltasPercent map[string]float64) decimal.Decimal {
	profit := money.Zero()
	for _, v := range m.Variables {
		value := money.NewMoneyFromDecimal(v.Value).Scale(deltasPercent[v.Name])
		if v.Kind == KindRevenue {
			profit = profit.Add(value)
		} else {
			profit = profit.Sub(value)
		}
	}
	return profit.Decimal
}

// Revenue sums revenue lines under the same deltas.
func (m ProfitModel) Revenue(deltasPercent map[string]float64) decimal.Decimal {
	revenue := money.Zero()
	for _, v := range m.Variables {
		if v.Kind == KindRevenue {
			revenue = revenue.Add(money.NewMoneyFromDecimal(v.Value).Scale(deltasPercent[v.Name]))
		}
	}
	return revenue.Decimal
}

// MarginPercent is profit over revenue; zero when there is no revenue.
func (m ProfitModel) MarginPercent(deltasPercent map[string]float64) float64 {
	revenue := m.Revenue(deltasPercent)
	if revenue.IsZero() {
		return 0
	}
	return m.Profit(deltasPercent).Div(revenue).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// SensitivityCoefficient is the signed % impact on profit of a delta on one variable.
type SensitivityCoefficient struct {
	Variable      string          `json:"variable"`
	Kind          VariableKind    `json:"kind"`
	ImpactPercent float64         `json:"impact_percent"`
	Direction     ChangeDirection `json:"direction"`
}

// TornadoBar holds the profit impact at -delta (Low) and +delta (High).
type TornadoBar struct {
	Variable     string       `json:"variable"`
	Kind         VariableKind `json:"kind"`
	DeltaPercent float64      `json:"delta_percent"`
	LowImpact    float64      `json:"low_impact"`
	HighImpact   float64      `json:"high_impact"`
}

// Swing is the width of the bar.
func (b TornadoBar) Swing() float64 {
	if b.HighImpact > b.LowImpact {
		return b.HighImpact - b.LowImpact
	}
	return b.LowImpact - b.HighImpact
}

// BreakEvenDistance is the % change in one variable that drives profit to zero.
type BreakEvenDistance struct {
	Variable        string          `json:"variable"`
	Kind            VariableKind    `json:"kind"`
	DistancePercent float64         `json:"distance_percent"`
	Direction       ChangeDirection `json:"direction"`
	Risk            RiskTier        `json:"risk"`
}

// HeatmapCell is profit and margin at one grid point of a two-variable sweep.
type HeatmapCell struct {
	DeltaX        float64         `json:"delta_x"`
	DeltaY        float64         `json:"delta_y"`
	Profit        decimal.Decimal `json:"profit"`
	MarginPercent float64         `json:"margin_percent"`
}

// Heatmap is a dense grid: Cells[i][j] is XDeltas[i] x YDeltas[j].
type Heatmap struct {
	XVariable string          `json:"x_variable"`
	YVariable string          `json:"y_variable"`
	XDeltas   []float64       `json:"x_deltas"`
	YDeltas   []float64       `json:"y_deltas"`
	Cells     [][]HeatmapCell `json:"cells"`
}

// Cell returns the cell for the given deltas.
func (h *Heatmap) Cell(dx, dy float64) (HeatmapCell, bool) {
	for i, x := range h.XDeltas {
		if x != dx {
			continue
		}
		for j, y := range h.YDeltas {
			if y == dy {
				return h.Cells[i][j], true
			}
		}
	}
	return HeatmapCell{}, false
}
