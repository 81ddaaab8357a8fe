package calculation

import (
	"fmt"

	"github.com/bizlens/bizcalc/internal/domain"
)

// CalculateProfitHeatmap re-evaluates the profit model at every point of the
// XDeltas x YDeltas grid. Empty delta lists use DefaultGridDeltas.
func CalculateProfitHeatmap(model domain.ProfitModel, spec domain.HeatmapSpec) (*domain.Heatmap, error) {
	if _, ok := model.Variable(spec.X); !ok {
		return nil, fmt.Errorf("heatmap x %q: %w", spec.X, ErrUnknownVariable)
	}
	if _, ok := model.Variable(spec.Y); !ok {
		return nil, fmt.Errorf("heatmap y %q: %w", spec.Y, ErrUnknownVariable)
	}
	if spec.X == spec.Y {
		return nil, fmt.Errorf("heatmap needs two different variables, got %q twice", spec.X)
	}
	xDeltas := spec.XDeltasPercent
	if len(xDeltas) == 0 {
		xDeltas = DefaultGridDeltas
	}
	yDeltas := spec.YDeltasPercent
	if len(yDeltas) == 0 {
		yDeltas = DefaultGridDeltas
	}

	hm := &domain.Heatmap{
		XVariable: spec.X,
		YVariable: spec.Y,
		XDeltas:   append([]float64(nil), xDeltas...),
		YDeltas:   append([]float64(nil), yDeltas...),
		Cells:     make([][]domain.HeatmapCell, len(xDeltas)),
	}
	for i, dx := range xDeltas {
		row := make([]domain.HeatmapCell, len(yDeltas))
		for j, dy := range yDeltas {
			deltas := map[string]float64{spec.X: dx, spec.Y: dy}
			row[j] = domain.HeatmapCell{
				DeltaX:        dx,
				DeltaY:        dy,
				Profit:        model.Profit(deltas),
				MarginPercent: model.MarginPercent(deltas),
			}
		}
		hm.Cells[i] = row
	}
	return hm, nil
}

// defaultHeatmapSpec pairs the first revenue line with the first cost line.
func defaultHeatmapSpec(model domain.ProfitModel) (domain.HeatmapSpec, bool) {
	var spec domain.HeatmapSpec
	for _, v := range model.Variables {
		if v.Kind == domain.KindRevenue && spec.X == "" {
			spec.X = v.Name
		}
		if v.Kind == domain.KindCost && spec.Y == "" {
			spec.Y = v.Name
		}
	}
	return spec, spec.X != "" && spec.Y != ""
}
