package calculation

import (
	"fmt"
	"math"

	"github.com/bizlens/bizcalc/internal/domain"
)

// NPV discounts flows[i] by (1+rate)^(i+1) and subtracts the investment.
// rate is a fraction (0.12 = 12%). Rates close to -100% over long schedules
// overflow float64 and fail with ErrNonFiniteResult.
func NPV(investment float64, flows []float64, rate float64) (float64, error) {
	if rate == -1 {
		return 0, fmt.Errorf("npv at rate -100%%: %w", ErrDivisionByZero)
	}
	npv := -investment
	for i, cf := range flows {
		npv += cf / math.Pow(1+rate, float64(i+1))
	}
	if err := checkFinite(fmt.Sprintf("npv at rate %g%%", rate*100), npv); err != nil {
		return 0, err
	}
	return npv, nil
}

// npvDerivative is dNPV/drate.
func npvDerivative(flows []float64, rate float64) float64 {
	var d float64
	for i, cf := range flows {
		d += -float64(i+1) * cf / math.Pow(1+rate, float64(i+2))
	}
	return d
}

// IRRSolver finds the internal rate of return with Newton-Raphson.
//
// The loop stops on MaxIterations, on a derivative smaller than
// DerivativeTolerance, on a step smaller than StepTolerance, or when the next
// iterate would leave the rate domain (rate <= -100%). Whatever the stop
// reason, the last iterate is returned; Converged tells whether NPV there is
// within ResidualTolerance*investment of zero.
//
// ScaleStepByInvestment divides every Newton step by the investment. Steps
// then shrink with the size of the project and the rate barely leaves the
// seed; it exists only to reproduce figures from tools that iterate that way.
type IRRSolver struct {
	Seed                  float64
	MaxIterations         int
	DerivativeTolerance   float64
	StepTolerance         float64
	ResidualTolerance     float64
	ScaleStepByInvestment bool
}

// DefaultIRRSolver seeds at 10% and iterates at most 100 times.
func DefaultIRRSolver() IRRSolver {
	return IRRSolver{
		Seed:                0.10,
		MaxIterations:       100,
		DerivativeTolerance: 0.0001,
		StepTolerance:       1e-12,
		ResidualTolerance:   1e-6,
	}
}

// Solve runs the solver over a schedule.
func (s IRRSolver) Solve(schedule domain.CashFlowSchedule) (domain.IRRResult, error) {
	if len(schedule.Flows) == 0 {
		return domain.IRRResult{}, ErrEmptySchedule
	}
	if schedule.Investment <= 0 {
		return domain.IRRResult{}, ErrNonPositiveInvestment
	}

	irr := s.Seed
	iterations := 0
	for iterations < s.MaxIterations {
		npv, err := NPV(schedule.Investment, schedule.Flows, irr)
		if err != nil {
			break
		}
		derivative := npvDerivative(schedule.Flows, irr)
		if math.Abs(derivative) < s.DerivativeTolerance {
			break
		}
		step := npv / derivative
		if s.ScaleStepByInvestment {
			step /= schedule.Investment
		}
		next := irr - step
		if 1+next <= 0 || math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		irr = next
		iterations++
		if math.Abs(step) < s.StepTolerance {
			break
		}
	}

	residual, err := NPV(schedule.Investment, schedule.Flows, irr)
	if err != nil {
		return domain.IRRResult{}, err
	}
	return domain.IRRResult{
		RatePercent: irr * 100,
		Iterations:  iterations,
		Converged:   math.Abs(residual) <= s.ResidualTolerance*schedule.Investment,
		ResidualNPV: residual,
	}, nil
}

// IRR solves with DefaultIRRSolver.
func IRR(investment float64, flows []float64) (domain.IRRResult, error) {
	return DefaultIRRSolver().Solve(domain.CashFlowSchedule{Investment: investment, Flows: flows})
}

// DefaultGridDeltas is the perturbation axis used by heatmaps, in percent.
var DefaultGridDeltas = []float64{-20, -10, 0, 10, 20}

// RateGrid returns n rates centred on base and spaced by step, in percent.
// Rates at or below -100% are dropped.
func RateGrid(basePercent, stepPercent float64, n int) []float64 {
	rates := make([]float64, 0, n)
	start := basePercent - stepPercent*float64(n/2)
	for i := 0; i < n; i++ {
		r := start + stepPercent*float64(i)
		if r <= -100 {
			continue
		}
		rates = append(rates, r)
	}
	return rates
}

// CalculateNPVHeatmap evaluates NPV at every (rate, cash-flow delta) pair.
// Rates and deltas are percentages; flows are scaled by (1+delta/100).
func CalculateNPVHeatmap(schedule domain.CashFlowSchedule, ratesPercent, flowDeltasPercent []float64) (*domain.NPVHeatmap, error) {
	if len(ratesPercent) == 0 || len(flowDeltasPercent) == 0 {
		return nil, fmt.Errorf("npv heatmap needs at least one rate and one delta")
	}
	hm := &domain.NPVHeatmap{
		RatesPercent:      append([]float64(nil), ratesPercent...),
		FlowDeltasPercent: append([]float64(nil), flowDeltasPercent...),
		Cells:             make([][]domain.NPVHeatmapCell, len(ratesPercent)),
	}
	scaled := make([]float64, len(schedule.Flows))
	for i, rate := range ratesPercent {
		row := make([]domain.NPVHeatmapCell, len(flowDeltasPercent))
		for j, delta := range flowDeltasPercent {
			for k, cf := range schedule.Flows {
				scaled[k] = cf * (1 + delta/100)
			}
			npv, err := NPV(schedule.Investment, scaled, rate/100)
			if err != nil {
				return nil, err
			}
			row[j] = domain.NPVHeatmapCell{RatePercent: rate, FlowDeltaPercent: delta, NPV: npv}
		}
		hm.Cells[i] = row
	}
	return hm, nil
}
