package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CashFlowSchedule is an investment outlay followed by the returns of periods 1..N.
// Investment is stored as a positive magnitude; Flows[0] is period 1.
type CashFlowSchedule struct {
	Investment float64   `yaml:"investment" json:"investment"`
	Flows      []float64 `yaml:"cash_flows" json:"cash_flows"`
}

// Validate checks the schedule invariants.
func (s CashFlowSchedule) Validate() error {
	if len(s.Flows) == 0 {
		return fmt.Errorf("cash flow schedule needs at least one period")
	}
	if s.Investment <= 0 {
		return fmt.Errorf("initial investment must be positive, got %v", s.Investment)
	}
	return nil
}

// Periods returns the number of return periods.
func (s CashFlowSchedule) Periods() int { return len(s.Flows) }

// TotalReturns sums all period flows.
func (s CashFlowSchedule) TotalReturns() float64 {
	var total float64
	for _, f := range s.Flows {
		total += f
	}
	return total
}

// IRRResult carries the rate found by the IRR solver.
// Converged reports whether NPV at RatePercent is actually close to zero;
// the rate is the solver's last iterate either way.
type IRRResult struct {
	RatePercent float64 `json:"rate_percent"`
	Iterations  int     `json:"iterations"`
	Converged   bool    `json:"converged"`
	ResidualNPV float64 `json:"residual_npv"`
}

// PaybackResult holds simple and discounted payback durations in periods.
// DiscountedYears equals Horizon exactly when the investment is not recovered.
type PaybackResult struct {
	SimpleYears     float64 `json:"simple_years"`
	DiscountedYears float64 `json:"discounted_years"`
	Recovered       bool    `json:"recovered"`
	Horizon         int     `json:"horizon"`
}

// PaybackPeriod is one row of a discounted payback schedule.
type PaybackPeriod struct {
	Period       int     `json:"period"`
	CashFlow     float64 `json:"cash_flow"`
	PresentValue float64 `json:"present_value"`
	CumulativePV float64 `json:"cumulative_pv"`
	Remaining    float64 `json:"remaining"`
}

// ROIResult summarises a multi-year return on investment.
type ROIResult struct {
	ROIPercent  float64         `json:"roi_percent"`
	CAGRPercent float64         `json:"cagr_percent"`
	Multiple    float64         `json:"multiple"`
	Years       int             `json:"years"`
	NetGain     decimal.Decimal `json:"net_gain"`
}

// NPVHeatmapCell is the NPV at one (discount rate, cash-flow delta) grid point.
type NPVHeatmapCell struct {
	RatePercent      float64 `json:"rate_percent"`
	FlowDeltaPercent float64 `json:"flow_delta_percent"`
	NPV              float64 `json:"npv"`
}

// NPVHeatmap is a dense grid: Cells[i][j] is RatesPercent[i] x FlowDeltasPercent[j].
type NPVHeatmap struct {
	RatesPercent      []float64          `json:"rates_percent"`
	FlowDeltasPercent []float64          `json:"flow_deltas_percent"`
	Cells             [][]NPVHeatmapCell `json:"cells"`
}
