package calculation

import (
	"fmt"
	"math"

	"github.com/bizlens/bizcalc/internal/domain"
)

// DefaultPaybackHorizon caps discounted payback, in periods.
const DefaultPaybackHorizon = 20

// SimplePayback is investment / annualCashFlow.
func SimplePayback(investment, annualCashFlow float64) (float64, error) {
	if annualCashFlow <= 0 {
		return 0, ErrNonPositiveCashFlow
	}
	return investment / annualCashFlow, nil
}

// PaybackSchedule lists each period's grown cash flow, its present value and
// the running total. growthRate and discountRate are fractions.
func PaybackSchedule(investment, annualCashFlow, growthRate, discountRate float64, horizon int) ([]domain.PaybackPeriod, error) {
	if horizon <= 0 {
		return nil, ErrInvalidHorizon
	}
	if discountRate == -1 {
		return nil, fmt.Errorf("discount rate -100%%: %w", ErrDivisionByZero)
	}
	rows := make([]domain.PaybackPeriod, 0, horizon)
	var cumulative float64
	for period := 1; period <= horizon; period++ {
		cf := annualCashFlow * math.Pow(1+growthRate, float64(period-1))
		pv := cf / math.Pow(1+discountRate, float64(period))
		cumulative += pv
		rows = append(rows, domain.PaybackPeriod{
			Period:       period,
			CashFlow:     cf,
			PresentValue: pv,
			CumulativePV: cumulative,
			Remaining:    investment - cumulative,
		})
	}
	return rows, nil
}

// DiscountedPayback returns the fractional period at which cumulative
// discounted cash flow first reaches the investment. When that never happens
// within horizon periods the result is exactly float64(horizon) and recovered
// is false.
func DiscountedPayback(investment, annualCashFlow, growthRate, discountRate float64, horizon int) (years float64, recovered bool, err error) {
	if investment <= 0 {
		return 0, false, ErrNonPositiveInvestment
	}
	rows, err := PaybackSchedule(investment, annualCashFlow, growthRate, discountRate, horizon)
	if err != nil {
		return 0, false, err
	}
	var before float64
	for _, row := range rows {
		if before+row.PresentValue >= investment {
			return float64(row.Period-1) + (investment-before)/row.PresentValue, true, nil
		}
		before += row.PresentValue
	}
	return float64(horizon), false, nil
}

// CalculatePayback combines simple and discounted payback. Rates are fractions;
// a non-positive horizon falls back to DefaultPaybackHorizon.
func CalculatePayback(investment, annualCashFlow, growthRate, discountRate float64, horizon int) (domain.PaybackResult, error) {
	if horizon <= 0 {
		horizon = DefaultPaybackHorizon
	}
	simple, err := SimplePayback(investment, annualCashFlow)
	if err != nil {
		return domain.PaybackResult{}, err
	}
	discounted, recovered, err := DiscountedPayback(investment, annualCashFlow, growthRate, discountRate, horizon)
	if err != nil {
		return domain.PaybackResult{}, err
	}
	return domain.PaybackResult{
		SimpleYears:     simple,
		DiscountedYears: discounted,
		Recovered:       recovered,
		Horizon:         horizon,
	}, nil
}
