package calculation

import (
	"fmt"
	"math"

	"github.com/bizlens/bizcalc/internal/domain"
	money "github.com/bizlens/bizcalc/pkg/decimal"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// toMoney converts a caller-supplied amount, refusing NaN and infinities.
func toMoney(v float64) (money.Money, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return money.Money{}, fmt.Errorf("amount %v: %w", v, ErrNonFiniteResult)
	}
	return money.NewMoney(v), nil
}

func roiPercent(investment, totalReturns money.Money) (float64, error) {
	if investment.IsZero() {
		return 0, ErrDivisionByZero
	}
	return totalReturns.Sub(investment).Div(investment.Decimal).Mul(hundred).InexactFloat64(), nil
}

// ROI is (totalReturns - investment) / investment, in percent.
func ROI(investment, totalReturns float64) (float64, error) {
	inv, err := toMoney(investment)
	if err != nil {
		return 0, err
	}
	ret, err := toMoney(totalReturns)
	if err != nil {
		return 0, err
	}
	return roiPercent(inv, ret)
}

// CAGR turns a cumulative ROI into a compound annual rate (fraction).
func CAGR(roiPercent float64, years int) (float64, error) {
	if years <= 0 {
		return 0, ErrNonPositiveYears
	}
	base := 1 + roiPercent/100
	if base < 0 {
		return 0, ErrUndefinedGrowth
	}
	return math.Pow(base, 1/float64(years)) - 1, nil
}

// InvestmentMultiple is totalReturns / investment.
func InvestmentMultiple(investment, totalReturns float64) (float64, error) {
	inv, err := toMoney(investment)
	if err != nil {
		return 0, err
	}
	ret, err := toMoney(totalReturns)
	if err != nil {
		return 0, err
	}
	if inv.IsZero() {
		return 0, ErrDivisionByZero
	}
	return ret.Div(inv.Decimal).InexactFloat64(), nil
}

// AnalyzeROI computes ROI, CAGR and multiple over the given number of years.
func AnalyzeROI(investment, totalReturns float64, years int) (domain.ROIResult, error) {
	inv, err := toMoney(investment)
	if err != nil {
		return domain.ROIResult{}, err
	}
	ret, err := toMoney(totalReturns)
	if err != nil {
		return domain.ROIResult{}, err
	}
	return analyzeROI(inv, ret, years)
}

// AnalyzeYearlyReturns sums per-year returns and analyses them over len(returns) years.
func AnalyzeYearlyReturns(investment float64, returns []float64) (domain.ROIResult, error) {
	inv, err := toMoney(investment)
	if err != nil {
		return domain.ROIResult{}, err
	}
	total := money.Zero()
	for _, r := range returns {
		m, err := toMoney(r)
		if err != nil {
			return domain.ROIResult{}, err
		}
		total = total.Add(m)
	}
	return analyzeROI(inv, total, len(returns))
}

func analyzeROI(investment, totalReturns money.Money, years int) (domain.ROIResult, error) {
	roi, err := roiPercent(investment, totalReturns)
	if err != nil {
		return domain.ROIResult{}, err
	}
	cagr, err := CAGR(roi, years)
	if err != nil {
		return domain.ROIResult{}, err
	}
	return domain.ROIResult{
		ROIPercent:  roi,
		CAGRPercent: cagr * 100,
		Multiple:    totalReturns.Div(investment.Decimal).InexactFloat64(),
		Years:       years,
		NetGain:     totalReturns.Sub(investment).Decimal,
	}, nil
}
