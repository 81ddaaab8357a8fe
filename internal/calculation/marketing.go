package calculation

import (
	"math"
	"sort"

	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// ChannelMetricsFor derives contribution margin, margin %, cash
// conversion and ROAS for one channel. Ratios over zero revenue or zero ad
// spend are reported as zero.
func ChannelMetricsFor(in domain.ChannelInput) domain.ChannelMetrics {
	cm := in.Revenue.Sub(in.COGS).Sub(in.AdSpend).Sub(in.OtherVariableCosts)
	m := domain.ChannelMetrics{
		Channel:            in.Name,
		Revenue:            in.Revenue,
		ContributionMargin: cm,
		CashCollected:      in.CashCollected,
	}
	if !in.Revenue.IsZero() {
		m.MarginPercent = cm.Div(in.Revenue).Mul(hundred).InexactFloat64()
		m.CashConversionRate = in.CashCollected.Div(in.Revenue).InexactFloat64()
	}
	if !in.AdSpend.IsZero() {
		m.ROAS = in.Revenue.Div(in.AdSpend).InexactFloat64()
	}
	return m
}

// AttributeProfit computes metrics for every channel and each channel's share
// of the total positive contribution margin. Loss-making channels get a
// negative share.
func AttributeProfit(inputs []domain.ChannelInput) []domain.ChannelMetrics {
	out := make([]domain.ChannelMetrics, len(inputs))
	positive := decimal.Zero
	for i, in := range inputs {
		out[i] = ChannelMetricsFor(in)
		if out[i].ContributionMargin.IsPositive() {
			positive = positive.Add(out[i].ContributionMargin)
		}
	}
	if positive.IsPositive() {
		for i := range out {
			out[i].ProfitSharePercent = out[i].ContributionMargin.Div(positive).Mul(hundred).InexactFloat64()
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ContributionMargin.GreaterThan(out[j].ContributionMargin)
	})
	return out
}

// CustomerLTV is the discounted gross margin an average customer produces
// over their lifetime. Year y is discounted by (1+rate)^y.
func CustomerLTV(in domain.LTVInput) (domain.LTVResult, error) {
	if in.LifetimeYears <= 0 {
		return domain.LTVResult{}, ErrNonPositiveYears
	}
	rate := in.DiscountRatePercent / 100
	if rate == -1 {
		return domain.LTVResult{}, ErrDivisionByZero
	}
	annual := in.AverageOrderValue * in.PurchasesPerYear * in.GrossMarginPercent / 100
	var ltv float64
	for y := 1; y <= in.LifetimeYears; y++ {
		ltv += annual / math.Pow(1+rate, float64(y))
	}
	res := domain.LTVResult{AnnualMargin: annual, LTV: ltv}
	if in.AcquisitionCost > 0 {
		res.LTVToCAC = ltv / in.AcquisitionCost
	}
	return res, nil
}
