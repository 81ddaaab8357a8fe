package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bizlens/bizcalc/internal/domain"
)

// ConsoleVerboseFormatter renders the detailed console report via the pluggable interface.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(report *domain.AnalysisReport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintln(&buf, "BUSINESS FINANCIAL ANALYSIS")
	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintf(&buf, "Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	assumptions := report.Assumptions
	if len(assumptions) == 0 {
		assumptions = DefaultAssumptions
	}
	for _, a := range assumptions {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	for i, o := range report.Outcomes {
		fmt.Fprintf(&buf, "ANALYSIS %d: %s (%s)\n", i+1, o.Title, o.Type)
		fmt.Fprintln(&buf, strings.Repeat("=", 50))
		if o.Description != "" {
			fmt.Fprintln(&buf, o.Description)
		}
		switch r := o.Results.(type) {
		case domain.NpvIrrContext:
			writeNPV(&buf, r)
		case domain.PaybackContext:
			writePayback(&buf, r)
		case domain.RoiContext:
			writeROI(&buf, r)
		case domain.SensitivityContext:
			writeSensitivity(&buf, r)
		}
		fmt.Fprintf(&buf, "RECOMMENDATION: %s\n", strings.ToUpper(string(o.Recommendation.Category)))
		fmt.Fprintf(&buf, "  %s (confidence %d%%)\n", o.Recommendation.Reason, o.Recommendation.Confidence)
		if len(o.Insights) > 0 {
			fmt.Fprintln(&buf, "INSIGHTS:")
			for _, in := range o.Insights {
				fmt.Fprintf(&buf, "  [%s] %s: %s\n", in.Level, in.Title, in.Detail)
			}
		}
		fmt.Fprintln(&buf)
	}

	if report.Channels != nil {
		writeChannels(&buf, report.Channels)
	}
	return buf.Bytes(), nil
}

func writeNPV(buf *bytes.Buffer, r domain.NpvIrrContext) {
	fmt.Fprintf(buf, "Investment:      %s\n", FormatCurrency(r.Inputs.Investment))
	fmt.Fprintf(buf, "Discount Rate:   %s\n", FormatPercentage(r.DiscountRatePercent))
	fmt.Fprintf(buf, "NPV:             %s\n", FormatCurrency(r.NPV))
	irr := FormatPercentage(r.IRR.RatePercent)
	if !r.IRR.Converged {
		irr += " (not converged)"
	}
	fmt.Fprintf(buf, "IRR:             %s\n", irr)
	fmt.Fprintf(buf, "Spread:          %s\n", FormatPercentage(r.SpreadPercent))
	if r.Heatmap != nil {
		fmt.Fprintln(buf, "NPV BY RATE (rows) AND CASH FLOW CHANGE (columns):")
		fmt.Fprintf(buf, "%10s", "")
		for _, d := range r.Heatmap.FlowDeltasPercent {
			fmt.Fprintf(buf, "%12s", fmt.Sprintf("%+.0f%%", d))
		}
		fmt.Fprintln(buf)
		for i, rate := range r.Heatmap.RatesPercent {
			fmt.Fprintf(buf, "%10s", FormatPercentage(rate))
			for _, cell := range r.Heatmap.Cells[i] {
				fmt.Fprintf(buf, "%12s", FormatCompact(cell.NPV))
			}
			fmt.Fprintln(buf)
		}
	}
}

func writePayback(buf *bytes.Buffer, r domain.PaybackContext) {
	fmt.Fprintf(buf, "Investment:          %s\n", FormatCurrency(r.Inputs.Investment))
	fmt.Fprintf(buf, "Annual Cash Flow:    %s\n", FormatCurrency(r.Inputs.AnnualCashFlow))
	fmt.Fprintf(buf, "Simple Payback:      %s\n", FormatYears(r.Result.SimpleYears))
	if r.Result.Recovered {
		fmt.Fprintf(buf, "Discounted Payback:  %s\n", FormatYears(r.Result.DiscountedYears))
	} else {
		fmt.Fprintf(buf, "Discounted Payback:  not recovered within %d periods\n", r.Result.Horizon)
	}
}

func writeROI(buf *bytes.Buffer, r domain.RoiContext) {
	fmt.Fprintf(buf, "Investment:   %s\n", FormatCurrency(r.Inputs.Investment))
	fmt.Fprintf(buf, "Net Gain:     %s\n", FormatMoney(r.Result.NetGain))
	fmt.Fprintf(buf, "ROI:          %s\n", FormatPercentage(r.Result.ROIPercent))
	fmt.Fprintf(buf, "CAGR:         %s over %d years\n", FormatPercentage(r.Result.CAGRPercent), r.Result.Years)
	fmt.Fprintf(buf, "Multiple:     %.2fx\n", r.Result.Multiple)
}

func writeSensitivity(buf *bytes.Buffer, r domain.SensitivityContext) {
	fmt.Fprintf(buf, "Base Profit:  %s (margin %s)\n", FormatMoney(r.BaseProfit), FormatPercentage(r.BaseMarginPercent))
	fmt.Fprintln(buf, "TORNADO:")
	for _, b := range r.Tornado {
		fmt.Fprintf(buf, "  %-16s %9s .. %9s\n", b.Variable, FormatPercentage(b.LowImpact), FormatPercentage(b.HighImpact))
	}
	fmt.Fprintln(buf, "BREAK-EVEN:")
	for _, d := range r.BreakEven {
		fmt.Fprintf(buf, "  %-16s %9s  %-8s risk=%s\n", d.Variable, FormatPercentage(d.DistancePercent), d.Direction, d.Risk)
	}
}

func writeChannels(buf *bytes.Buffer, ch *domain.ChannelReport) {
	fmt.Fprintln(buf, "CHANNEL PERFORMANCE")
	fmt.Fprintln(buf, strings.Repeat("=", 50))
	fmt.Fprintf(buf, "%-14s %14s %14s %9s %9s %9s\n", "Channel", "Revenue", "Contribution", "Margin", "Cash", "Share")
	for _, m := range ch.Metrics {
		fmt.Fprintf(buf, "%-14s %14s %14s %9s %9s %9s\n",
			m.Channel, FormatMoneyCompact(m.Revenue), FormatMoneyCompact(m.ContributionMargin),
			FormatPercentage(m.MarginPercent), FormatPercentage(m.CashConversionRate*100), FormatPercentage(m.ProfitSharePercent))
	}
	fmt.Fprintln(buf, "DECISIONS:")
	for _, d := range ch.Decisions {
		fmt.Fprintf(buf, "  %-14s %-8s %s\n", d.Channel, strings.ToUpper(string(d.Recommendation.Category)), d.Recommendation.Reason)
	}
	fmt.Fprintln(buf, "ALERTS:")
	for _, a := range ch.Alerts {
		fmt.Fprintf(buf, "  [%s] %s: %s (%s) -> %s\n", a.Severity, a.Channel, a.Title, FormatMoney(a.ImpactAmount), a.RecommendedAction)
	}
}
