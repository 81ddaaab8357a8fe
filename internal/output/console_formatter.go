package output

import (
	"bytes"
	"fmt"

	"github.com/bizlens/bizcalc/internal/domain"
)

// ConsoleFormatter provides a concise console style summary via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(report *domain.AnalysisReport) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "BUSINESS ANALYSIS SUMMARY")
	fmt.Fprintln(&buf, "================================")
	for _, o := range report.Outcomes {
		label, value := headline(o)
		fmt.Fprintf(&buf, "%s [%s]: %s=%s -> %s (%d%%)\n",
			o.Title, o.Type, label, value, o.Recommendation.Category, o.Recommendation.Confidence)
	}
	if report.Channels != nil {
		fmt.Fprintln(&buf)
		for _, d := range report.Channels.Decisions {
			fmt.Fprintf(&buf, "Channel %s -> %s (%d%%)\n", d.Channel, d.Recommendation.Category, d.Recommendation.Confidence)
		}
	}
	s := SummarizeReport(report)
	if s.TopPick != "" {
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "Top pick: %s (confidence %d%%)\n", s.TopPick, s.TopConfidence)
	}
	if s.CriticalAlerts > 0 {
		fmt.Fprintf(&buf, "Critical alerts: %d\n", s.CriticalAlerts)
	}
	return buf.Bytes(), nil
}
