package output

import (
	"bytes"
	"encoding/csv"

	"github.com/bizlens/bizcalc/internal/domain"
)

// TornadoCSVExporter writes one row per tornado bar of every sensitivity analysis.
type TornadoCSVExporter struct{}

func (c TornadoCSVExporter) Name() string { return "tornado-csv" }

func (c TornadoCSVExporter) Format(report *domain.AnalysisReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Analysis", "Variable", "Kind", "DeltaPercent", "LowImpactPercent", "HighImpactPercent", "BreakEvenPercent", "Risk"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, o := range report.Outcomes {
		r, ok := o.Results.(domain.SensitivityContext)
		if !ok {
			continue
		}
		distances := make(map[string]domain.BreakEvenDistance, len(r.BreakEven))
		for _, d := range r.BreakEven {
			distances[d.Variable] = d
		}
		for _, b := range r.Tornado {
			row := []string{o.Title, b.Variable, string(b.Kind), csvRatio(b.DeltaPercent), csvRatio(b.LowImpact), csvRatio(b.HighImpact), "", ""}
			if d, ok := distances[b.Variable]; ok {
				row[6], row[7] = csvRatio(d.DistancePercent), string(d.Risk)
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// HeatmapCSVExporter flattens every profit and NPV heatmap to long format,
// one row per grid cell.
type HeatmapCSVExporter struct{}

func (c HeatmapCSVExporter) Name() string { return "heatmap-csv" }

func (c HeatmapCSVExporter) Format(report *domain.AnalysisReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Analysis", "XAxis", "X", "YAxis", "Y", "Value", "MarginPercent"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, o := range report.Outcomes {
		switch r := o.Results.(type) {
		case domain.SensitivityContext:
			if r.Heatmap == nil {
				continue
			}
			for _, row := range r.Heatmap.Cells {
				for _, cell := range row {
					rec := []string{o.Title, r.Heatmap.XVariable, csvRatio(cell.DeltaX), r.Heatmap.YVariable, csvRatio(cell.DeltaY), csvMoney(cell.Profit), csvRatio(cell.MarginPercent)}
					if err := w.Write(rec); err != nil {
						return nil, err
					}
				}
			}
		case domain.NpvIrrContext:
			if r.Heatmap == nil {
				continue
			}
			for _, row := range r.Heatmap.Cells {
				for _, cell := range row {
					rec := []string{o.Title, "discount_rate", csvRatio(cell.RatePercent), "cash_flow_delta", csvRatio(cell.FlowDeltaPercent), csvAmount(cell.NPV), ""}
					if err := w.Write(rec); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
