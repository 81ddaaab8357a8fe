package output

import (
	"bytes"
	"encoding/csv"
	"sort"

	"github.com/bizlens/bizcalc/internal/domain"
)

// CSVSummarizer implements the simple summary CSV output (one row per analysis).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(report *domain.AnalysisReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Title", "Type", "Recommendation", "Confidence", "NPV", "IRRPercent", "IRRConverged", "SimplePayback", "DiscountedPayback", "ROIPercent", "CAGRPercent", "BaseProfit", "BaseMarginPercent"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	outcomes := append([]domain.AnalysisOutcome(nil), report.Outcomes...)
	sort.SliceStable(outcomes, func(i, j int) bool { return outcomes[i].Title < outcomes[j].Title })
	for _, o := range outcomes {
		row := make([]string, len(header))
		row[0], row[1] = o.Title, string(o.Type)
		row[2], row[3] = string(o.Recommendation.Category), intToString(o.Recommendation.Confidence)
		switch r := o.Results.(type) {
		case domain.NpvIrrContext:
			row[4], row[5], row[6] = csvAmount(r.NPV), csvRatio(r.IRR.RatePercent), boolToString(r.IRR.Converged)
		case domain.PaybackContext:
			row[7], row[8] = csvRatio(r.Result.SimpleYears), csvRatio(r.Result.DiscountedYears)
		case domain.RoiContext:
			row[9], row[10] = csvRatio(r.Result.ROIPercent), csvRatio(r.Result.CAGRPercent)
		case domain.SensitivityContext:
			row[11], row[12] = csvMoney(r.BaseProfit), csvRatio(r.BaseMarginPercent)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
