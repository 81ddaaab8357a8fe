package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bizlens/bizcalc/internal/calculation"
	"github.com/bizlens/bizcalc/internal/config"
	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/bizlens/bizcalc/internal/output"
	"github.com/bizlens/bizcalc/internal/service"
	"github.com/bizlens/bizcalc/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) npvCmd() *cobra.Command {
	var (
		in    domain.NPVInputs
		title string
		save  bool
	)
	cmd := &cobra.Command{
		Use:   "npv",
		Short: "Net present value and internal rate of return of a cash-flow schedule",
		Example: `  bizcalc npv --investment 2000000000 \
    --flows 400000000,500000000,600000000,700000000,800000000 --rate 12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.analyze(cmd, &domain.AnalysisRequest{Type: domain.AnalysisNPVIRR, Title: title, NPV: &in}, save)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&in.Investment, "investment", 0, "Initial investment (positive amount)")
	f.Float64SliceVar(&in.Flows, "flows", nil, "Cash flows of periods 1..N, comma separated")
	f.Float64Var(&in.DiscountRatePercent, "rate", 10, "Discount rate in percent")
	f.StringVar(&title, "title", "NPV analysis", "Analysis title")
	f.BoolVar(&save, "save", false, "Save the outcome to the configured store")
	cmd.MarkFlagRequired("investment")
	cmd.MarkFlagRequired("flows")
	return cmd
}

func (a *app) paybackCmd() *cobra.Command {
	var (
		in    domain.PaybackInputs
		title string
		save  bool
	)
	cmd := &cobra.Command{
		Use:     "payback",
		Short:   "Simple and discounted payback period",
		Example: `  bizcalc payback --investment 1500000000 --cash-flow 400000000 --rate 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.analyze(cmd, &domain.AnalysisRequest{Type: domain.AnalysisPayback, Title: title, Payback: &in}, save)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&in.Investment, "investment", 0, "Initial investment")
	f.Float64Var(&in.AnnualCashFlow, "cash-flow", 0, "Cash flow of the first period")
	f.Float64Var(&in.GrowthRatePercent, "growth", 0, "Yearly cash-flow growth in percent")
	f.Float64Var(&in.DiscountRatePercent, "rate", 10, "Discount rate in percent")
	f.IntVar(&in.Horizon, "horizon", 0, "Periods searched for discounted payback (default 20)")
	f.StringVar(&title, "title", "Payback analysis", "Analysis title")
	f.BoolVar(&save, "save", false, "Save the outcome to the configured store")
	cmd.MarkFlagRequired("investment")
	cmd.MarkFlagRequired("cash-flow")
	return cmd
}

func (a *app) roiCmd() *cobra.Command {
	var (
		in    domain.ROIInputs
		title string
		save  bool
	)
	cmd := &cobra.Command{
		Use:     "roi",
		Short:   "Return on investment and compound annual growth rate",
		Example: `  bizcalc roi --investment 1000000000 --returns 2200000000 --years 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.analyze(cmd, &domain.AnalysisRequest{Type: domain.AnalysisROI, Title: title, ROI: &in}, save)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&in.Investment, "investment", 0, "Initial investment")
	f.Float64Var(&in.TotalReturns, "returns", 0, "Total amount returned over the period")
	f.IntVar(&in.Years, "years", 0, "Length of the period in years")
	f.Float64SliceVar(&in.YearlyReturns, "yearly", nil, "Per-year returns instead of --returns/--years")
	f.StringVar(&title, "title", "ROI analysis", "Analysis title")
	f.BoolVar(&save, "save", false, "Save the outcome to the configured store")
	cmd.MarkFlagRequired("investment")
	return cmd
}

func (a *app) sensitivityCmd() *cobra.Command {
	var (
		revenue, cogs, opex float64
		delta               float64
		heatX, heatY        string
		title               string
		save                bool
	)
	cmd := &cobra.Command{
		Use:     "sensitivity",
		Short:   "Profit sensitivity, tornado and break-even distances of a simple P&L",
		Example: `  bizcalc sensitivity --revenue 10000000000 --cogs 6000000000 --opex 2500000000 --heatmap-x revenue --heatmap-y cogs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.SensitivityInputs{
				ProfitModel:  domain.NewProfitModel(revenue, cogs, opex),
				DeltaPercent: delta,
			}
			if heatX != "" || heatY != "" {
				in.Heatmap = &domain.HeatmapSpec{X: heatX, Y: heatY}
			}
			return a.analyze(cmd, &domain.AnalysisRequest{Type: domain.AnalysisSensitivity, Title: title, Sensitivity: &in}, save)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&revenue, "revenue", 0, "Revenue")
	f.Float64Var(&cogs, "cogs", 0, "Cost of goods sold")
	f.Float64Var(&opex, "opex", 0, "Operating expenses")
	f.Float64Var(&delta, "delta", calculation.DefaultDeltaPercent, "Change applied to each variable, in percent")
	f.StringVar(&heatX, "heatmap-x", "", "First heatmap variable (revenue, cogs or opex)")
	f.StringVar(&heatY, "heatmap-y", "", "Second heatmap variable")
	f.StringVar(&title, "title", "Sensitivity analysis", "Analysis title")
	f.BoolVar(&save, "save", false, "Save the outcome to the configured store")
	cmd.MarkFlagRequired("revenue")
	return cmd
}

func (a *app) ltvCmd() *cobra.Command {
	var in domain.LTVInput
	cmd := &cobra.Command{
		Use:     "ltv",
		Short:   "Customer lifetime value and LTV:CAC ratio",
		Example: `  bizcalc ltv --order-value 80 --purchases 4 --margin 60 --years 5 --rate 10 --cac 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.NewInputParser().ValidateLTV(&in); err != nil {
				return fmt.Errorf("invalid ltv inputs: %w", err)
			}
			res, err := calculation.CustomerLTV(in)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Annual margin:  %s\n", output.FormatCurrency(res.AnnualMargin))
			fmt.Fprintf(w, "Lifetime value: %s over %d years\n", output.FormatCurrency(res.LTV), in.LifetimeYears)
			if in.AcquisitionCost > 0 {
				fmt.Fprintf(w, "LTV:CAC:        %.2fx\n", res.LTVToCAC)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&in.AverageOrderValue, "order-value", 0, "Average order value")
	f.Float64Var(&in.PurchasesPerYear, "purchases", 1, "Purchases per customer per year")
	f.Float64Var(&in.GrossMarginPercent, "margin", 0, "Gross margin in percent")
	f.IntVar(&in.LifetimeYears, "years", 3, "Customer lifetime in years")
	f.Float64Var(&in.DiscountRatePercent, "rate", 10, "Discount rate in percent")
	f.Float64Var(&in.AcquisitionCost, "cac", 0, "Customer acquisition cost")
	cmd.MarkFlagRequired("order-value")
	cmd.MarkFlagRequired("margin")
	return cmd
}

// analyze runs a single request with default thresholds, prints it and
// optionally saves it.
func (a *app) analyze(cmd *cobra.Command, req *domain.AnalysisRequest, save bool) error {
	if err := config.NewInputParser().ValidateRequest(req); err != nil {
		return fmt.Errorf("invalid %s analysis: %w", req.Type, err)
	}
	formatter, err := output.LookupFormatter(a.format)
	if err != nil {
		return err
	}
	engine := a.engine(domain.DefaultDecisionThresholds())
	outcome, err := engine.RunAnalysis(cmd.Context(), req)
	if err != nil {
		return err
	}
	report := &domain.AnalysisReport{GeneratedAt: time.Now().UTC(), Outcomes: []domain.AnalysisOutcome{*outcome}}
	data, err := formatter.Format(report)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return err
	}
	if save {
		return a.saveOutcomes(cmd.Context(), cmd, engine, report.Outcomes)
	}
	return nil
}

// openService connects the configured store.
func (a *app) openService(ctx context.Context, engine *calculation.CalculationEngine) (*service.AnalysisService, store.Repository, config.Settings, error) {
	settings, err := a.settings()
	if err != nil {
		return nil, nil, settings, err
	}
	repo, err := store.Open(ctx, settings)
	if err != nil {
		return nil, nil, settings, err
	}
	a.logger.Debug("store opened", zap.String("store", settings.Store), zap.String("tenant", settings.TenantID))
	return service.NewAnalysisService(engine, repo, a.logger), repo, settings, nil
}

func (a *app) saveOutcomes(ctx context.Context, cmd *cobra.Command, engine *calculation.CalculationEngine, outcomes []domain.AnalysisOutcome) error {
	svc, repo, settings, err := a.openService(ctx, engine)
	if err != nil {
		return err
	}
	defer repo.Close()
	for i := range outcomes {
		rec, err := svc.Save(ctx, settings.TenantID, &outcomes[i])
		if err != nil {
			return fmt.Errorf("failed to save %q: %w", outcomes[i].Title, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved %q as %s (%s store, tenant %s)\n", rec.Title, rec.ID, settings.Store, settings.TenantID)
	}
	return nil
}
