package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bizlens/bizcalc/internal/calculation"
	"github.com/bizlens/bizcalc/internal/config"
	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/bizlens/bizcalc/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the global flags and the logger shared by every command.
type app struct {
	verbose bool
	store   string
	tenant  string
	format  string
	envFile string

	logger *zap.Logger
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bizcalc",
		Short: "Business financial analysis: NPV/IRR, payback, ROI and sensitivity",
		Long: `bizcalc evaluates investment decisions.

It computes NPV and IRR, simple and discounted payback, ROI and CAGR,
profit sensitivity with break-even distances, and classifies each result
into an invest, consider or reject recommendation. Marketing channels can
be evaluated into scale, maintain, reduce or stop decisions with risk alerts.

Results can be saved to a memory, sqlite, postgres or redis store and
approved later.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.logger != nil {
				return nil
			}
			cfg := zap.NewProductionConfig()
			if a.verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			a.logger, err = cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&a.store, "store", "", "Store backend: memory, sqlite, postgres or redis (default $BIZCALC_STORE or memory)")
	pf.StringVar(&a.tenant, "tenant", "", "Tenant id for saved analyses (default $BIZCALC_TENANT or default)")
	pf.StringVarP(&a.format, "format", "f", "console", "Output format: "+strings.Join(output.AvailableFormatterNames(), ", "))
	pf.StringVar(&a.envFile, "env-file", ".env", "Environment file to load settings from")

	root.AddCommand(
		a.npvCmd(),
		a.paybackCmd(),
		a.roiCmd(),
		a.sensitivityCmd(),
		a.ltvCmd(),
		a.channelsCmd(),
		a.runCmd(),
		a.initCmd(),
		a.listCmd(),
		a.approveCmd(),
		a.serveCmd(),
	)
	return root
}

// settings reads the environment and applies the global flag overrides.
func (a *app) settings() (config.Settings, error) {
	s, err := config.ReadSettings(a.envFile)
	if err != nil {
		return config.Settings{}, err
	}
	if a.store != "" {
		s.Store = strings.ToLower(a.store)
	}
	if a.tenant != "" {
		s.TenantID = a.tenant
	}
	return s, s.Validate()
}

func (a *app) engine(t domain.DecisionThresholds) *calculation.CalculationEngine {
	engine := calculation.NewCalculationEngineWithThresholds(t)
	engine.SetLogger(a.logger.Sugar())
	return engine
}

func main() {
	a := &app{}
	if err := a.rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
