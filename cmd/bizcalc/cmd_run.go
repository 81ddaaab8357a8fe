package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bizlens/bizcalc/internal/config"
	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/bizlens/bizcalc/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) runCmd() *cobra.Command {
	var (
		outputDir string
		save      bool
	)
	cmd := &cobra.Command{
		Use:   "run [analysis-file]",
		Short: "Run every analysis and channel of a YAML analysis file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			formatter, err := output.LookupFormatter(a.format)
			if err != nil {
				return err
			}

			engine := a.engine(cfg.Thresholds)
			report, err := engine.RunAnalyses(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			report.Assumptions = output.GenerateAssumptions(cfg.Thresholds)
			a.logger.Info("analyses complete", zap.String("file", args[0]), zap.Int("outcomes", len(report.Outcomes)))

			if outputDir != "" {
				if err := os.MkdirAll(outputDir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
				path, err := output.WriteFormatted(formatter, report, outputDir, output.FileExtension(a.format))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", path)
			} else {
				data, err := formatter.Format(report)
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(data); err != nil {
					return err
				}
			}

			if save && len(report.Outcomes) > 0 {
				return a.saveOutcomes(cmd.Context(), cmd, engine, report.Outcomes)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Write the report to a timestamped file in this directory")
	cmd.Flags().BoolVar(&save, "save", false, "Save every outcome to the configured store")
	return cmd
}

func (a *app) channelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "channels [analysis-file]",
		Short: "Evaluate the marketing channels of an analysis file",
		Long: `Evaluate the marketing channels of an analysis file.

Each channel gets a contribution margin, a share of total profit, a
scale/maintain/reduce/stop decision and risk alerts, critical first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			if len(cfg.Channels) == 0 {
				return fmt.Errorf("%s has no channels", args[0])
			}
			engine := a.engine(cfg.Thresholds)
			report := &domain.AnalysisReport{
				GeneratedAt: engine.Now().UTC(),
				Channels:    engine.EvaluateChannels(cfg.Channels),
			}
			return output.GenerateReport(cmd.OutOrStdout(), report, a.format)
		},
	}
}

func (a *app) initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write an example analysis file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "bizcalc.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := output.SaveConfiguration(config.NewInputParser().CreateExampleConfiguration(), path); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "example analysis file written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
