package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/bizlens/bizcalc/internal/output"
	"github.com/spf13/cobra"
)

func (a *app) listCmd() *cobra.Command {
	var (
		analysisType string
		limit        int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved analyses of the tenant, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, repo, settings, err := a.openService(cmd.Context(), a.engine(domain.DefaultDecisionThresholds()))
			if err != nil {
				return err
			}
			defer repo.Close()

			records, err := svc.List(cmd.Context(), settings.TenantID, domain.AnalysisType(analysisType), limit)
			if err != nil {
				return err
			}
			if output.NormalizeFormatName(a.format) == "json" {
				if records == nil {
					records = []*domain.AnalysisRecord{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tRECOMMENDATION\tAPPROVED\tCREATED")
			for _, r := range records {
				approved := "-"
				if r.IsApproved() {
					approved = *r.ApprovedBy
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.AnalysisType, r.Title, r.Recommendation, approved, r.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&analysisType, "type", "", "Only list this analysis type (npv_irr, payback, roi, sensitivity)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of analyses (default 50)")
	return cmd
}

func (a *app) approveCmd() *cobra.Command {
	var approver string
	cmd := &cobra.Command{
		Use:   "approve [analysis-id]",
		Short: "Approve a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, repo, _, err := a.openService(cmd.Context(), a.engine(domain.DefaultDecisionThresholds()))
			if err != nil {
				return err
			}
			defer repo.Close()

			rec, err := svc.Approve(cmd.Context(), args[0], approver)
			if err != nil {
				return fmt.Errorf("failed to approve %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "approved %q (%s) by %s at %s\n", rec.Title, rec.ID, *rec.ApprovedBy, rec.ApprovedAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&approver, "by", "", "Name or email of the approver")
	cmd.MarkFlagRequired("by")
	return cmd
}
