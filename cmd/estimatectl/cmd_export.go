package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/tenderbridge-backend/internal/services"
)

func newExportCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export review workbooks",
	}

	var offerRaw, alertsOut string
	alerts := &cobra.Command{
		Use:   "alerts",
		Short: "Write an offer's items and alerts to an xlsx workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			offerID, err := parseID("offer", offerRaw)
			if err != nil {
				return err
			}
			return withEnv(cmd, g, func(ctx context.Context, env *cliEnv) error {
				out, err := env.core.Services.Export.OfferAlertsXLSX(ctx, offerID)
				if err != nil {
					return err
				}
				return writeExport(cmd, out, alertsOut)
			})
		},
	}
	alerts.Flags().StringVar(&offerRaw, "offer", "", "Offer ID (required)")
	alerts.Flags().StringVarP(&alertsOut, "output", "o", "", "Output path (default: generated filename)")
	_ = alerts.MarkFlagRequired("offer")

	var reportRaw, reportOut string
	report := &cobra.Command{
		Use:   "merge-report",
		Short: "Write a merge report to an xlsx workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reportID, err := parseID("report", reportRaw)
			if err != nil {
				return err
			}
			return withEnv(cmd, g, func(ctx context.Context, env *cliEnv) error {
				out, err := env.core.Services.Export.MergeReportXLSX(ctx, reportID)
				if err != nil {
					return err
				}
				return writeExport(cmd, out, reportOut)
			})
		},
	}
	report.Flags().StringVar(&reportRaw, "report", "", "Merge report ID (required)")
	report.Flags().StringVarP(&reportOut, "output", "o", "", "Output path (default: generated filename)")
	_ = report.MarkFlagRequired("report")

	cmd.AddCommand(alerts, report)
	return cmd
}

func writeExport(cmd *cobra.Command, out *services.Export, path string) error {
	if path == "" {
		path = out.Filename
	}
	if err := os.WriteFile(path, out.Body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(out.Body))
	return nil
}
