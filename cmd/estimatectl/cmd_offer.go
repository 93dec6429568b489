package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/services"
)

func newOfferCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offer",
		Short: "Import and reconcile contractor offers",
	}

	var projectRaw, estimateRaw, mode, file string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import an offer and reconcile it against a baseline",
		Long: "Import an offer and reconcile it against a baseline. Without --estimate the\n" +
			"project's most recent baseline is used.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectID, err := parseID("project", projectRaw)
			if err != nil {
				return err
			}
			var estimateID *uuid.UUID
			if estimateRaw != "" {
				id, err := parseID("estimate", estimateRaw)
				if err != nil {
					return err
				}
				estimateID = &id
			}
			payload, err := loadPayload(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			return withEnv(cmd, g, func(ctx context.Context, env *cliEnv) error {
				summary, err := env.core.Services.Offer.Import(ctx, services.OfferImportRequest{
					ProjectID:  projectID,
					EstimateID: estimateID,
					Mode:       types.OfferMode(mode),
					Payload:    payload,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, summary)
			})
		},
	}
	importCmd.Flags().StringVar(&projectRaw, "project", "", "Project ID (required)")
	importCmd.Flags().StringVar(&estimateRaw, "estimate", "", "Baseline estimate ID (default: latest)")
	importCmd.Flags().StringVar(&mode, "mode", "", "Reconciliation mode: detailed or aggregated (required)")
	importCmd.Flags().StringVarP(&file, "file", "f", "", "Payload file (.json, .yaml, .yml or - for stdin)")
	_ = importCmd.MarkFlagRequired("project")
	_ = importCmd.MarkFlagRequired("mode")
	_ = importCmd.MarkFlagRequired("file")

	var offerRaw string
	rerun := &cobra.Command{
		Use:   "rerun",
		Short: "Reconcile a stored offer again against its baseline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			offerID, err := parseID("offer", offerRaw)
			if err != nil {
				return err
			}
			return withEnv(cmd, g, func(ctx context.Context, env *cliEnv) error {
				summary, err := env.core.Services.Offer.Rerun(ctx, offerID)
				if err != nil {
					return err
				}
				return printJSON(cmd, summary)
			})
		},
	}
	rerun.Flags().StringVar(&offerRaw, "offer", "", "Offer ID (required)")
	_ = rerun.MarkFlagRequired("offer")

	cmd.AddCommand(importCmd, rerun)
	return cmd
}
