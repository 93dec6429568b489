package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/tenderbridge-backend/internal/data/repos"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/services"
)

func newAlertsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Review reconciliation alerts",
	}

	var offerRaw string
	var typeFilter, statusFilter, severityFilter []string
	list := &cobra.Command{
		Use:   "list",
		Short: "List an offer's alerts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			offerID, err := parseID("offer", offerRaw)
			if err != nil {
				return err
			}
			filter := repos.AlertFilter{}
			for _, t := range typeFilter {
				filter.Types = append(filter.Types, types.AlertType(strings.TrimSpace(t)))
			}
			for _, s := range statusFilter {
				filter.Statuses = append(filter.Statuses, types.AlertStatus(strings.TrimSpace(s)))
			}
			for _, s := range severityFilter {
				filter.Severities = append(filter.Severities, types.Severity(strings.TrimSpace(s)))
			}
			return withEnv(cmd, g, func(ctx context.Context, env *cliEnv) error {
				out, err := env.core.Services.Alert.List(dbctx.Context{Ctx: ctx}, offerID, filter)
				if err != nil {
					return err
				}
				return printJSON(cmd, out)
			})
		},
	}
	list.Flags().StringVar(&offerRaw, "offer", "", "Offer ID (required)")
	list.Flags().StringSliceVar(&typeFilter, "type", nil, "Alert type filter (comma separated or repeated)")
	list.Flags().StringSliceVar(&statusFilter, "status", nil, "Status filter: open, resolved, ignored")
	list.Flags().StringSliceVar(&severityFilter, "severity", nil, "Severity filter: info, warning, error")
	_ = list.MarkFlagRequired("offer")

	var alertRaw, status, note, selectRaw string
	resolve := &cobra.Command{
		Use:   "resolve",
		Short: "Record a decision on an alert",
		Long: "Record a decision on an alert. --select picks one of the candidates of an\n" +
			"ambiguous_match alert and relinks the offer row; it requires --status resolved.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			alertID, err := parseID("alert", alertRaw)
			if err != nil {
				return err
			}
			decision := services.ResolveDecision{Status: types.AlertStatus(status)}
			if cmd.Flags().Changed("note") {
				decision.ResolutionNote = &note
			}
			if selectRaw != "" {
				id, err := parseID("select", selectRaw)
				if err != nil {
					return err
				}
				decision.SelectedCatalogItemID = &id
			}
			return withEnv(cmd, g, func(ctx context.Context, env *cliEnv) error {
				res, err := env.core.Services.Alert.Resolve(ctx, alertID, decision)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
	resolve.Flags().StringVar(&alertRaw, "alert", "", "Alert ID (required)")
	resolve.Flags().StringVar(&status, "status", "", "New status: open, resolved or ignored (required)")
	resolve.Flags().StringVar(&note, "note", "", "Resolution note")
	resolve.Flags().StringVar(&selectRaw, "select", "", "Catalog item ID chosen among the candidates")
	_ = resolve.MarkFlagRequired("alert")
	_ = resolve.MarkFlagRequired("status")

	cmd.AddCommand(list, resolve)
	return cmd
}
