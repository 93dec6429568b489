package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/tenderbridge-backend/internal/services"
)

func newMergeCmd(g *globalFlags) *cobra.Command {
	var projectRaw, name string
	var sources []string
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge two or more baselines into a new one and report mismatches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectID, err := parseID("project", projectRaw)
			if err != nil {
				return err
			}
			ids := make([]uuid.UUID, 0, len(sources))
			for _, raw := range sources {
				id, err := parseID("source", raw)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return withEnv(cmd, g, func(ctx context.Context, env *cliEnv) error {
				res, err := env.core.Services.Merge.Merge(ctx, services.MergeRequest{
					ProjectID:         projectID,
					Name:              name,
					SourceEstimateIDs: ids,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&projectRaw, "project", "", "Project ID (required)")
	f.StringVar(&name, "name", "", "Name of the merged baseline (required)")
	f.StringArrayVar(&sources, "source", nil, "Source estimate ID (repeat for each source)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
