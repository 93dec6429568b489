package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
)

func newBaselineCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Import and list baseline estimates",
	}

	var projectRaw, file string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import a baseline estimate, replacing one with the same name",
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectID, err := parseID("project", projectRaw)
			if err != nil {
				return err
			}
			payload, err := loadPayload(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			return withEnv(cmd, g, func(ctx context.Context, env *cliEnv) error {
				res, err := env.core.Services.Baseline.Import(ctx, projectID, payload)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
	importCmd.Flags().StringVar(&projectRaw, "project", "", "Project ID (required)")
	importCmd.Flags().StringVarP(&file, "file", "f", "", "Payload file (.json, .yaml, .yml or - for stdin)")
	_ = importCmd.MarkFlagRequired("project")
	_ = importCmd.MarkFlagRequired("file")

	var listProject string
	list := &cobra.Command{
		Use:   "list",
		Short: "List a project's baseline estimates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectID, err := parseID("project", listProject)
			if err != nil {
				return err
			}
			return withEnv(cmd, g, func(ctx context.Context, env *cliEnv) error {
				out, err := env.core.Services.Baseline.List(dbctx.Context{Ctx: ctx}, projectID)
				if err != nil {
					return err
				}
				return printJSON(cmd, out)
			})
		},
	}
	list.Flags().StringVar(&listProject, "project", "", "Project ID (required)")
	_ = list.MarkFlagRequired("project")

	cmd.AddCommand(importCmd, list)
	return cmd
}
