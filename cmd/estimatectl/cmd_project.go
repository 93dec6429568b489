package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
)

func newProjectCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	var code, name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, g, func(ctx context.Context, env *cliEnv) error {
				p, err := env.core.Services.Project.Create(ctx, code, name)
				if err != nil {
					return err
				}
				return printJSON(cmd, p)
			})
		},
	}
	create.Flags().StringVar(&code, "code", "", "Project code (required, unique)")
	create.Flags().StringVar(&name, "name", "", "Project name")
	_ = create.MarkFlagRequired("code")

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects ordered by code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, g, func(ctx context.Context, env *cliEnv) error {
				out, err := env.core.Services.Project.List(dbctx.Context{Ctx: ctx}, limit, offset)
				if err != nil {
					return err
				}
				return printJSON(cmd, out)
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 0, "Page size (default 100)")
	list.Flags().IntVar(&offset, "offset", 0, "Rows to skip")

	cmd.AddCommand(create, list)
	return cmd
}
